package psqlbuilder

import "github.com/Masterminds/squirrel"

// builder использует плейсхолдеры PostgreSQL ($1, $2, ...)
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select начинает запрос SELECT
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert начинает запрос INSERT
func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}

// Update начинает запрос UPDATE
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete начинает запрос DELETE
func Delete(table string) squirrel.DeleteBuilder {
	return builder.Delete(table)
}
