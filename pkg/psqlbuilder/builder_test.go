package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id", "start_time").
		From("reservations").
		Where(squirrel.Eq{"staff_id": 7}).
		Where(squirrel.Eq{"date": "2025-03-10"}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, start_time FROM reservations WHERE staff_id = $1 AND date = $2", query)
	assert.Equal(t, []interface{}{7, "2025-03-10"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Update("reservations").
		Set("status", "cancelled").
		Where(squirrel.Eq{"id": int64(3)}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE reservations SET status = $1 WHERE id = $2", query)
	assert.Len(t, args, 2)
}
