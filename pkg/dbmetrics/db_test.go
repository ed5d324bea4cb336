package dbmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsuki-sakai/salon-system-sub000/pkg/metrics"
)

func TestOperation(t *testing.T) {
	tests := map[string]string{
		"SELECT id FROM reservations":     "select",
		"  insert into reservations":      "insert",
		"UPDATE reservations SET":         "update",
		"DELETE FROM staff_holidays":      "delete",
		"LOCK TABLE reservations":         "other",
		"":                                "unknown",
		"WITH x AS (SELECT 1) SELECT * x": "with",
	}

	for query, want := range tests {
		assert.Equal(t, want, operation(query), query)
	}
}

func TestGetExecutor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db))

	mock.ExpectBegin()
	wrapped := Wrap(db, nil)
	tx, err := wrapped.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Equal(t, tx, GetExecutor(txCtx, db))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ObservesQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := metrics.NewWithRegistry("salon-test", prometheus.NewRegistry())
	wrapped := Wrap(db, m)

	mock.ExpectExec("DELETE FROM salon_holidays").WillReturnError(errors.New("boom"))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err = wrapped.ExecContext(context.Background(), "DELETE FROM salon_holidays WHERE id = $1", 1)
	require.Error(t, err)

	rows, err := wrapped.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	rows.Close()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("delete")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("select")))
	require.NoError(t, mock.ExpectationsWereMet())
}
