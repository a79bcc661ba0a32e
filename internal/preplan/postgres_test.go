package preplan

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresResolver_RowCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT reltuples::bigint`).
		WithArgs("public", "listings").
		WillReturnRows(pgxmock.NewRows([]string{"reltuples"}).AddRow(int64(42)))

	r := NewPostgresResolver(mock, "public", "listings")
	n, ok, err := r.RowCount(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResolver_RowCount_DefaultsSchemaToPublic(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT reltuples::bigint`).
		WithArgs("public", "listings").
		WillReturnRows(pgxmock.NewRows([]string{"reltuples"}).AddRow(int64(7)))

	r := NewPostgresResolver(mock, "", "listings")
	_, ok, err := r.RowCount(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResolver_RowCount_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT reltuples::bigint`).WillReturnError(assert.AnError)

	r := NewPostgresResolver(mock, "public", "listings")
	_, _, err = r.RowCount(context.Background())
	assert.Error(t, err)
}

func TestPostgresResolver_ColumnStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT null_frac`).
		WithArgs("public", "listings", "price").
		WillReturnRows(pgxmock.NewRows([]string{"null_frac", "has_mcv", "has_hist"}).AddRow(0.25, true, false))
	mock.ExpectQuery(`SELECT reltuples::bigint`).
		WithArgs("public", "listings").
		WillReturnRows(pgxmock.NewRows([]string{"reltuples"}).AddRow(int64(100)))

	r := NewPostgresResolver(mock, "public", "listings")
	stats, err := r.ColumnStats(context.Background(), "price")
	require.NoError(t, err)
	assert.True(t, stats.HasNullCount)
	assert.Equal(t, int64(25), stats.NullCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResolver_ColumnStats_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT null_frac`).WillReturnError(assert.AnError)

	r := NewPostgresResolver(mock, "public", "listings")
	_, err = r.ColumnStats(context.Background(), "price")
	assert.Error(t, err)
}
