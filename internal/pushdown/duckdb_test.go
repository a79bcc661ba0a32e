package pushdown

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuckDBRunner_ScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"fail_count"}).AddRow(int64(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS fail_count FROM listings WHERE price < 0`).WillReturnRows(rows)

	runner := NewDuckDBRunner(db)
	out, err := runner(context.Background(), "SELECT COUNT(*) AS fail_count FROM listings WHERE price < 0", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out["fail_count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDuckDBRunner_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"fail_count"})
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS fail_count FROM listings`).WillReturnRows(rows)

	runner := NewDuckDBRunner(db)
	out, err := runner(context.Background(), "SELECT COUNT(*) AS fail_count FROM listings", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDuckDBRunner_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(assert.AnError)

	runner := NewDuckDBRunner(db)
	_, err = runner(context.Background(), "SELECT 1", nil)
	assert.Error(t, err)
}
