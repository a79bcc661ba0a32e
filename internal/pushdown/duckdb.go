package pushdown

import (
	"context"
	"database/sql"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/saevarl/kontra"
)

// NewDuckDBRunner builds a kontra.SQLRunnerFunc over an already-open
// database/sql handle opened with the duckdb driver, binding the single
// returned row to its select-list column names. Grounded on
// internal/duckdb_conn.go's database/sql-based DuckDBClient.
func NewDuckDBRunner(db *sql.DB) kontra.SQLRunnerFunc {
	return func(ctx context.Context, query string, args []any) (map[string]any, error) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "duckdb: query failed", err)
		}
		defer rows.Close()
		return scanRow(rows)
	}
}

func scanRow(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "scan: read columns", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "scan: row iteration", err)
		}
		return map[string]any{}, nil
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "scan: row scan", err)
	}
	out := make(map[string]any, len(cols))
	for i, c := range cols {
		out[c] = vals[i]
	}
	return out, nil
}
