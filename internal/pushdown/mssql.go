package pushdown

import (
	"context"
	"database/sql"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/saevarl/kontra"
)

// NewMSSQLRunner builds a kontra.SQLRunnerFunc over a database/sql handle
// opened with the mssql driver. No example repo in the corpus carries an
// MSSQL driver (DESIGN.md: ungrounded addition), but spec.md §1/§6 name mssql
// as a required dialect, so this reuses the same database/sql scan path as
// the DuckDB runner.
func NewMSSQLRunner(db *sql.DB) kontra.SQLRunnerFunc {
	return func(ctx context.Context, query string, args []any) (map[string]any, error) {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "mssql: query failed", err)
		}
		defer rows.Close()
		return scanRow(rows)
	}
}
