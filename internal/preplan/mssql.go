package preplan

import (
	"context"
	"database/sql"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/saevarl/kontra"
)

// MSSQLResolver reads sys.partitions row counts and sys.columns nullability
// for metadata-only resolution. No sampled distribution is exposed the way
// Postgres's pg_stats is, so ColumnStats here reports a null count of 0 for a
// column declared NOT NULL and nothing else: no dtype, no null count for a
// nullable column, and no min/max.
type MSSQLResolver struct {
	db     *sql.DB
	schema string
	table  string
}

// NewMSSQLResolver builds a resolver bound to one table over an existing
// *sql.DB opened with the mssql driver.
func NewMSSQLResolver(db *sql.DB, schema, table string) *MSSQLResolver {
	if schema == "" {
		schema = "dbo"
	}
	return &MSSQLResolver{db: db, schema: schema, table: table}
}

func (r *MSSQLResolver) RowCount(ctx context.Context) (int64, bool, error) {
	const q = `
SELECT SUM(p.rows)
FROM sys.partitions p
JOIN sys.tables t ON t.object_id = p.object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
WHERE s.name = ? AND t.name = ? AND p.index_id IN (0, 1)`
	var n sql.NullInt64
	if err := r.db.QueryRowContext(ctx, q, r.schema, r.table).Scan(&n); err != nil {
		return 0, false, kontra.NewConnectionError("preplan: query sys.partitions", err)
	}
	if !n.Valid {
		return 0, false, nil
	}
	return n.Int64, true, nil
}

// ColumnStats reports only whether the column is declared NOT NULL in the
// catalog; it never estimates null counts or value bounds, since MSSQL has no
// equivalent of Postgres's pg_stats sampled histogram readily queryable
// without enabling extended statistics.
func (r *MSSQLResolver) ColumnStats(ctx context.Context, column string) (ColumnStats, error) {
	const q = `
SELECT c.is_nullable
FROM sys.columns c
JOIN sys.tables t ON t.object_id = c.object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
WHERE s.name = ? AND t.name = ? AND c.name = ?`
	var nullable bool
	if err := r.db.QueryRowContext(ctx, q, r.schema, r.table, column).Scan(&nullable); err != nil {
		return ColumnStats{}, kontra.NewConnectionError("preplan: query sys.columns", err)
	}
	if !nullable {
		return ColumnStats{HasNullCount: true, NullCount: 0}, nil
	}
	return ColumnStats{}, nil
}
