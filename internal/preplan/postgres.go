package preplan

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/saevarl/kontra"
)

// pgxQuerier is the minimal interface PostgresResolver needs from a pool,
// grounded on the teacher's factory.queryPool - a narrow interface carved out
// of *pgxpool.Pool purely so tests can substitute pgxmock.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresResolver reads pg_stats and pg_class.reltuples for metadata-only
// resolution, grounded on internal/postgres_repository.go's query
// construction style (parameterized query built once, pool.QueryRow per
// call).
type PostgresResolver struct {
	pool   pgxQuerier
	schema string
	table  string
}

// NewPostgresResolver builds a resolver bound to one table.
func NewPostgresResolver(pool pgxQuerier, schema, table string) *PostgresResolver {
	if schema == "" {
		schema = "public"
	}
	return &PostgresResolver{pool: pool, schema: schema, table: table}
}

// RowCount reads pg_class.reltuples, a planner estimate refreshed by
// ANALYZE/autovacuum. It is reported as available whenever it is
// non-negative; nothing here marks it as an estimate.
func (r *PostgresResolver) RowCount(ctx context.Context) (int64, bool, error) {
	const q = `
SELECT reltuples::bigint
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1 AND c.relname = $2`
	var n int64
	err := r.pool.QueryRow(ctx, q, r.schema, r.table).Scan(&n)
	if err != nil {
		return 0, false, kontra.NewConnectionError("preplan: query pg_class.reltuples", err)
	}
	return n, n >= 0, nil
}

// ColumnStats reads pg_stats.null_frac combined with reltuples to derive an
// estimated null count. Histogram and most-common-value data are not read,
// so no min/max bounds are reported.
func (r *PostgresResolver) ColumnStats(ctx context.Context, column string) (ColumnStats, error) {
	const q = `
SELECT null_frac, most_common_vals IS NOT NULL, histogram_bounds IS NOT NULL
FROM pg_stats
WHERE schemaname = $1 AND tablename = $2 AND attname = $3`

	var nullFrac float64
	var hasMCV, hasHistogram bool
	err := r.pool.QueryRow(ctx, q, r.schema, r.table, column).Scan(&nullFrac, &hasMCV, &hasHistogram)
	if err != nil {
		return ColumnStats{}, kontra.NewConnectionError("preplan: query pg_stats", err)
	}

	total, haveTotal, _ := r.RowCount(ctx)
	out := ColumnStats{}
	if haveTotal {
		out.HasNullCount = true
		out.NullCount = int64(nullFrac * float64(total))
	}
	_ = hasMCV
	_ = hasHistogram
	return out, nil
}
