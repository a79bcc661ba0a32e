package pushdown

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saevarl/kontra"
)

// NewPostgresRunner builds a kontra.SQLRunnerFunc over a pgxpool.Pool,
// grounded on internal/postgres_repository.go's pool.QueryRow usage.
func NewPostgresRunner(pool *pgxpool.Pool) kontra.SQLRunnerFunc {
	return func(ctx context.Context, query string, args []any) (map[string]any, error) {
		rows, err := pool.Query(ctx, query, args...)
		if err != nil {
			return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "postgres: query failed", err)
		}
		defer rows.Close()
		return scanPgxRow(rows)
	}
}

func scanPgxRow(rows pgx.Rows) (map[string]any, error) {
	fields := rows.FieldDescriptions()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "postgres: row iteration", err)
		}
		return map[string]any{}, nil
	}
	vals, err := rows.Values()
	if err != nil {
		return nil, kontra.NewSQLError(kontra.ErrCodePushdownFailed, "postgres: row values", err)
	}
	out := make(map[string]any, len(fields))
	for i, f := range fields {
		out[string(f.Name)] = vals[i]
	}
	return out, nil
}
