package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saevarl/kontra"
	"github.com/saevarl/kontra/internal/preplan"
	"github.com/saevarl/kontra/internal/pushdown"
)

// PostgresHandle is a database-table DatasetHandle backed by a pgxpool.Pool,
// grounded on internal/postgres_repository.go's pool-holding repository
// shape (schema/table instead of a fixed EAV table name).
type PostgresHandle struct {
	pool     *pgxpool.Pool
	schema   string
	table    string
	resolver *preplan.PostgresResolver
}

// NewPostgresHandle binds a dataset to one schema-qualified table over an
// already-constructed pool; Kontra never owns the pool's lifecycle.
func NewPostgresHandle(pool *pgxpool.Pool, schema, table string) *PostgresHandle {
	if schema == "" {
		schema = "public"
	}
	return &PostgresHandle{
		pool:     pool,
		schema:   schema,
		table:    table,
		resolver: preplan.NewPostgresResolver(pool, schema, table),
	}
}

// ColumnStats satisfies kontra.MetadataResolver by delegating to a
// pg_stats-backed preplan.PostgresResolver, so the preplan tier can resolve
// not_null rules against this handle without a row read (no min/max bounds
// are reported, so range rules are not resolved here).
func (h *PostgresHandle) ColumnStats(ctx context.Context, column string) (kontra.ColumnStatsHint, bool) {
	s, err := h.resolver.ColumnStats(ctx, column)
	if err != nil {
		return kontra.ColumnStatsHint{}, false
	}
	return kontra.ColumnStatsHint{
		HasNullCount: s.HasNullCount,
		NullCount:    s.NullCount,
		HasMinMax:    s.HasMinMax,
		Min:          s.Min,
		Max:          s.Max,
		HasMaxTime:   s.HasMaxTime,
		MaxTime:      s.MaxTime,
		DType:        s.DType,
		HasDType:     s.HasDType,
	}, true
}

func (h *PostgresHandle) qualified() string {
	return fmt.Sprintf(`"%s"."%s"`, h.schema, h.table)
}

func (h *PostgresHandle) Dialect() kontra.Dialect { return kontra.DialectPostgres }

func (h *PostgresHandle) Describe(ctx context.Context, projection []string) (kontra.Schema, error) {
	rows, err := h.pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, h.schema, h.table)
	if err != nil {
		return kontra.Schema{}, kontra.NewSQLError(kontra.ErrCodeNotFound, "postgres: describe", err)
	}
	defer rows.Close()

	want := toSet(projection)
	var schema kontra.Schema
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return kontra.Schema{}, kontra.NewSQLError(kontra.ErrCodeInternal, "postgres: scan describe row", err)
		}
		if len(want) > 0 && !want[name] {
			continue
		}
		schema.Columns = append(schema.Columns, kontra.ColumnInfo{
			Name:     name,
			DType:    pgDType(dataType),
			Nullable: nullable == "YES",
		})
	}
	return schema, rows.Err()
}

func pgDType(raw string) string {
	switch {
	case strings.Contains(raw, "char"), raw == "text":
		return "string"
	case raw == "boolean":
		return "bool"
	case strings.Contains(raw, "timestamp"), raw == "date":
		return "timestamp"
	case strings.Contains(raw, "int"):
		return "int"
	case strings.Contains(raw, "numeric"), strings.Contains(raw, "double"), strings.Contains(raw, "real"):
		return "float"
	default:
		return "string"
	}
}

func (h *PostgresHandle) Materialize(ctx context.Context, projection []string) (*kontra.Frame, error) {
	cols := "*"
	order := projection
	if len(projection) > 0 {
		cols = strings.Join(quoteAll(projection), ", ")
	}

	rows, err := h.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s", cols, h.qualified()))
	if err != nil {
		return nil, kontra.NewSQLError(kontra.ErrCodeNotFound, "postgres: materialize query", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	colNames := make([]string, len(fields))
	for i, f := range fields {
		colNames[i] = string(f.Name)
	}
	if len(order) == 0 {
		order = colNames
	}

	frame := kontra.NewFrame(order)
	raw := make([][]any, len(colNames))

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, kontra.NewSQLError(kontra.ErrCodeInternal, "postgres: scan row", err)
		}
		for i, v := range vals {
			raw[i] = append(raw[i], v)
		}
		frame.NumRows++
	}
	if err := rows.Err(); err != nil {
		return nil, kontra.NewSQLError(kontra.ErrCodeInternal, "postgres: row iteration", err)
	}

	for i, name := range colNames {
		frame.Columns[name] = buildVector(raw[i])
	}
	return frame, nil
}

func (h *PostgresHandle) SQLRunner() (kontra.SQLRunnerFunc, bool) {
	return pushdown.NewPostgresRunner(h.pool), true
}

func (h *PostgresHandle) RowCountHint(ctx context.Context) (int64, bool) {
	var n int64
	err := h.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", h.qualified())).Scan(&n)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (h *PostgresHandle) Close() error { return nil }

// Table returns the schema-qualified table name, used by the pushdown
// executor to build full statements.
func (h *PostgresHandle) Table() string { return h.qualified() }
