package kontra

import "context"

// SQLRunnerFunc executes a single SQL string against a dataset's backing
// store and returns one result row bound to its select-list aliases (§4.2).
// Kept as a function type rather than a Row/Scan interface so dialect
// implementations (pgx, database/sql, duckdb-go) don't need to be unified
// behind a shared cursor abstraction; each pushdown/preplan emitter only ever
// needs one row back per statement.
type SQLRunnerFunc func(ctx context.Context, query string, args []any) (map[string]any, error)

// ColumnInfo describes one column of a dataset's schema.
type ColumnInfo struct {
	Name     string
	DType    string // dialect-neutral: "string", "int", "float", "bool", "timestamp"
	Nullable bool
}

// Schema is a dataset's column list, in source-declared order.
type Schema struct {
	Columns []ColumnInfo
}

// ColumnNames returns the schema's column names in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// DatasetHandle abstracts over where and how a dataset's data actually lives
// (§4.2): a local file, an object-store URI, a database table, an in-memory
// Frame, or a caller-supplied connection. The engine never type-switches on
// concrete handle types; every tier interacts with a dataset exclusively
// through this interface.
type DatasetHandle interface {
	// Dialect reports the SQL dialect this handle can push work down to, or
	// DialectNone if it has no SQL-capable backing store.
	Dialect() Dialect

	// Describe returns the dataset's schema, optionally restricted to
	// projection (empty means every column). Must not read row data.
	Describe(ctx context.Context, projection []string) (Schema, error)

	// Materialize reads projection (empty means every column) into a Frame
	// for the fallback tier.
	Materialize(ctx context.Context, projection []string) (*Frame, error)

	// SQLRunner returns a function that executes SQL against this handle's
	// backing store, and whether one is available at all.
	SQLRunner() (SQLRunnerFunc, bool)

	// RowCountHint returns a cheap, possibly-stale row count estimate and
	// whether one is available, used by the preplan tier for min_rows/
	// max_rows (§4.3).
	RowCountHint(ctx context.Context) (int64, bool)

	// Close releases any resources the handle owns (connections, temp files).
	Close() error
}

// SQLTable is an optional DatasetHandle capability exposing the fully
// qualified table (or table-function) expression the pushdown tier should
// query against. Handles with no SQL-capable backing store (in-memory
// frames) simply don't implement it; DialectNone already routes every rule
// away from the SQL tier, so the engine never needs it for them.
type SQLTable interface {
	Table() string
}

// Engine is the public entrypoint: compile a Contract against a DatasetHandle
// and produce a ValidationResult (§2, §6).
type Engine interface {
	// Validate runs every rule in contract against dataset using the
	// three-tier pipeline, merging tier results deterministically (§4.6,
	// §4.7).
	Validate(ctx context.Context, contract *Contract, dataset DatasetHandle, opts Options) (*ValidationResult, error)

	// Registry returns the rule-variant registry this engine was constructed
	// with.
	Registry() *Registry
}
