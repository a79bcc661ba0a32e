package kontra

import (
	"context"
	"time"
)

// ColumnStatsHint is whatever cheap, no-row-read metadata a DatasetHandle can
// offer about one column: footer statistics, catalog statistics, or nothing
// at all. Mirrors internal/preplan.ColumnStats; duplicated here rather than
// imported so the root package never depends on internal/preplan (see
// DESIGN.md's package layout rationale).
type ColumnStatsHint struct {
	HasNullCount bool
	NullCount    int64
	HasMinMax    bool
	Min, Max     float64
	HasMaxTime   bool
	MaxTime      time.Time
	DType        string
	HasDType     bool
}

// MetadataResolver is an optional capability a DatasetHandle implementation
// may satisfy to hand the preplan tier richer per-column statistics than
// Describe/RowCountHint alone provide (e.g. a Parquet handle's footer
// min/max, a Postgres handle's pg_stats null fraction). The engine type-
// asserts for this rather than requiring it on DatasetHandle itself, since
// most handle variants (in-memory, plain database tables without catalog
// stats) have nothing to offer beyond schema and a row-count estimate.
type MetadataResolver interface {
	ColumnStats(ctx context.Context, column string) (ColumnStatsHint, bool)
}
