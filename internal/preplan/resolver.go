package preplan

import (
	"context"

	"github.com/saevarl/kontra"
)

// handleResolver adapts any kontra.DatasetHandle into a StatsResolver. Every
// handle can answer RowCount (via RowCountHint) and DType (via Describe);
// richer per-column statistics (null counts, min/max, freshness) are only
// available when the handle also implements kontra.MetadataResolver, which
// footer- or catalog-stats-aware handles (e.g. PostgresHandle) opt into.
type handleResolver struct {
	handle kontra.DatasetHandle
	meta   kontra.MetadataResolver // nil if handle doesn't implement it
}

// FromHandle builds a StatsResolver over dataset, for use by the engine when
// running rules at the preplan tier (SPEC_FULL.md §4.3).
func FromHandle(dataset kontra.DatasetHandle) StatsResolver {
	meta, _ := dataset.(kontra.MetadataResolver)
	return &handleResolver{handle: dataset, meta: meta}
}

func (r *handleResolver) RowCount(ctx context.Context) (int64, bool, error) {
	n, ok := r.handle.RowCountHint(ctx)
	return n, ok, nil
}

func (r *handleResolver) ColumnStats(ctx context.Context, column string) (ColumnStats, error) {
	var out ColumnStats

	schema, err := r.handle.Describe(ctx, []string{column})
	if err == nil {
		for _, c := range schema.Columns {
			if c.Name == column {
				out.DType = c.DType
				out.HasDType = true
				break
			}
		}
	}

	if r.meta == nil {
		return out, nil
	}
	hint, ok := r.meta.ColumnStats(ctx, column)
	if !ok {
		return out, nil
	}
	out.HasNullCount = hint.HasNullCount
	out.NullCount = hint.NullCount
	out.HasMinMax = hint.HasMinMax
	out.Min, out.Max = hint.Min, hint.Max
	out.HasMaxTime = hint.HasMaxTime
	out.MaxTime = hint.MaxTime
	if hint.HasDType {
		out.DType = hint.DType
		out.HasDType = true
	}
	return out, nil
}
