package dataset

import (
	"context"

	"github.com/saevarl/kontra"
)

// InMemoryHandle wraps a Frame an embedder already holds in memory. It has no
// SQL dialect: no rule against it runs at the SQL tier. Rules the metadata
// tier can settle from Describe or RowCountHint resolve there; every other
// rule runs at the fallback tier.
type InMemoryHandle struct {
	frame  *kontra.Frame
	schema kontra.Schema
}

// NewInMemoryHandle builds a handle over an already-materialized frame and a
// caller-supplied schema (column types aren't inferrable from a Frame alone
// since Vector.Kind only distinguishes storage representation, not intent
// like "int" vs a dialect-specific integer width).
func NewInMemoryHandle(frame *kontra.Frame, schema kontra.Schema) *InMemoryHandle {
	return &InMemoryHandle{frame: frame, schema: schema}
}

func (h *InMemoryHandle) Dialect() kontra.Dialect { return kontra.DialectNone }

func (h *InMemoryHandle) Describe(context.Context, []string) (kontra.Schema, error) {
	return h.schema, nil
}

func (h *InMemoryHandle) Materialize(_ context.Context, projection []string) (*kontra.Frame, error) {
	if len(projection) == 0 {
		return h.frame, nil
	}
	out := kontra.NewFrame(projection)
	out.NumRows = h.frame.NumRows
	for _, col := range projection {
		v, ok := h.frame.Column(col)
		if !ok {
			return nil, kontra.NewDataError(kontra.ErrCodeColumnMissing, "in-memory dataset: column not present").WithColumn(col)
		}
		out.Columns[col] = v
	}
	return out, nil
}

func (h *InMemoryHandle) SQLRunner() (kontra.SQLRunnerFunc, bool) { return nil, false }

func (h *InMemoryHandle) RowCountHint(context.Context) (int64, bool) {
	return int64(h.frame.NumRows), true
}

func (h *InMemoryHandle) Close() error { return nil }
