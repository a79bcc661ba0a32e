package kontra

import "time"

// VectorKind tags a Vector's populated backing array.
type VectorKind int

const (
	VectorString VectorKind = iota
	VectorInt64
	VectorFloat64
	VectorBool
	VectorTime
)

// Vector is one materialized column: struct-of-arrays storage with a parallel
// null bitmap, matching the shape the fallback executor's predicate compiler
// operates on directly without per-row boxing.
type Vector struct {
	Kind     VectorKind
	Strings  []string
	Int64s   []int64
	Float64s []float64
	Bools    []bool
	Times    []time.Time
	Valid    []bool // Valid[i] == false means the value at i is NULL
}

// Len returns the vector's row count, derived from the null bitmap which is
// always sized to match regardless of which backing array is populated.
func (v *Vector) Len() int { return len(v.Valid) }

// IsNull reports whether row i is NULL.
func (v *Vector) IsNull(i int) bool { return !v.Valid[i] }

// Frame is the columnar materialization a DatasetHandle produces for the
// fallback tier (§4.5). Order preserves the caller's requested projection so
// downstream predicate evaluation and sample collection can report columns in
// a stable order.
type Frame struct {
	Columns map[string]*Vector
	Order   []string
	NumRows int
}

// NewFrame builds an empty frame with the given column order.
func NewFrame(order []string) *Frame {
	return &Frame{
		Columns: make(map[string]*Vector, len(order)),
		Order:   append([]string(nil), order...),
	}
}

// Column returns the vector for name, and whether it exists.
func (f *Frame) Column(name string) (*Vector, bool) {
	v, ok := f.Columns[name]
	return v, ok
}
