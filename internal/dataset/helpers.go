package dataset

import (
	"time"

	"github.com/saevarl/kontra"
)

// buildVector infers a kontra.Vector's kind from the first non-nil value in
// raw and fills the matching backing array. A scanned value that doesn't
// match the inferred kind is treated as NULL for that row rather than
// silently coerced.
func buildVector(raw []any) *kontra.Vector {
	v := &kontra.Vector{Valid: make([]bool, len(raw))}
	kind := inferKind(raw)
	v.Kind = kind

	switch kind {
	case kontra.VectorString:
		v.Strings = make([]string, len(raw))
	case kontra.VectorInt64:
		v.Int64s = make([]int64, len(raw))
	case kontra.VectorFloat64:
		v.Float64s = make([]float64, len(raw))
	case kontra.VectorBool:
		v.Bools = make([]bool, len(raw))
	case kontra.VectorTime:
		v.Times = make([]time.Time, len(raw))
	}

	for i, val := range raw {
		if val == nil {
			continue
		}
		v.Valid[i] = true
		switch kind {
		case kontra.VectorString:
			if s, ok := val.(string); ok {
				v.Strings[i] = s
			} else if b, ok := val.([]byte); ok {
				v.Strings[i] = string(b)
			} else {
				v.Valid[i] = false
			}
		case kontra.VectorInt64:
			if !assignInt64(v, i, val) {
				v.Valid[i] = false
			}
		case kontra.VectorFloat64:
			if !assignFloat64(v, i, val) {
				v.Valid[i] = false
			}
		case kontra.VectorBool:
			if b, ok := val.(bool); ok {
				v.Bools[i] = b
			} else {
				v.Valid[i] = false
			}
		case kontra.VectorTime:
			if !assignTime(v, i, val) {
				v.Valid[i] = false
			}
		}
	}
	return v
}

func inferKind(raw []any) kontra.VectorKind {
	for _, val := range raw {
		if val == nil {
			continue
		}
		switch val.(type) {
		case string:
			return kontra.VectorString
		case bool:
			return kontra.VectorBool
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return kontra.VectorInt64
		case float32, float64:
			return kontra.VectorFloat64
		case time.Time:
			return kontra.VectorTime
		case []byte:
			return kontra.VectorString
		}
	}
	return kontra.VectorString
}

func assignInt64(v *kontra.Vector, i int, val any) bool {
	switch n := val.(type) {
	case int64:
		v.Int64s[i] = n
	case int:
		v.Int64s[i] = int64(n)
	case int32:
		v.Int64s[i] = int64(n)
	case int16:
		v.Int64s[i] = int64(n)
	case int8:
		v.Int64s[i] = int64(n)
	case uint64:
		v.Int64s[i] = int64(n)
	case uint32:
		v.Int64s[i] = int64(n)
	case uint:
		v.Int64s[i] = int64(n)
	case uint16:
		v.Int64s[i] = int64(n)
	case uint8:
		v.Int64s[i] = int64(n)
	default:
		return false
	}
	return true
}

func assignFloat64(v *kontra.Vector, i int, val any) bool {
	switch n := val.(type) {
	case float64:
		v.Float64s[i] = n
	case float32:
		v.Float64s[i] = float64(n)
	default:
		return false
	}
	return true
}

func assignTime(v *kontra.Vector, i int, val any) bool {
	t, ok := val.(time.Time)
	if !ok {
		return false
	}
	v.Times[i] = t
	return true
}
