package fallback

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/saevarl/kontra"
)

func itoa(n int64) string   { return strconv.FormatInt(n, 10) }
func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// mask reports, for row i, whether the row FAILS the rule.
type mask func(i int) bool

// compile builds a per-row failing-predicate for rule against frame. Dataset-
// scoped rules (min_rows/max_rows) and custom_sql_check have no meaningful
// per-row mask; compile rejects them so Run can special-case them instead.
func compile(rule *kontra.Rule, frame *kontra.Frame) (mask, error) {
	switch p := rule.Params.(type) {
	case *kontra.NotNullParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		return func(i int) bool { return v.IsNull(i) }, nil

	case *kontra.UniqueParams:
		return compileUnique(frame, p.Columns)

	case *kontra.AllowedValuesParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		set := toSet(p.Values)
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return !set[scalarAt(v, i)]
		}, nil

	case *kontra.DisallowedValuesParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		set := toSet(p.Values)
		return func(i int) bool {
			if v.IsNull(i) {
				return false // NULL passes, decided in DESIGN.md
			}
			return set[scalarAt(v, i)]
		}, nil

	case *kontra.RangeParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			f := numAt(v, i)
			if p.Min != nil {
				if p.ExclusiveMin && f <= *p.Min {
					return true
				}
				if !p.ExclusiveMin && f < *p.Min {
					return true
				}
			}
			if p.Max != nil {
				if p.ExclusiveMax && f >= *p.Max {
					return true
				}
				if !p.ExclusiveMax && f > *p.Max {
					return true
				}
			}
			return false
		}, nil

	case *kontra.LengthParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			n := len(v.Strings[i])
			if p.Min != nil && n < *p.Min {
				return true
			}
			if p.Max != nil && n > *p.Max {
				return true
			}
			return false
		}, nil

	case *kontra.RegexParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, kontra.NewConfigError(kontra.ErrCodeInvalidParam, "regex: invalid pattern").WithCause(err)
		}
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return !re.MatchString(v.Strings[i])
		}, nil

	case *kontra.ContainsParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return !strings.Contains(v.Strings[i], p.Substr)
		}, nil

	case *kontra.StartsWithParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return !strings.HasPrefix(v.Strings[i], p.Prefix)
		}, nil

	case *kontra.EndsWithParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return !strings.HasSuffix(v.Strings[i], p.Suffix)
		}, nil

	case *kontra.DTypeParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		wantKind, ok := kindForDType(p.ExpectedType)
		if !ok {
			return nil, kontra.NewConfigError(kontra.ErrCodeInvalidParam, "dtype: unknown expected_type").WithDetail("expected_type", p.ExpectedType)
		}
		mismatch := v.Kind != wantKind
		return func(int) bool { return mismatch }, nil

	case *kontra.CompareParams:
		a, err := column(frame, p.ColumnA)
		if err != nil {
			return nil, err
		}
		b, err := column(frame, p.ColumnB)
		if err != nil {
			return nil, err
		}
		cmp, err := compareFn(p.Op)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if a.IsNull(i) || b.IsNull(i) {
				return false
			}
			return !cmp(numAt(a, i), numAt(b, i))
		}, nil

	case *kontra.ConditionalNotNullParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		when, err := compilePredicate(p.When, frame)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if !when(i) {
				return false
			}
			return v.IsNull(i)
		}, nil

	case *kontra.ConditionalRangeParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		when, err := compilePredicate(p.When, frame)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			if !when(i) {
				return false
			}
			if v.IsNull(i) {
				return false
			}
			f := numAt(v, i)
			if p.Min != nil && f < *p.Min {
				return true
			}
			if p.Max != nil && f > *p.Max {
				return true
			}
			return false
		}, nil

	case *kontra.FreshnessParams:
		v, err := column(frame, p.Column)
		if err != nil {
			return nil, err
		}
		cutoff := time.Now().UTC().Add(-p.MaxAge)
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return v.Times[i].UTC().Before(cutoff)
		}, nil

	default:
		return nil, kontra.NewRuntimeError(kontra.ErrCodeInternal, "fallback: no local evaluator for this rule variant", nil).WithRuleID(rule.RuleID)
	}
}

func compileUnique(frame *kontra.Frame, columns []string) (mask, error) {
	vecs := make([]*kontra.Vector, len(columns))
	for i, c := range columns {
		v, err := column(frame, c)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	seen := make(map[string]int)
	dup := make(map[int]bool)
	for i := 0; i < frame.NumRows; i++ {
		key, allNull := compositeKey(vecs, i)
		if allNull {
			continue
		}
		seen[key]++
		if seen[key] > 1 {
			dup[i] = true
		}
	}
	return func(i int) bool { return dup[i] }, nil
}

func compositeKey(vecs []*kontra.Vector, i int) (string, bool) {
	var b strings.Builder
	allNull := true
	for _, v := range vecs {
		if v.IsNull(i) {
			b.WriteString("\x00NULL\x00")
			continue
		}
		allNull = false
		b.WriteString(strings.ReplaceAll(scalarStr(v, i), "\x1f", "\\x1f"))
		b.WriteByte(0x1f)
	}
	return b.String(), allNull
}

func compilePredicate(p kontra.Predicate, frame *kontra.Frame) (mask, error) {
	switch pred := p.(type) {
	case *kontra.ColumnPredicate:
		v, err := column(frame, pred.Column)
		if err != nil {
			return nil, err
		}
		return columnPredicateMask(v, pred)
	case *kontra.AndPredicate:
		children, err := compileAll(pred.Children, frame)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			for _, c := range children {
				if !c(i) {
					return false
				}
			}
			return true
		}, nil
	case *kontra.OrPredicate:
		children, err := compileAll(pred.Children, frame)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			for _, c := range children {
				if c(i) {
					return true
				}
			}
			return false
		}, nil
	default:
		return nil, kontra.NewConfigError(kontra.ErrCodeInvalidParam, "fallback: unsupported predicate type")
	}
}

func compileAll(preds []kontra.Predicate, frame *kontra.Frame) ([]mask, error) {
	out := make([]mask, len(preds))
	for i, p := range preds {
		m, err := compilePredicate(p, frame)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func columnPredicateMask(v *kontra.Vector, pred *kontra.ColumnPredicate) (mask, error) {
	switch pred.Op {
	case kontra.OpIsNull:
		return func(i int) bool { return v.IsNull(i) }, nil
	case kontra.OpNotNull:
		return func(i int) bool { return !v.IsNull(i) }, nil
	case kontra.OpIn:
		set := toSet(pred.Values)
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return set[scalarAt(v, i)]
		}, nil
	default:
		cmp, err := compareFn(pred.Op)
		if err != nil {
			return nil, err
		}
		target := toFloat(pred.Value)
		return func(i int) bool {
			if v.IsNull(i) {
				return false
			}
			return cmp(numAt(v, i), target)
		}, nil
	}
}

func compareFn(op kontra.CompareOp) (func(a, b float64) bool, error) {
	switch op {
	case kontra.OpEq:
		return func(a, b float64) bool { return a == b }, nil
	case kontra.OpNeq:
		return func(a, b float64) bool { return a != b }, nil
	case kontra.OpGt:
		return func(a, b float64) bool { return a > b }, nil
	case kontra.OpGte:
		return func(a, b float64) bool { return a >= b }, nil
	case kontra.OpLt:
		return func(a, b float64) bool { return a < b }, nil
	case kontra.OpLte:
		return func(a, b float64) bool { return a <= b }, nil
	default:
		return nil, kontra.NewConfigError(kontra.ErrCodeInvalidParam, "unsupported comparison operator")
	}
}

func column(frame *kontra.Frame, name string) (*kontra.Vector, error) {
	v, ok := frame.Column(name)
	if !ok {
		return nil, kontra.NewDataError(kontra.ErrCodeColumnMissing, "fallback: column not materialized").WithColumn(name)
	}
	return v, nil
}

func kindForDType(name string) (kontra.VectorKind, bool) {
	switch name {
	case "string":
		return kontra.VectorString, true
	case "int":
		return kontra.VectorInt64, true
	case "float":
		return kontra.VectorFloat64, true
	case "bool":
		return kontra.VectorBool, true
	case "timestamp":
		return kontra.VectorTime, true
	default:
		return 0, false
	}
}

func numAt(v *kontra.Vector, i int) float64 {
	switch v.Kind {
	case kontra.VectorInt64:
		return float64(v.Int64s[i])
	case kontra.VectorFloat64:
		return v.Float64s[i]
	case kontra.VectorTime:
		return float64(v.Times[i].Unix())
	default:
		return 0
	}
}

func scalarAt(v *kontra.Vector, i int) string {
	return scalarStr(v, i)
}

func scalarStr(v *kontra.Vector, i int) string {
	switch v.Kind {
	case kontra.VectorString:
		return v.Strings[i]
	case kontra.VectorInt64:
		return itoa(v.Int64s[i])
	case kontra.VectorFloat64:
		return ftoa(v.Float64s[i])
	case kontra.VectorBool:
		if v.Bools[i] {
			return "true"
		}
		return "false"
	case kontra.VectorTime:
		return v.Times[i].UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func toSet(values []any) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[toKey(v)] = true
	}
	return set
}

func toKey(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return itoa(int64(val))
	case int64:
		return itoa(val)
	case float64:
		return ftoa(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return 0
	}
}
