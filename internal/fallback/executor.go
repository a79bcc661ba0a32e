// Package fallback evaluates rules directly against a materialized
// kontra.Frame when neither the metadata nor SQL tier could resolve them
// (SPEC_FULL.md §4.5). This is the tier of last resort: always exact, with a
// local evaluator for every rule variant except custom_sql_check (which
// returns an error here), bounded by a row-level
// predicate mask rather than per-row branching, grounded on the teacher's
// internal/attribute_filter.go-style per-row compiled predicate evaluation.
package fallback

import (
	"context"
	"time"

	"github.com/saevarl/kontra"
	"github.com/saevarl/kontra/internal/telemetry"
)

// Result is one rule's fallback outcome. Fallback always resolves exactly -
// there is no further tier to demote to.
type Result struct {
	Status    kontra.Status
	FailCount int64
	FailRows  []int // row indices that fail, capped at sampleCap (uncapped when sampleCap <= 0)
}

// Run evaluates rule against frame, returning which rows fail.
func Run(ctx context.Context, rule *kontra.Rule, frame *kontra.Frame, sampleCap int) (Result, error) {
	start := time.Now()
	defer func() {
		telemetry.EmitTierDuration(ctx, "local", float64(time.Since(start).Milliseconds()))
	}()

	switch p := rule.Params.(type) {
	case *kontra.MinRowsParams:
		status := kontra.StatusFail
		if int64(frame.NumRows) >= p.Min {
			status = kontra.StatusPass
		}
		return Result{Status: status, FailCount: int64(frame.NumRows)}, nil
	case *kontra.MaxRowsParams:
		status := kontra.StatusFail
		if int64(frame.NumRows) <= p.Max {
			status = kontra.StatusPass
		}
		return Result{Status: status, FailCount: int64(frame.NumRows)}, nil
	case *kontra.CustomSQLCheckParams:
		return Result{}, kontra.NewRuntimeError(kontra.ErrCodeInternal,
			"fallback: custom_sql_check has no local evaluator, SQL tier is mandatory for this rule", nil).WithRuleID(rule.RuleID)
	}

	mask, err := compile(rule, frame)
	if err != nil {
		return Result{}, err
	}

	var failCount int64
	var failRows []int
	for i := 0; i < frame.NumRows; i++ {
		if mask(i) {
			failCount++
			if sampleCap <= 0 || len(failRows) < sampleCap {
				failRows = append(failRows, i)
			}
		}
	}

	status := kontra.StatusPass
	if failCount > 0 {
		status = kontra.StatusFail
	}
	return Result{Status: status, FailCount: failCount, FailRows: failRows}, nil
}

// SampleFrom extracts SampleRow values for the given row indices, using
// frame's column order so every sample row reports the same column set.
func SampleFrom(frame *kontra.Frame, rows []int) []kontra.SampleRow {
	out := make([]kontra.SampleRow, 0, len(rows))
	for _, i := range rows {
		values := make(map[string]any, len(frame.Order))
		for _, col := range frame.Order {
			v, ok := frame.Column(col)
			if !ok {
				continue
			}
			values[col] = valueAt(v, i)
		}
		out = append(out, kontra.SampleRow{Values: values})
	}
	return out
}

func valueAt(v *kontra.Vector, i int) any {
	if v.IsNull(i) {
		return nil
	}
	switch v.Kind {
	case kontra.VectorString:
		return v.Strings[i]
	case kontra.VectorInt64:
		return v.Int64s[i]
	case kontra.VectorFloat64:
		return v.Float64s[i]
	case kontra.VectorBool:
		return v.Bools[i]
	case kontra.VectorTime:
		return v.Times[i]
	default:
		return nil
	}
}
