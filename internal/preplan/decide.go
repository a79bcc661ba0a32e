// Package preplan resolves rules from dataset metadata alone - footer
// statistics, catalog schema, row-count estimates - without reading row data
// (SPEC_FULL.md §4.3). A metadata-only FAIL is resolved and reported as a
// lower bound (FailCount 1, Exact false) rather than falling through to the
// next tier; only a dtype mismatch is reported as an exact FAIL.
package preplan

import (
	"context"
	"time"

	"github.com/saevarl/kontra"
)

// ColumnStats is whatever metadata a StatsResolver could cheaply gather for
// one column without reading row data.
type ColumnStats struct {
	HasNullCount bool
	NullCount    int64
	HasMinMax    bool
	Min, Max     float64
	HasMaxTime   bool
	MaxTime      time.Time
	DType        string
	HasDType     bool
}

// StatsResolver gathers per-column and dataset-level metadata for one
// dialect. internal/preplan/parquet.go, postgres.go, and mssql.go each
// implement one.
type StatsResolver interface {
	ColumnStats(ctx context.Context, column string) (ColumnStats, error)
	RowCount(ctx context.Context) (int64, bool, error)
}

// Outcome is a preplan attempt's verdict for one rule. A resolved FAIL is
// only ever a lower bound (Exact false, FailCount 1) unless it rests on a
// definitive catalog fact (dtype mismatch), per §4.3.
type Outcome struct {
	Resolved  bool
	Status    kontra.Status
	Exact     bool
	FailCount int64
	Reason    string
}

// undecided is returned whenever metadata can't prove the rule one way or the
// other; the planner treats this as "route to the next tier", never as a
// final result.
var undecided = Outcome{Resolved: false}

// Decide attempts to resolve rule using stats, for rules whose RuleParams
// reports SupportsMetadata for dialect. Dialect-independent: the resolver
// already normalized stats into the dialect-neutral ColumnStats shape.
func Decide(rule *kontra.Rule, stats func(column string) (ColumnStats, bool), rowCount func() (int64, bool)) Outcome {
	switch p := rule.Params.(type) {
	case *kontra.NotNullParams:
		s, ok := stats(p.Column)
		if !ok || !s.HasNullCount {
			return undecided
		}
		if s.NullCount == 0 {
			return Outcome{Resolved: true, Status: kontra.StatusPass, Exact: true, Reason: "footer null_count is 0"}
		}
		// positive null_count proves at least one violation, but the exact
		// count may have shifted since the footer was written.
		return Outcome{Resolved: true, Status: kontra.StatusFail, Exact: false, FailCount: 1, Reason: "footer null_count is positive, lower bound only"}

	case *kontra.RangeParams:
		s, ok := stats(p.Column)
		if !ok || !s.HasMinMax {
			return undecided
		}
		if p.Min != nil && s.Min < *p.Min {
			return Outcome{Resolved: true, Status: kontra.StatusFail, Exact: false, FailCount: 1, Reason: "footer min below range, lower bound only"}
		}
		if p.Max != nil && s.Max > *p.Max {
			return Outcome{Resolved: true, Status: kontra.StatusFail, Exact: false, FailCount: 1, Reason: "footer max above range, lower bound only"}
		}
		return Outcome{Resolved: true, Status: kontra.StatusPass, Exact: true, Reason: "footer min/max within bounds"}

	case *kontra.DTypeParams:
		s, ok := stats(p.Column)
		if !ok || !s.HasDType {
			return undecided
		}
		if s.DType == p.ExpectedType {
			return Outcome{Resolved: true, Status: kontra.StatusPass, Exact: true, Reason: "catalog dtype matches"}
		}
		return Outcome{Resolved: true, Status: kontra.StatusFail, Exact: true, Reason: "catalog dtype mismatch"}

	case *kontra.FreshnessParams:
		s, ok := stats(p.Column)
		if !ok || !s.HasMaxTime {
			return undecided
		}
		if time.Since(s.MaxTime.UTC()) <= p.MaxAge {
			return Outcome{Resolved: true, Status: kontra.StatusPass, Exact: true, Reason: "footer max() within max_age"}
		}
		return Outcome{Resolved: true, Status: kontra.StatusFail, Exact: false, FailCount: 1, Reason: "footer max() past max_age, lower bound only"}

	case *kontra.MinRowsParams:
		n, ok := rowCount()
		if !ok {
			return undecided
		}
		if n >= p.Min {
			return Outcome{Resolved: true, Status: kontra.StatusPass, Exact: true, Reason: "row count hint satisfies min_rows"}
		}
		return undecided

	case *kontra.MaxRowsParams:
		n, ok := rowCount()
		if !ok {
			return undecided
		}
		if n <= p.Max {
			return Outcome{Resolved: true, Status: kontra.StatusPass, Exact: true, Reason: "row count hint satisfies max_rows"}
		}
		return undecided

	default:
		return undecided
	}
}
