package kontra

import "time"

// TriState lets a caller force a tier on or off instead of leaving the
// decision to the planner's auto policy (§4.3, §4.6).
type TriState int

const (
	Auto TriState = iota
	On
	Off
)

// Options configures a single Validate call. Unlike Config, nothing here
// survives across calls.
type Options struct {
	// Preplan controls whether the metadata tier is attempted (Auto: planner
	// decides per-rule per §4.3's decision matrix).
	Preplan TriState
	// Pushdown controls whether the SQL tier is attempted.
	Pushdown TriState
	// Projection, when true, restricts materialization to the union of
	// columns the contract's rules actually require (§4.2).
	Projection bool
	// TallyDefault is not read by the planner or engine: whether a rule takes
	// an exact failing-row count or EXISTS fail-fast semantics comes from its
	// own Rule.Tally.
	TallyDefault bool
	// Sample caps how many example failing rows are collected per rule.
	Sample int
	// SampleBudget caps the total number of failing rows collected across all
	// rules in the call (§4.5, §4.7).
	SampleBudget int
	// DryRun, when true, builds and returns the ExecutionPlan without
	// executing any tier.
	DryRun bool
	// Deadline, if non-zero, bounds the whole call; tiers in flight when it
	// elapses return a Cancelled-category error (§7).
	Deadline time.Time
}

// DefaultOptions returns the engine's default per-call behavior.
func DefaultOptions() Options {
	return Options{
		Preplan:      Auto,
		Pushdown:     Auto,
		Projection:   true,
		TallyDefault: false,
		Sample:       10,
		SampleBudget: 100,
	}
}
