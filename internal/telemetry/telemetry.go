// Package telemetry is a swappable, no-op-by-default metrics emitter used by
// every execution tier to report timings and tier-assignment counts (§2, §4.6
// of SPEC_FULL.md). Generalized from the teacher's internal/telemetry.go.
package telemetry

import (
	"context"
	"sync"
)

// Emitter receives a named measurement with labels. Callers register a real
// backend (Prometheus, OpenTelemetry, a test recorder) via Register; the
// default is a no-op so Kontra never takes a hard dependency on a metrics SDK.
type Emitter func(ctx context.Context, name string, labels map[string]string, value float64)

var (
	mu   sync.Mutex
	impl Emitter = func(context.Context, string, map[string]string, float64) {}
)

// Register installs a custom emitter. Passing nil restores the no-op default.
func Register(fn Emitter) {
	mu.Lock()
	defer mu.Unlock()
	if fn == nil {
		impl = func(context.Context, string, map[string]string, float64) {}
		return
	}
	impl = fn
}

func current() Emitter {
	mu.Lock()
	defer mu.Unlock()
	return impl
}

// EmitTierDuration records how long a tier attempt took for one rule.
func EmitTierDuration(ctx context.Context, tier string, ms float64) {
	current()(ctx, "kontra_tier_duration_ms", map[string]string{"tier": tier}, ms)
}

// EmitTierOutcome increments a counter for a (tier, outcome) pair, where
// outcome is "resolved", "demoted", or "error".
func EmitTierOutcome(ctx context.Context, tier, outcome string) {
	current()(ctx, "kontra_tier_outcome_total", map[string]string{"tier": tier, "outcome": outcome}, 1)
}

// EmitRuleCount records how many rules were routed to a tier for one call.
func EmitRuleCount(ctx context.Context, tier string, count int) {
	current()(ctx, "kontra_rules_by_tier", map[string]string{"tier": tier}, float64(count))
}

// EmitValidationDuration records the total wall-clock time of a Validate call.
func EmitValidationDuration(ctx context.Context, dataset string, ms float64) {
	current()(ctx, "kontra_validation_duration_ms", map[string]string{"dataset": dataset}, ms)
}
