// Package resilience guards the SQL pushdown tier with a per-dialect circuit
// breaker: repeated failures against the same dialect open the breaker so
// later calls skip straight to demotion instead of re-attempting a doomed
// round trip. Generalized from the teacher's internal/circuit_breaker.go,
// which guarded a single global DuckDB connection; here one breaker exists
// per dialect.
package resilience

import (
	"sync"
	"time"
)

// Breaker is a lightweight in-memory circuit breaker.
type Breaker struct {
	mu           sync.Mutex
	failures     []time.Time
	threshold    int
	window       time.Duration
	openUntil    time.Time
	openDuration time.Duration
}

// New creates a configured breaker: it opens once threshold failures occur
// within window, and stays open for openDuration.
func New(threshold int, window, openDuration time.Duration) *Breaker {
	return &Breaker{
		threshold:    threshold,
		window:       window,
		openDuration: openDuration,
		failures:     make([]time.Time, 0, threshold),
	}
}

// RecordFailure records a failure and opens the breaker if threshold is met.
func (b *Breaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-b.window)
	i := 0
	for ; i < len(b.failures); i++ {
		if b.failures[i].After(cutoff) {
			break
		}
	}
	if i > 0 {
		b.failures = append([]time.Time{}, b.failures[i:]...)
	}
	b.failures = append(b.failures, now)

	if len(b.failures) >= b.threshold {
		b.openUntil = now.Add(b.openDuration)
	}
}

// RecordSuccess clears failure history, closing the breaker.
func (b *Breaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = b.failures[:0]
	b.openUntil = time.Time{}
}

// IsOpen reports whether the breaker is currently open.
func (b *Breaker) IsOpen() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().Before(b.openUntil)
}

// Registry holds one Breaker per dialect, created lazily on first use.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	threshold int
	window    time.Duration
	openFor   time.Duration
}

// NewRegistry builds a per-dialect breaker registry with shared tuning
// parameters (mirrors kontra.ExecutionConfig's circuit breaker fields).
func NewRegistry(threshold int, window, openFor time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*Breaker),
		threshold: threshold,
		window:    window,
		openFor:   openFor,
	}
}

// For returns the breaker for dialect, creating it on first access.
func (r *Registry) For(dialect string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[dialect]
	if !ok {
		b = New(r.threshold, r.window, r.openFor)
		r.breakers[dialect] = b
	}
	return b
}
