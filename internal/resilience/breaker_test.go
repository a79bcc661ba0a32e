package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := New(3, time.Minute, time.Hour)
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := New(2, time.Minute, time.Hour)
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreaker_FailuresOutsideWindowDontAccumulate(t *testing.T) {
	b := New(2, time.Nanosecond, time.Hour)
	b.RecordFailure()
	time.Sleep(time.Millisecond)
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreaker_NilReceiverIsSafe(t *testing.T) {
	var b *Breaker
	assert.False(t, b.IsOpen())
	assert.NotPanics(t, func() {
		b.RecordFailure()
		b.RecordSuccess()
	})
}

func TestRegistry_PerDialectIsolation(t *testing.T) {
	r := NewRegistry(1, time.Minute, time.Hour)
	pg := r.For("postgres")
	pg.RecordFailure()
	assert.True(t, r.For("postgres").IsOpen())
	assert.False(t, r.For("duckdb").IsOpen())
}

func TestRegistry_SameDialectReturnsSameBreaker(t *testing.T) {
	r := NewRegistry(5, time.Minute, time.Hour)
	assert.Same(t, r.For("postgres"), r.For("postgres"))
}
