package preplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

func mustRule(t *testing.T, name kontra.RuleVariant, params kontra.RuleParams) *kontra.Rule {
	t.Helper()
	r, err := kontra.NewRule(name, params)
	require.NoError(t, err)
	return r
}

func noStats(string) (ColumnStats, bool) { return ColumnStats{}, false }
func noRowCount() (int64, bool)          { return 0, false }

func TestDecide_NotNull_PositiveCountIsLowerBound(t *testing.T) {
	rule := mustRule(t, kontra.RuleNotNull, &kontra.NotNullParams{Column: "id"})
	stats := func(string) (ColumnStats, bool) {
		return ColumnStats{HasNullCount: true, NullCount: 3}, true
	}
	outcome := Decide(rule, stats, noRowCount)
	assert.True(t, outcome.Resolved)
	assert.Equal(t, kontra.StatusFail, outcome.Status)
	assert.False(t, outcome.Exact)
	assert.Equal(t, int64(1), outcome.FailCount)
}

func TestDecide_NotNull_ZeroCountIsExactPass(t *testing.T) {
	rule := mustRule(t, kontra.RuleNotNull, &kontra.NotNullParams{Column: "id"})
	stats := func(string) (ColumnStats, bool) {
		return ColumnStats{HasNullCount: true, NullCount: 0}, true
	}
	outcome := Decide(rule, stats, noRowCount)
	assert.True(t, outcome.Resolved)
	assert.Equal(t, kontra.StatusPass, outcome.Status)
	assert.True(t, outcome.Exact)
}

func TestDecide_Range_OutOfBoundsIsLowerBound(t *testing.T) {
	min := 0.0
	rule := mustRule(t, kontra.RuleRange, &kontra.RangeParams{Column: "price", Min: &min})
	stats := func(string) (ColumnStats, bool) {
		return ColumnStats{HasMinMax: true, Min: -5, Max: 100}, true
	}
	outcome := Decide(rule, stats, noRowCount)
	assert.True(t, outcome.Resolved)
	assert.Equal(t, kontra.StatusFail, outcome.Status)
	assert.False(t, outcome.Exact)
	assert.Equal(t, int64(1), outcome.FailCount)
}

func TestDecide_Freshness_StaleIsLowerBound(t *testing.T) {
	rule := mustRule(t, kontra.RuleFreshness, &kontra.FreshnessParams{Column: "updated_at", MaxAge: time.Hour})
	stats := func(string) (ColumnStats, bool) {
		return ColumnStats{HasMaxTime: true, MaxTime: time.Now().Add(-24 * time.Hour)}, true
	}
	outcome := Decide(rule, stats, noRowCount)
	assert.True(t, outcome.Resolved)
	assert.Equal(t, kontra.StatusFail, outcome.Status)
	assert.False(t, outcome.Exact)
	assert.Equal(t, int64(1), outcome.FailCount)
}

func TestDecide_DType_MismatchIsExactFail(t *testing.T) {
	rule := mustRule(t, kontra.RuleDType, &kontra.DTypeParams{Column: "id", ExpectedType: "int"})
	stats := func(string) (ColumnStats, bool) {
		return ColumnStats{HasDType: true, DType: "string"}, true
	}
	outcome := Decide(rule, stats, noRowCount)
	assert.True(t, outcome.Resolved)
	assert.Equal(t, kontra.StatusFail, outcome.Status)
	assert.True(t, outcome.Exact)
}

func TestDecide_Undecided_WhenNoStats(t *testing.T) {
	rule := mustRule(t, kontra.RuleNotNull, &kontra.NotNullParams{Column: "id"})
	outcome := Decide(rule, noStats, noRowCount)
	assert.False(t, outcome.Resolved)
}
