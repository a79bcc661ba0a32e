package kontra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScoreContract(t *testing.T) *Contract {
	t.Helper()
	notNull, err := NewRule(RuleNotNull, &NotNullParams{Column: "id"}, WithSeverity(SeverityBlocking))
	require.NoError(t, err)
	minRows, err := NewRule(RuleMinRows, &MinRowsParams{Min: 1}, WithSeverity(SeverityBlocking))
	require.NoError(t, err)
	return &Contract{
		Name:    "score-test",
		Dataset: "rows",
		Rules:   []*Rule{notNull, minRows},
		SeverityWeights: map[Severity]float64{
			SeverityBlocking: 1.0,
		},
	}
}

func TestQualityScore_NullWhenNoSeverityWeights(t *testing.T) {
	c := &Contract{Name: "c", Dataset: "d", Rules: nil}
	score := c.QualityScore(nil, 100)
	assert.Nil(t, score)
}

func TestQualityScore_NullWhenTotalRowsUnknown(t *testing.T) {
	c := buildScoreContract(t)
	score := c.QualityScore([]*RuleResult{{RuleID: c.Rules[0].RuleID, FailCount: 0}}, 0)
	assert.Nil(t, score)
}

func TestQualityScore_ExcludesDatasetScopedRules(t *testing.T) {
	c := buildScoreContract(t)
	results := []*RuleResult{
		{RuleID: c.Rules[0].RuleID, FailCount: 10}, // not_null, row-level
		{RuleID: c.Rules[1].RuleID, FailCount: 999}, // min_rows, dataset-scoped, must not count
	}
	score := c.QualityScore(results, 100)
	require.NotNil(t, score)
	assert.InDelta(t, 1-(10.0/100.0), *score, 1e-9)
}

func TestQualityScore_WeightedFormula(t *testing.T) {
	c := &Contract{
		Name:    "c",
		Dataset: "d",
		Rules: func() []*Rule {
			blocking, _ := NewRule(RuleNotNull, &NotNullParams{Column: "a"}, WithSeverity(SeverityBlocking), WithID("blocking"))
			warning, _ := NewRule(RuleNotNull, &NotNullParams{Column: "b"}, WithSeverity(SeverityWarning), WithID("warning"))
			return []*Rule{blocking, warning}
		}(),
		SeverityWeights: map[Severity]float64{
			SeverityBlocking: 1.0,
			SeverityWarning:  0.5,
		},
	}
	results := []*RuleResult{
		{RuleID: "blocking", FailCount: 5},
		{RuleID: "warning", FailCount: 10},
	}
	score := c.QualityScore(results, 100)
	require.NotNil(t, score)
	// (5*1.0 + 10*0.5) / (100 * 1.5) = 10 / 150
	want := 1 - (10.0 / 150.0)
	assert.InDelta(t, want, *score, 1e-9)
}
