package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

func buildContract(t *testing.T, ruleIDs ...string) *kontra.Contract {
	t.Helper()
	rules := make([]*kontra.Rule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		r, err := kontra.NewRule(kontra.RuleNotNull, &kontra.NotNullParams{Column: "id"}, kontra.WithID(id))
		require.NoError(t, err)
		rules = append(rules, r)
	}
	return &kontra.Contract{Name: "merge-test", Dataset: "rows", Rules: rules}
}

func TestMerge_FirstResolvedTierWins(t *testing.T) {
	contract := buildContract(t, "r1")
	attempts := []Attempt{
		{RuleID: "r1", Tier: kontra.TierMetadata, Resolved: false},
		{RuleID: "r1", Tier: kontra.TierSQL, Resolved: true, Status: kontra.StatusFail, FailCount: 3, Exact: true, TotalCount: 10},
		{RuleID: "r1", Tier: kontra.TierLocal, Resolved: true, Status: kontra.StatusPass},
	}

	results := Merge(contract, attempts)
	require.Len(t, results, 1)
	assert.Equal(t, kontra.StatusFail, results[0].Status)
	assert.Equal(t, kontra.TierSQL, results[0].Source)
	assert.Equal(t, int64(3), results[0].FailCount)
	assert.True(t, results[0].FailCountExact)
	assert.False(t, results[0].Passed)
}

func TestMerge_UndecidedWhenNoTierResolves(t *testing.T) {
	contract := buildContract(t, "r1")
	attempts := []Attempt{
		{RuleID: "r1", Tier: kontra.TierMetadata, Resolved: false},
	}

	results := Merge(contract, attempts)
	require.Len(t, results, 1)
	assert.Equal(t, kontra.StatusUndecided, results[0].Status)
}

func TestMerge_PreservesContractRuleOrder(t *testing.T) {
	contract := buildContract(t, "r1", "r2", "r3")
	attempts := []Attempt{
		{RuleID: "r3", Tier: kontra.TierLocal, Resolved: true, Status: kontra.StatusPass},
		{RuleID: "r1", Tier: kontra.TierLocal, Resolved: true, Status: kontra.StatusFail},
	}

	results := Merge(contract, attempts)
	require.Len(t, results, 3)
	assert.Equal(t, "r1", results[0].RuleID)
	assert.Equal(t, "r2", results[1].RuleID)
	assert.Equal(t, "r3", results[2].RuleID)
	assert.Equal(t, kontra.StatusUndecided, results[1].Status)
}

func TestMerge_RuleWithNoAttempts(t *testing.T) {
	contract := buildContract(t, "r1")
	results := Merge(contract, nil)
	require.Len(t, results, 1)
	assert.Equal(t, kontra.StatusUndecided, results[0].Status)
	assert.Nil(t, results[0].Error)
}

func TestMerge_PopulatesColumnAndViolationRate(t *testing.T) {
	contract := buildContract(t, "r1")
	attempts := []Attempt{
		{RuleID: "r1", Tier: kontra.TierSQL, Resolved: true, Status: kontra.StatusFail, FailCount: 2, Exact: true, TotalCount: 8},
	}

	results := Merge(contract, attempts)
	require.Len(t, results, 1)
	assert.Equal(t, "id", results[0].Column)
	require.NotNil(t, results[0].ViolationRate)
	assert.Equal(t, 0.25, *results[0].ViolationRate)
	assert.NotEmpty(t, results[0].Message)
}

func TestMerge_PassedTrueOnPass(t *testing.T) {
	contract := buildContract(t, "r1")
	attempts := []Attempt{
		{RuleID: "r1", Tier: kontra.TierLocal, Resolved: true, Status: kontra.StatusPass},
	}

	results := Merge(contract, attempts)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed)
	assert.Nil(t, results[0].ViolationRate)
}

func TestMerge_CarriesErrorEvenWhenUnresolved(t *testing.T) {
	contract := buildContract(t, "r1")
	kontraErr := kontra.NewConnectionError("merge test", assert.AnError)
	attempts := []Attempt{
		{RuleID: "r1", Tier: kontra.TierSQL, Resolved: false, Err: kontraErr},
	}

	results := Merge(contract, attempts)
	require.Len(t, results, 1)
	assert.Equal(t, kontra.StatusUndecided, results[0].Status)
	assert.Equal(t, kontraErr, results[0].Error)
}
