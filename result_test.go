package kontra

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidationResult_JSONRoundTrip exercises the stable JSON surface of a
// Validate call (§6, §8.9): marshal then unmarshal must reproduce the value,
// including a present quality_score and the optional samples and context fields.
func TestValidationResult_JSONRoundTrip(t *testing.T) {
	rate := 0.25
	score := 0.82
	original := &ValidationResult{
		ContractName: "orders",
		Dataset:      "orders_fact",
		Passed:       false,
		Results: []*RuleResult{
			{
				RuleID:         "r1",
				Name:           RuleNotNull,
				Passed:         false,
				Status:         StatusFail,
				Source:         TierSQL,
				Message:        "not_null failed: 2 failing row(s)",
				Context:        map[string]any{"owner": "data-eng"},
				Column:         "id",
				FailCount:      2,
				FailCountExact: true,
				TotalCount:     8,
				ViolationRate:  &rate,
				Samples:        []SampleRow{{Values: map[string]any{"id": nil}}},
				SamplesSource:  TierLocal,
				Severity:       SeverityBlocking,
				Duration:       250 * time.Millisecond,
			},
			{
				RuleID:   "r2",
				Name:     RuleMinRows,
				Passed:   true,
				Status:   StatusPass,
				Source:   TierMetadata,
				Severity: SeverityWarning,
			},
		},
		QualityScore: &score,
		TotalRows:    1000,
		TotalRules:   2,
		FailedCount:  1,
		Stats: ExecutionStats{
			RunID:          "run-1",
			TotalDuration:  time.Second,
			RulesAttempted: 2,
			RulesByTier:    map[Tier]int{TierSQL: 1, TierMetadata: 1},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var roundTripped ValidationResult
	require.NoError(t, json.Unmarshal(data, &roundTripped))

	assert.Equal(t, original, &roundTripped)
}

func TestValidationResult_QualityScoreNullWhenAbsent(t *testing.T) {
	original := &ValidationResult{ContractName: "orders", Dataset: "orders_fact"}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"quality_score"`)

	var roundTripped ValidationResult
	require.NoError(t, json.Unmarshal(data, &roundTripped))
	assert.Nil(t, roundTripped.QualityScore)
}
