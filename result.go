package kontra

import "time"

// Status is a rule's pass/fail outcome. The engine's only overall verdict is
// ValidationResult.Passed, which is false when any SeverityBlocking rule did
// not pass; rules of other severities never affect it.
type Status string

const (
	StatusPass      Status = "pass"
	StatusFail      Status = "fail"
	StatusUndecided Status = "undecided" // every tier demoted; see §4.7
)

// Tier identifies which execution tier ultimately produced a RuleResult.
type Tier string

const (
	TierMetadata Tier = "metadata"
	TierSQL      Tier = "sql"
	TierLocal    Tier = "local"
)

// SampleRow is one example failing row collected for a rule, subject to the
// sample/budget caps in Options (§4.5, §4.7).
type SampleRow struct {
	Values map[string]any `json:"values"`
}

// DemotionRecord notes that a rule was attempted at a higher tier and fell
// back, and why (§4.4's "demotion stays silent to the caller" - recorded here,
// not surfaced as an error).
type DemotionRecord struct {
	RuleID    string `json:"rule_id"`
	FromTier  Tier   `json:"from_tier"`
	ToTier    Tier   `json:"to_tier"`
	Reason    string `json:"reason"`
}

// RuleResult is one rule's outcome (§6). A FAIL whose count is only a lower
// bound (a metadata-tier or EXISTS fail-fast verdict) carries
// FailCountExact false.
type RuleResult struct {
	RuleID         string         `json:"rule_id"`
	Name           RuleVariant    `json:"name"`
	Passed         bool           `json:"passed"`
	Status         Status         `json:"status"`
	Source         Tier           `json:"source"`
	Message        string         `json:"message,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
	Column         string         `json:"column,omitempty"`
	FailCount      int64          `json:"fail_count"`
	FailCountExact bool           `json:"fail_count_exact"`
	TotalCount     int64          `json:"total_count,omitempty"`
	ViolationRate  *float64       `json:"violation_rate,omitempty"`
	Samples        []SampleRow    `json:"samples,omitempty"`
	SamplesSource  Tier           `json:"samples_source,omitempty"`
	SamplesReason  string         `json:"samples_reason,omitempty"`
	Severity       Severity       `json:"severity"`
	Error          *Error         `json:"error,omitempty"`
	Duration       time.Duration  `json:"duration"`
}

// ExecutionStats summarizes how a Validate call actually ran, per §6.
type ExecutionStats struct {
	RunID           string           `json:"run_id"`
	TotalDuration    time.Duration   `json:"total_duration"`
	RulesAttempted   int             `json:"rules_attempted"`
	RulesByTier      map[Tier]int    `json:"rules_by_tier"`
	Demotions        []DemotionRecord `json:"demotions,omitempty"`
	RowsMaterialized int64           `json:"rows_materialized,omitempty"`
}

// ValidationResult is the complete, stable JSON surface of a Validate call
// (§6). Results preserves the contract's declared rule order. QualityScore is
// nil (omitted from the JSON) when the contract has no severity weights
// configured (§4.8) - never a guessed 1.0.
type ValidationResult struct {
	ContractName string         `json:"contract_name"`
	Dataset      string         `json:"dataset"`
	Passed       bool           `json:"passed"`
	Results      []*RuleResult  `json:"results"`
	QualityScore *float64       `json:"quality_score,omitempty"`
	TotalRows    int64          `json:"total_rows,omitempty"`
	TotalRules   int            `json:"total_rules"`
	FailedCount  int            `json:"failed_count"`
	Stats        ExecutionStats `json:"stats"`
	Plan         *ExecutionPlan `json:"plan,omitempty"`
}

// ExecutionPlan describes the tier each rule was routed to and why, produced
// by the planner before any tier executes (§4.6). Exposed on ValidationResult
// when Options.DryRun is set, or always when a caller wants visibility into
// routing decisions.
type ExecutionPlan struct {
	Dataset string                `json:"dataset"`
	Entries []ExecutionPlanEntry  `json:"entries"`
}

// ExecutionPlanEntry is one rule's routing decision within an ExecutionPlan.
type ExecutionPlanEntry struct {
	RuleID       string `json:"rule_id"`
	Tier         Tier   `json:"tier"`
	Reason       string `json:"reason"`
	FallbackTier Tier   `json:"fallback_tier,omitempty"`
}
