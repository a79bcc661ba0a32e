package kontra

// Contract is a named, ordered set of rules bound to one dataset. Rule order
// is preserved verbatim into ValidationResult.Results (§4.6/§4.7's
// deterministic-merge invariant depends on it).
type Contract struct {
	Name            string
	Dataset         string
	Rules           []*Rule
	SeverityWeights map[Severity]float64
}

// Compile validates a contract's internal consistency: no duplicate rule ids,
// every rule's params already self-validated at NewRule time. The planner
// calls this before building an ExecutionPlan; embedders may call it earlier
// to fail fast on a malformed contract (§7, MALFORMED_CONTRACT).
func (c *Contract) Compile() error {
	if c.Dataset == "" {
		return NewConfigError(ErrCodeMalformedContract, "contract: dataset is required")
	}
	seen := make(map[string]struct{}, len(c.Rules))
	for _, r := range c.Rules {
		if r == nil {
			return NewConfigError(ErrCodeMalformedContract, "contract: nil rule")
		}
		if r.RuleID == "" {
			return NewConfigError(ErrCodeMalformedContract, "contract: rule with empty id").
				WithDetail("variant", string(r.Name))
		}
		if _, dup := seen[r.RuleID]; dup {
			return NewConfigError(ErrCodeDuplicateRuleID, "contract: duplicate rule id").
				WithRuleID(r.RuleID)
		}
		seen[r.RuleID] = struct{}{}
	}
	return nil
}

// QualityScore computes the severity-weighted quality score over row-level
// rules (§4.8): 1 - (Σ failed_count_r * weight_r) / (total_rows * Σ weight_r).
// Dataset-scoped rules (min_rows, max_rows, custom_sql_check) don't measure
// row quality and are excluded. Returns nil when no severity weights are
// configured or totalRows is unknown - a missing denominator is "null", never
// a guessed 1.0.
func (c *Contract) QualityScore(results []*RuleResult, totalRows int64) *float64 {
	if len(c.SeverityWeights) == 0 || totalRows <= 0 {
		return nil
	}
	var failWeighted, weightSum float64
	for _, res := range results {
		rule := c.ruleByID(res.RuleID)
		if rule == nil || rule.Params.RuleScope() == ScopeDataset {
			continue
		}
		weight, ok := c.SeverityWeights[rule.Severity]
		if !ok {
			weight = 1.0
		}
		failWeighted += float64(res.FailCount) * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return nil
	}
	score := 1 - (failWeighted / (float64(totalRows) * weightSum))
	return &score
}

func (c *Contract) ruleByID(id string) *Rule {
	for _, r := range c.Rules {
		if r.RuleID == id {
			return r
		}
	}
	return nil
}
