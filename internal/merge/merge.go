// Package merge assembles per-tier rule outcomes into the final, ordered
// RuleResult list (SPEC_FULL.md §4.6, §4.7). Grounded on the teacher's
// internal/federated_merge.go MergePersistentRecordsByTier: deterministic
// per-key resolution with a defined tie-break order, generalized here from
// "last write wins across hot/warm/cold" to "first tier to resolve a rule
// wins", with the contract's declared rule order preserved in the output
// (never re-sorted by tier or outcome).
package merge

import (
	"fmt"
	"time"

	"github.com/saevarl/kontra"
)

// Attempt is one tier's outcome for one rule, fed into Merge in whatever
// order the engine actually executed.
type Attempt struct {
	RuleID        string
	Tier          kontra.Tier
	Resolved      bool
	Status        kontra.Status
	FailCount     int64
	Exact         bool
	TotalCount    int64
	Samples       []kontra.SampleRow
	SamplesSource kontra.Tier
	SamplesReason string
	Err           *kontra.Error
	Duration      time.Duration
}

// Merge combines every tier attempt for each rule in contract into one
// RuleResult per rule, preserving contract.Rules' declared order (§4.7's
// tier-agreement invariant: the final status is whichever tier actually
// resolved the rule; a rule demoted by every tier reports Undecided instead
// of a guessed verdict).
func Merge(contract *kontra.Contract, attempts []Attempt) []*kontra.RuleResult {
	byRule := make(map[string][]Attempt, len(attempts))
	for _, a := range attempts {
		byRule[a.RuleID] = append(byRule[a.RuleID], a)
	}

	results := make([]*kontra.RuleResult, 0, len(contract.Rules))
	for _, rule := range contract.Rules {
		results = append(results, mergeOne(rule, byRule[rule.RuleID]))
	}
	return results
}

func mergeOne(rule *kontra.Rule, ruleAttempts []Attempt) *kontra.RuleResult {
	result := &kontra.RuleResult{
		RuleID:   rule.RuleID,
		Name:     rule.Name,
		Severity: rule.Severity,
		Status:   kontra.StatusUndecided,
		Context:  rule.Context,
	}
	if rule.Params.RuleScope() == kontra.ScopeColumn {
		if cols := rule.Params.RequiredColumns(); len(cols) == 1 {
			result.Column = cols[0]
		}
	}

	var totalDuration time.Duration
	for _, a := range ruleAttempts {
		totalDuration += a.Duration
		if a.Err != nil {
			result.Error = a.Err
		}
		if !a.Resolved {
			continue
		}
		// First tier to resolve wins; later attempts for the same rule never
		// happen in a correct pipeline (each rule stops being attempted once
		// resolved), but this keeps Merge total over malformed attempt lists.
		if result.Status == kontra.StatusUndecided {
			result.Status = a.Status
			result.Source = a.Tier
			result.FailCount = a.FailCount
			result.FailCountExact = a.Exact
			result.TotalCount = a.TotalCount
			result.Samples = a.Samples
			result.SamplesSource = a.SamplesSource
			result.SamplesReason = a.SamplesReason
		}
	}
	result.Duration = totalDuration
	result.Passed = result.Status == kontra.StatusPass
	result.Message = resultMessage(rule, result.Status, result.FailCount, result.FailCountExact)
	if result.FailCountExact && result.TotalCount > 0 {
		rate := float64(result.FailCount) / float64(result.TotalCount)
		result.ViolationRate = &rate
	}
	return result
}

func resultMessage(rule *kontra.Rule, status kontra.Status, failCount int64, exact bool) string {
	switch status {
	case kontra.StatusPass:
		return fmt.Sprintf("%s passed", rule.Name)
	case kontra.StatusFail:
		if exact {
			return fmt.Sprintf("%s failed: %d failing row(s)", rule.Name, failCount)
		}
		return fmt.Sprintf("%s failed: at least one failing row", rule.Name)
	default:
		return fmt.Sprintf("%s undecided: every tier demoted", rule.Name)
	}
}
