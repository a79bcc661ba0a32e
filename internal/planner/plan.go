// Package planner compiles a kontra.Contract into a typed execution plan:
// which tier each rule should attempt first, and the column projection union
// needed to materialize a Frame for whichever rules end up demoted to local
// (SPEC_FULL.md §4.6). Grounded directly on the teacher's
// internal/federated_interfaces.go ExecutionPlan/DataSourcePlan/
// RoutingDecision structs and internal/federated_routing.go's
// EvaluateRoutingPolicy, generalized from {hot,warm,cold} data tiers to
// {metadata,sql,local} execution tiers.
package planner

import (
	"github.com/saevarl/kontra"
)

// RuleRoute is one rule's routing decision: its first-attempt tier and the
// reason for it. The tiers it falls through to are chosen by the engine.
type RuleRoute struct {
	Rule        *kontra.Rule
	FirstTier   kontra.Tier
	Reason      string
}

// Plan is the compiled routing plan for one Validate call.
type Plan struct {
	Dataset    string
	Dialect    kontra.Dialect
	Routes     []RuleRoute
	Projection []string // empty means materialize every column
}

// Compile builds a Plan for contract against a dataset of the given dialect,
// honoring the caller's tier overrides in opts (§4.6's Auto/On/Off per tier).
func Compile(contract *kontra.Contract, dialect kontra.Dialect, opts kontra.Options, maxInListSize int) (*Plan, error) {
	if err := contract.Compile(); err != nil {
		return nil, err
	}

	plan := &Plan{Dataset: contract.Dataset, Dialect: dialect}
	colSet := make(map[string]struct{})

	for _, rule := range contract.Rules {
		route := route(rule, dialect, opts, maxInListSize)
		plan.Routes = append(plan.Routes, route)
		for _, c := range rule.Params.RequiredColumns() {
			colSet[c] = struct{}{}
		}
	}

	if opts.Projection {
		for c := range colSet {
			plan.Projection = append(plan.Projection, c)
		}
	}

	return plan, nil
}

func route(rule *kontra.Rule, dialect kontra.Dialect, opts kontra.Options, maxInListSize int) RuleRoute {
	if demotedByListSize(rule, maxInListSize) {
		return RuleRoute{Rule: rule, FirstTier: kontra.TierLocal, Reason: "allowed_values exceeds max_in_list_size, demoted to local"}
	}

	if opts.Preplan != kontra.Off && rule.Params.SupportsMetadata(dialect) {
		return RuleRoute{Rule: rule, FirstTier: kontra.TierMetadata, Reason: "metadata preplan eligible for dialect " + string(dialect)}
	}
	if opts.Pushdown != kontra.Off && rule.Params.SupportsSQL(dialect) {
		return RuleRoute{Rule: rule, FirstTier: kontra.TierSQL, Reason: "SQL pushdown eligible for dialect " + string(dialect)}
	}
	return RuleRoute{Rule: rule, FirstTier: kontra.TierLocal, Reason: "no metadata or SQL emitter for this rule/dialect combination"}
}

func demotedByListSize(rule *kontra.Rule, maxInListSize int) bool {
	p, ok := rule.Params.(*kontra.AllowedValuesParams)
	if !ok || maxInListSize <= 0 {
		return false
	}
	return len(p.Values) > maxInListSize
}

// ToExecutionPlan converts the internal Plan into the public
// kontra.ExecutionPlan exposed on ValidationResult (§6).
func (p *Plan) ToExecutionPlan() *kontra.ExecutionPlan {
	out := &kontra.ExecutionPlan{Dataset: p.Dataset}
	for _, r := range p.Routes {
		out.Entries = append(out.Entries, kontra.ExecutionPlanEntry{
			RuleID: r.Rule.RuleID,
			Tier:   r.FirstTier,
			Reason: r.Reason,
		})
	}
	return out
}
