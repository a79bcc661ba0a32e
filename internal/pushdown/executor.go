// Package pushdown runs rules as SQL against a dataset's backing store: a
// Phase-A EXISTS fail-fast check, followed by a Phase-B aggregate exact count
// when Rule.Tally requires it (SPEC_FULL.md §4.4). Grounded on the teacher's
// internal/postgres_duckdb_query.go federated execution shape: build SQL, run
// it, bind results, handle partial failure by demoting rather than erroring
// the whole call.
package pushdown

import (
	"context"
	"time"

	"github.com/saevarl/kontra"
	"github.com/saevarl/kontra/internal/obslog"
	"github.com/saevarl/kontra/internal/resilience"
	"github.com/saevarl/kontra/internal/sqlgen"
	"github.com/saevarl/kontra/internal/telemetry"

	"go.uber.org/zap"
)

// Result is one rule's pushdown outcome.
type Result struct {
	Resolved   bool // false means: demote to fallback
	Status     kontra.Status
	FailCount  int64
	TotalCount int64
	Exact      bool
	Reason     string
}

// Executor runs the two-phase pushdown protocol for one dataset/dialect pair.
type Executor struct {
	Dialect kontra.Dialect
	Table   string
	Runner  kontra.SQLRunnerFunc
	Breaker *resilience.Breaker
	Logger  *zap.Logger
}

// RunBatch attempts every rule in rules against the executor's backing store,
// issuing at most one round-trip per phase (§1, §4.4): every EXISTS-eligible
// rule lands in one multi-alias fail-fast statement, every tally rule in one
// multi-alias aggregate statement. unique/min_rows/max_rows/custom_sql_check
// have query shapes that can't share a FROM clause with the generic predicate
// batches, so those still run one round-trip each. It never returns a fatal
// error for an ordinary SQL failure: those demote the rule, matching §4.4's
// "demotion stays silent to the caller" design. A true error return means the
// context was cancelled or a custom_sql_check statement was rejected by
// sqlgen.ValidateCustomSQL.
func (e *Executor) RunBatch(ctx context.Context, rules []*kontra.Rule) (map[string]Result, error) {
	results := make(map[string]Result, len(rules))

	if e.Breaker != nil && e.Breaker.IsOpen() {
		for _, rule := range rules {
			telemetry.EmitTierOutcome(ctx, "sql", "demoted")
			results[rule.RuleID] = Result{Resolved: false, Reason: "circuit breaker open for dialect " + string(e.Dialect)}
		}
		return results, nil
	}

	dialect, err := sqlgen.For(e.Dialect)
	if err != nil {
		for _, rule := range rules {
			results[rule.RuleID] = Result{Resolved: false, Reason: err.Error()}
		}
		return results, nil
	}

	start := time.Now()
	defer func() {
		telemetry.EmitTierDuration(ctx, "sql", float64(time.Since(start).Milliseconds()))
	}()

	var existsRules, aggRules []*kontra.Rule
	for _, rule := range rules {
		switch p := rule.Params.(type) {
		case *kontra.MinRowsParams, *kontra.MaxRowsParams:
			res, err := e.runRowCount(ctx, rule, e.ruleLogger(rule))
			if err != nil {
				return nil, err
			}
			results[rule.RuleID] = res
		case *kontra.UniqueParams:
			res, err := e.runUnique(ctx, dialect, rule, p, e.ruleLogger(rule))
			if err != nil {
				return nil, err
			}
			results[rule.RuleID] = res
		case *kontra.CustomSQLCheckParams:
			res, err := e.runCustomSQL(ctx, rule, p, e.ruleLogger(rule))
			if err != nil {
				return nil, err
			}
			results[rule.RuleID] = res
		default:
			if rule.Tally {
				aggRules = append(aggRules, rule)
			} else {
				existsRules = append(existsRules, rule)
			}
		}
	}

	if len(existsRules) > 0 {
		if err := e.runExistsBatch(ctx, dialect, existsRules, results); err != nil {
			return nil, err
		}
	}
	if len(aggRules) > 0 {
		if err := e.runAggBatch(ctx, dialect, aggRules, results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (e *Executor) ruleLogger(rule *kontra.Rule) *zap.Logger {
	if e.Logger == nil {
		return nil
	}
	return obslog.ForRule(e.Logger, rule.RuleID, e.Dialect)
}

// runExistsBatch builds the rules' failing predicates against one shared
// ParamIndex (they all land in the same statement, so their placeholders
// must not collide) and issues Phase A's single EXISTS round-trip.
func (e *Executor) runExistsBatch(ctx context.Context, dialect sqlgen.Dialect, rules []*kontra.Rule, results map[string]Result) error {
	idx := &sqlgen.ParamIndex{}
	items := make([]sqlgen.BatchPredicate, 0, len(rules))
	for _, rule := range rules {
		predicate, args, err := sqlgen.FailingPredicate(dialect, rule, idx)
		if err != nil {
			e.recordFailure(e.ruleLogger(rule), "no SQL fragment emitter", err)
			results[rule.RuleID] = Result{Resolved: false, Reason: "no SQL fragment emitter"}
			continue
		}
		items = append(items, sqlgen.BatchPredicate{RuleID: rule.RuleID, Predicate: predicate, Args: args})
	}
	if len(items) == 0 {
		return nil
	}

	query, args, aliasToRule := sqlgen.BuildBatchExistsQuery(dialect, e.Table, items)
	row, err := e.Runner(ctx, query, args)
	if err != nil {
		res, demoteErr := e.demoteOnError(ctx, err)
		if demoteErr != nil {
			return demoteErr
		}
		for _, it := range items {
			results[it.RuleID] = res
		}
		return nil
	}
	e.recordSuccess()
	for alias, ruleID := range aliasToRule {
		anyFail, _ := row[alias].(bool)
		if !anyFail {
			results[ruleID] = Result{Resolved: true, Status: kontra.StatusPass, Exact: true}
			continue
		}
		results[ruleID] = Result{Resolved: true, Status: kontra.StatusFail, Exact: false}
	}
	return nil
}

// runAggBatch builds the rules' failing predicates against one shared
// ParamIndex and issues Phase B's single aggregate round-trip, which also
// returns the shared row total so every rule in the batch gets an exact
// TotalCount without an extra query.
func (e *Executor) runAggBatch(ctx context.Context, dialect sqlgen.Dialect, rules []*kontra.Rule, results map[string]Result) error {
	idx := &sqlgen.ParamIndex{}
	items := make([]sqlgen.BatchPredicate, 0, len(rules))
	for _, rule := range rules {
		predicate, args, err := sqlgen.FailingPredicate(dialect, rule, idx)
		if err != nil {
			e.recordFailure(e.ruleLogger(rule), "no SQL fragment emitter", err)
			results[rule.RuleID] = Result{Resolved: false, Reason: "no SQL fragment emitter"}
			continue
		}
		items = append(items, sqlgen.BatchPredicate{RuleID: rule.RuleID, Predicate: predicate, Args: args})
	}
	if len(items) == 0 {
		return nil
	}

	query, args, aliasToRule := sqlgen.BuildBatchAggQuery(dialect, e.Table, items)
	row, err := e.Runner(ctx, query, args)
	if err != nil {
		res, demoteErr := e.demoteOnError(ctx, err)
		if demoteErr != nil {
			return demoteErr
		}
		for _, it := range items {
			results[it.RuleID] = res
		}
		return nil
	}
	e.recordSuccess()
	total := toInt64(row["total"])
	for alias, ruleID := range aliasToRule {
		count := toInt64(row[alias])
		status := kontra.StatusPass
		if count > 0 {
			status = kontra.StatusFail
		}
		results[ruleID] = Result{Resolved: true, Status: status, FailCount: count, TotalCount: total, Exact: true}
	}
	return nil
}

func (e *Executor) runUnique(ctx context.Context, dialect sqlgen.Dialect, rule *kontra.Rule, p *kontra.UniqueParams, logger *zap.Logger) (Result, error) {
	query := sqlgen.BuildUniqueCountQuery(dialect, e.Table, p.Columns)
	row, err := e.Runner(ctx, query, nil)
	if err != nil {
		return e.demoteOnError(ctx, err)
	}
	e.recordSuccess()
	count := toInt64(row["fail_count"])
	status := kontra.StatusPass
	if count > 0 {
		status = kontra.StatusFail
	}
	return Result{Resolved: true, Status: status, FailCount: count, Exact: true}, nil
}

func (e *Executor) runRowCount(ctx context.Context, rule *kontra.Rule, _ *zap.Logger) (Result, error) {
	query := sqlgen.BuildTotalCountQuery(e.Table)
	row, err := e.Runner(ctx, query, nil)
	if err != nil {
		return e.demoteOnError(ctx, err)
	}
	e.recordSuccess()
	total := toInt64(row["total"])

	var pass bool
	switch p := rule.Params.(type) {
	case *kontra.MinRowsParams:
		pass = total >= p.Min
	case *kontra.MaxRowsParams:
		pass = total <= p.Max
	}
	status := kontra.StatusFail
	if pass {
		status = kontra.StatusPass
	}
	return Result{Resolved: true, Status: status, FailCount: total, TotalCount: total, Exact: true}, nil
}

func (e *Executor) runCustomSQL(ctx context.Context, rule *kontra.Rule, p *kontra.CustomSQLCheckParams, _ *zap.Logger) (Result, error) {
	if err := sqlgen.ValidateCustomSQL(p.SQL); err != nil {
		return Result{}, err
	}
	query := sqlgen.WrapCustomSQL(p.SQL, e.Table)
	row, err := e.Runner(ctx, query, nil)
	if err != nil {
		return e.demoteOnError(ctx, err)
	}
	e.recordSuccess()
	count := toInt64(row["fail_count"])
	status := kontra.StatusPass
	if count > 0 {
		status = kontra.StatusFail
	}
	return Result{Resolved: true, Status: status, FailCount: count, Exact: true}, nil
}

func (e *Executor) demoteOnError(ctx context.Context, cause error) (Result, error) {
	if ctx.Err() != nil {
		return Result{}, kontra.NewCancelledError("pushdown: context cancelled").WithCause(ctx.Err())
	}
	e.recordFailure(e.Logger, "pushdown execution failed", cause)
	return Result{Resolved: false, Reason: "pushdown execution error, demoting to fallback"}, nil
}

func (e *Executor) recordFailure(logger *zap.Logger, msg string, err error) {
	if e.Breaker != nil {
		e.Breaker.RecordFailure()
	}
	if logger != nil {
		logger.Warn(msg, zap.Error(err))
	}
}

func (e *Executor) recordSuccess() {
	if e.Breaker != nil {
		e.Breaker.RecordSuccess()
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
