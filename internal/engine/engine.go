// Package engine wires the planner, preplan resolver, pushdown executor,
// fallback executor and merger into the concrete kontra.Engine
// implementation (SPEC_FULL.md §2, §4.6, §4.7). Grounded on the teacher's
// internal/entity_manager.go: a single top-level orchestrator that calls into
// its own sub-packages in a fixed sequence and assembles one response object,
// generalized here from CRUD-over-EAV-attributes to compile-plan /
// route-per-tier / merge.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saevarl/kontra"
	"github.com/saevarl/kontra/internal/fallback"
	"github.com/saevarl/kontra/internal/merge"
	"github.com/saevarl/kontra/internal/planner"
	"github.com/saevarl/kontra/internal/preplan"
	"github.com/saevarl/kontra/internal/pushdown"
	"github.com/saevarl/kontra/internal/resilience"
	"github.com/saevarl/kontra/internal/telemetry"
)

// Engine is the concrete kontra.Engine implementation.
type Engine struct {
	registry *kontra.Registry
	logger   *zap.Logger
	exec     kontra.ExecutionConfig
	breakers *resilience.Registry
}

// New builds an Engine from construction-time settings. logger may be nil
// (obslog.New wasn't run); the engine then runs silently.
func New(registry *kontra.Registry, exec kontra.ExecutionConfig, logger *zap.Logger) *Engine {
	return &Engine{
		registry: registry,
		logger:   logger,
		exec:     exec,
		breakers: resilience.NewRegistry(exec.CircuitBreakerThreshold, exec.CircuitBreakerWindow, exec.CircuitBreakerOpenFor),
	}
}

func (e *Engine) Registry() *kontra.Registry { return e.registry }

// Validate runs every rule in contract against dataset using the three-tier
// pipeline (§4.6), merging tier results deterministically (§4.7).
func (e *Engine) Validate(ctx context.Context, contract *kontra.Contract, dataset kontra.DatasetHandle, opts kontra.Options) (*kontra.ValidationResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	if !opts.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, opts.Deadline)
		defer cancel()
	}

	plan, err := planner.Compile(contract, dataset.Dialect(), opts, e.exec.MaxInListSize)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return &kontra.ValidationResult{
			ContractName: contract.Name,
			Dataset:      contract.Dataset,
			Plan:         plan.ToExecutionPlan(),
			Stats:        kontra.ExecutionStats{RunID: runID},
		}, nil
	}

	run := &run{
		engine:  e,
		ctx:     ctx,
		dataset: dataset,
		opts:    opts,
		budget:  fallback.NewBudget(opts.SampleBudget),

		projection: plan.Projection,
	}
	defer run.close()

	if opts.Preplan != kontra.Off {
		run.stats = preplan.FromHandle(dataset)
	}
	if opts.Pushdown != kontra.Off {
		run.pushdownExec = e.buildPushdownExecutor(dataset)
	}

	attempts, demotions, rulesByTier, err := run.resolveAll(plan.Routes)
	if err != nil {
		return nil, err
	}

	results := merge.Merge(contract, attempts)

	totalRows := run.rowsMaterialized
	if totalRows == 0 {
		if n, ok := dataset.RowCountHint(ctx); ok {
			totalRows = n
		}
	}
	score := contract.QualityScore(results, totalRows)

	var failedCount int
	passed := true
	for _, res := range results {
		if res.Status == kontra.StatusFail {
			failedCount++
		}
		if res.Severity == kontra.SeverityBlocking && !res.Passed {
			passed = false
		}
	}

	for tier, n := range rulesByTier {
		telemetry.EmitRuleCount(ctx, string(tier), n)
	}
	telemetry.EmitValidationDuration(ctx, contract.Dataset, float64(time.Since(start).Milliseconds()))

	return &kontra.ValidationResult{
		ContractName: contract.Name,
		Dataset:      contract.Dataset,
		Passed:       passed,
		Results:      results,
		QualityScore: score,
		TotalRows:    totalRows,
		TotalRules:   len(results),
		FailedCount:  failedCount,
		Stats: kontra.ExecutionStats{
			RunID:            runID,
			TotalDuration:    time.Since(start),
			RulesAttempted:   len(plan.Routes),
			RulesByTier:      rulesByTier,
			Demotions:        demotions,
			RowsMaterialized: run.rowsMaterialized,
		},
		Plan: plan.ToExecutionPlan(),
	}, nil
}

func (e *Engine) buildPushdownExecutor(dataset kontra.DatasetHandle) *pushdown.Executor {
	runner, ok := dataset.SQLRunner()
	if !ok {
		return nil
	}
	tableSource, ok := dataset.(kontra.SQLTable)
	if !ok {
		return nil
	}
	dialect := dataset.Dialect()
	return &pushdown.Executor{
		Dialect: dialect,
		Table:   tableSource.Table(),
		Runner:  runner,
		Breaker: e.breakers.For(string(dialect)),
		Logger:  e.logger,
	}
}

// run carries the per-Validate-call state the tier chain shares: the lazily
// materialized Frame (only built the first time a rule demotes all the way
// to local), the sample budget, and the stats/pushdown helpers built once per
// call rather than per rule.
type run struct {
	engine       *Engine
	ctx          context.Context
	dataset      kontra.DatasetHandle
	opts         kontra.Options
	stats        preplan.StatsResolver
	pushdownExec *pushdown.Executor
	budget       *fallback.Budget
	projection   []string // plan.Projection: union of every rule's columns, empty when projection is off

	frame            *kontra.Frame
	frameErr         error
	frameLoaded      bool
	rowsMaterialized int64
}

func (r *run) close() {
	// dataset lifecycle belongs to the caller; Validate never closes it.
}

func (r *run) ensureFrame(projection []string) (*kontra.Frame, error) {
	if r.frameLoaded {
		return r.frame, r.frameErr
	}
	r.frameLoaded = true
	r.frame, r.frameErr = r.dataset.Materialize(r.ctx, projection)
	if r.frameErr == nil && r.frame != nil {
		r.rowsMaterialized = int64(r.frame.NumRows)
	}
	return r.frame, r.frameErr
}

// resolveAll runs every routed rule through the three-tier pipeline. The SQL
// tier batches every rule that reaches it into one round-trip per phase (§1,
// §4.4) rather than one round-trip per rule: merge.Merge keys attempts by
// RuleID and doesn't care what order they were collected in, so rules can be
// advanced stage-by-stage (metadata for all, then SQL for all survivors, then
// local for all survivors) instead of chained tier-by-tier one rule at a
// time. A non-nil error means the call's context was cancelled or a
// custom_sql_check statement was rejected by sqlgen.ValidateCustomSQL, and
// Validate aborts entirely; any other failure demotes silently per §4.4/§4.7.
func (r *run) resolveAll(routes []planner.RuleRoute) ([]merge.Attempt, []kontra.DemotionRecord, map[kontra.Tier]int, error) {
	attempts := make(map[string]merge.Attempt, len(routes))
	rulesByTier := make(map[kontra.Tier]int)
	nextTier := make(map[string]kontra.Tier, len(routes))
	var demotions []kontra.DemotionRecord

	// Stage 1: metadata tier for every rule routed to it.
	var afterMetadata []*kontra.Rule
	for _, route := range routes {
		rule := route.Rule
		if route.FirstTier != kontra.TierMetadata {
			nextTier[rule.RuleID] = route.FirstTier
			afterMetadata = append(afterMetadata, rule)
			continue
		}
		if r.stats == nil {
			next := r.afterMetadata(rule)
			demotions = append(demotions, kontra.DemotionRecord{RuleID: rule.RuleID, FromTier: kontra.TierMetadata, ToTier: next, Reason: "preplan disabled for this call"})
			nextTier[rule.RuleID] = next
			afterMetadata = append(afterMetadata, rule)
			continue
		}
		outcome := preplan.Decide(rule, r.columnStatsFn(), r.rowCountFn())
		telemetry.EmitTierOutcome(r.ctx, "metadata", outcomeLabel(outcome.Resolved))
		if outcome.Resolved {
			attempts[rule.RuleID] = merge.Attempt{RuleID: rule.RuleID, Tier: kontra.TierMetadata, Resolved: true, Status: outcome.Status, FailCount: outcome.FailCount, Exact: outcome.Exact}
			rulesByTier[kontra.TierMetadata]++
			continue
		}
		next := r.afterMetadata(rule)
		demotions = append(demotions, kontra.DemotionRecord{RuleID: rule.RuleID, FromTier: kontra.TierMetadata, ToTier: next, Reason: "metadata tier undecided"})
		nextTier[rule.RuleID] = next
		afterMetadata = append(afterMetadata, rule)
	}

	// Stage 2: one batched round-trip per phase for every rule that reached
	// the SQL tier.
	var afterSQL, sqlRules []*kontra.Rule
	for _, rule := range afterMetadata {
		tier := nextTier[rule.RuleID]
		if tier == kontra.TierSQL && r.pushdownExec != nil {
			sqlRules = append(sqlRules, rule)
			continue
		}
		if tier == kontra.TierSQL {
			demotions = append(demotions, kontra.DemotionRecord{RuleID: rule.RuleID, FromTier: kontra.TierSQL, ToTier: kontra.TierLocal, Reason: "no pushdown executor for this dataset"})
		}
		afterSQL = append(afterSQL, rule)
	}

	if len(sqlRules) > 0 {
		batchResults, err := r.pushdownExec.RunBatch(r.ctx, sqlRules)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, rule := range sqlRules {
			res := batchResults[rule.RuleID]
			telemetry.EmitTierOutcome(r.ctx, "sql", outcomeLabel(res.Resolved))
			if res.Resolved {
				attempts[rule.RuleID] = merge.Attempt{RuleID: rule.RuleID, Tier: kontra.TierSQL, Resolved: true, Status: res.Status, FailCount: res.FailCount, TotalCount: res.TotalCount, Exact: res.Exact}
				rulesByTier[kontra.TierSQL]++
				continue
			}
			demotions = append(demotions, kontra.DemotionRecord{RuleID: rule.RuleID, FromTier: kontra.TierSQL, ToTier: kontra.TierLocal, Reason: res.Reason})
			afterSQL = append(afterSQL, rule)
		}
	}

	// Stage 3: local fallback for whatever no earlier stage resolved.
	for _, rule := range afterSQL {
		attempts[rule.RuleID] = r.resolveLocal(rule)
		rulesByTier[kontra.TierLocal]++
	}

	list := make([]merge.Attempt, 0, len(attempts))
	for _, a := range attempts {
		list = append(list, a)
	}
	return list, demotions, rulesByTier, nil
}

// afterMetadata picks the tier a rule falls through to once the metadata
// tier fails to resolve it: SQL if the dialect and variant support it,
// otherwise straight to local.
func (r *run) afterMetadata(rule *kontra.Rule) kontra.Tier {
	if r.opts.Pushdown != kontra.Off && rule.Params.SupportsSQL(r.dataset.Dialect()) {
		return kontra.TierSQL
	}
	return kontra.TierLocal
}

func (r *run) resolveLocal(rule *kontra.Rule) merge.Attempt {
	frame, err := r.ensureFrame(r.projection)
	if err != nil {
		return merge.Attempt{RuleID: rule.RuleID, Err: asKontraError(err)}
	}

	sampleCap := r.opts.Sample
	res, err := fallback.Run(r.ctx, rule, frame, sampleCap)
	if err != nil {
		return merge.Attempt{RuleID: rule.RuleID, Err: asKontraError(err)}
	}

	granted := r.budget.Take(min(len(res.FailRows), sampleCap))
	samples := fallback.SampleFrom(frame, res.FailRows[:granted])
	samplesReason := ""
	if granted < len(res.FailRows) {
		samplesReason = "sample budget exhausted"
	}

	return merge.Attempt{
		RuleID:        rule.RuleID,
		Tier:          kontra.TierLocal,
		Resolved:      true,
		Status:        res.Status,
		FailCount:     res.FailCount,
		TotalCount:    int64(frame.NumRows),
		Exact:         true,
		Samples:       samples,
		SamplesSource: kontra.TierLocal,
		SamplesReason: samplesReason,
	}
}

func (r *run) columnStatsFn() func(string) (preplan.ColumnStats, bool) {
	return func(column string) (preplan.ColumnStats, bool) {
		s, err := r.stats.ColumnStats(r.ctx, column)
		if err != nil {
			return preplan.ColumnStats{}, false
		}
		return s, true
	}
}

func (r *run) rowCountFn() func() (int64, bool) {
	return func() (int64, bool) {
		n, ok, err := r.stats.RowCount(r.ctx)
		if err != nil {
			return 0, false
		}
		return n, ok
	}
}

func outcomeLabel(resolved bool) string {
	if resolved {
		return "resolved"
	}
	return "demoted"
}

func asKontraError(err error) *kontra.Error {
	if e, ok := err.(*kontra.Error); ok {
		return e
	}
	return kontra.NewRuntimeError(kontra.ErrCodeInternal, err.Error(), err)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
