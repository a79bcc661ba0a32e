package sqlgen

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

func TestFailingPredicate_NotNull(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleNotNull, &kontra.NotNullParams{Column: "id"}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"id" IS NULL`, pred)
	assert.Empty(t, args)
}

func TestFailingPredicate_AllowedValues_IndexesPlaceholders(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleAllowedValues, &kontra.AllowedValuesParams{Column: "status", Values: []any{"a", "b"}}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"status" IS NOT NULL AND "status" NOT IN ($1, $2)`, pred)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestFailingPredicate_AllowedValues_Empty(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	// NewRule rejects an empty Values list, so the rule is built directly to
	// reach the emitter's empty-list branch.
	rule := &kontra.Rule{RuleID: "empty", Name: kontra.RuleAllowedValues, Params: &kontra.AllowedValuesParams{Column: "status", Values: nil}}
	pred, args, err := FailingPredicate(d, rule, idx)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", pred)
	assert.Empty(t, args)
}

func TestFailingPredicate_Range_BothBounds(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	min, max := 0.0, 100.0
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleRange, &kontra.RangeParams{Column: "price", Min: &min, Max: &max}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"price" IS NOT NULL AND ("price" < $1 OR "price" > $2)`, pred)
	assert.Equal(t, []any{0.0, 100.0}, args)
}

func TestFailingPredicate_Range_ExclusiveMin(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	min := 0.0
	pred, _, err := FailingPredicate(d, mustRule(t, kontra.RuleRange, &kontra.RangeParams{Column: "price", Min: &min, ExclusiveMin: true}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"price" IS NOT NULL AND ("price" <= $1)`, pred)
}

func TestFailingPredicate_Length(t *testing.T) {
	d, err := For(kontra.DialectMSSQL)
	require.NoError(t, err)
	idx := &ParamIndex{}
	minLen := 3
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleLength, &kontra.LengthParams{Column: "name", Min: &minLen}), idx)
	require.NoError(t, err)
	assert.Equal(t, `[name] IS NOT NULL AND (LEN([name]) < ?)`, pred)
	assert.Equal(t, []any{3}, args)
}

func TestFailingPredicate_Regex_DuckDB(t *testing.T) {
	d, err := For(kontra.DialectDuckDB)
	require.NoError(t, err)
	idx := &ParamIndex{}
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleRegex, &kontra.RegexParams{Column: "email", Pattern: "^a"}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"email" IS NOT NULL AND NOT (regexp_matches("email", ?))`, pred)
	assert.Equal(t, []any{"^a"}, args)
}

func TestFailingPredicate_Regex_MSSQLUnsupported(t *testing.T) {
	d, err := For(kontra.DialectMSSQL)
	require.NoError(t, err)
	idx := &ParamIndex{}
	_, _, err = FailingPredicate(d, mustRule(t, kontra.RuleRegex, &kontra.RegexParams{Column: "email", Pattern: "^a"}), idx)
	assert.Error(t, err)
}

func TestFailingPredicate_Compare(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleCompare, &kontra.CompareParams{ColumnA: "start", ColumnB: "end", Op: kontra.OpLte}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"start" IS NOT NULL AND "end" IS NOT NULL AND NOT ("start" <= "end")`, pred)
	assert.Empty(t, args)
}

func TestFailingPredicate_Compare_UnsupportedOp(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	// built directly rather than via NewRule: CompareParams.Validate already
	// rejects an unknown op, so this exercises FailingPredicate's own check.
	badRule := &kontra.Rule{RuleID: "bad", Name: kontra.RuleCompare, Params: &kontra.CompareParams{ColumnA: "a", ColumnB: "b", Op: kontra.CompareOp("bogus")}}
	_, _, err = FailingPredicate(d, badRule, idx)
	assert.Error(t, err)
}

func TestFailingPredicate_Freshness(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	pred, args, err := FailingPredicate(d, mustRule(t, kontra.RuleFreshness, &kontra.FreshnessParams{Column: "updated_at", MaxAge: time.Hour}), idx)
	require.NoError(t, err)
	assert.Equal(t, `"updated_at" IS NOT NULL AND "updated_at" < now() - ($1 || ' seconds')::interval`, pred)
	assert.Equal(t, []any{3600.0}, args)
}

func TestParamIndex_SharedAcrossFragments(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	idx := &ParamIndex{}
	_, _, err = FailingPredicate(d, mustRule(t, kontra.RuleNotNull, &kontra.NotNullParams{Column: "a"}), idx)
	require.NoError(t, err)
	_, args, err := FailingPredicate(d, mustRule(t, kontra.RuleAllowedValues, &kontra.AllowedValuesParams{Column: "b", Values: []any{1}}), idx)
	require.NoError(t, err)
	assert.Equal(t, []any{1}, args)
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, 1, idx.n)
}

func TestBuildBatchExistsQuery_OneRoundTripPerBatch(t *testing.T) {
	items := []BatchPredicate{
		{RuleID: "rule-id", Predicate: `"id" IS NULL`},
		{RuleID: "rule-price", Predicate: `"price" IS NOT NULL AND "price" < $1`, Args: []any{0.0}},
	}
	q, args, aliasToRule := BuildBatchExistsQuery(nil, `"listings"`, items)
	assert.Equal(t, `SELECT EXISTS(SELECT 1 FROM "listings" WHERE "id" IS NULL) AS r0, EXISTS(SELECT 1 FROM "listings" WHERE "price" IS NOT NULL AND "price" < $1) AS r1`, q)
	assert.Equal(t, []any{0.0}, args)
	assert.Equal(t, map[string]string{"r0": "rule-id", "r1": "rule-price"}, aliasToRule)
}

func TestBuildBatchExistsQuery_Empty(t *testing.T) {
	q, args, aliasToRule := BuildBatchExistsQuery(nil, `"listings"`, nil)
	assert.Equal(t, "SELECT ", q)
	assert.Empty(t, args)
	assert.Empty(t, aliasToRule)
}

func TestBuildBatchAggQuery_OneRoundTripPerBatch(t *testing.T) {
	items := []BatchPredicate{
		{RuleID: "rule-id", Predicate: `"id" IS NULL`},
		{RuleID: "rule-price", Predicate: `"price" < $1`, Args: []any{0.0}},
	}
	q, args, aliasToRule := BuildBatchAggQuery(nil, `"listings"`, items)
	assert.Equal(t, `SELECT COUNT(*) AS total, SUM(CASE WHEN "id" IS NULL THEN 1 ELSE 0 END) AS r0, SUM(CASE WHEN "price" < $1 THEN 1 ELSE 0 END) AS r1 FROM "listings"`, q)
	assert.Equal(t, []any{0.0}, args)
	assert.Equal(t, map[string]string{"r0": "rule-id", "r1": "rule-price"}, aliasToRule)
}

func TestBuildTotalCountQuery(t *testing.T) {
	assert.Equal(t, `SELECT COUNT(*) AS total FROM "listings"`, BuildTotalCountQuery(`"listings"`))
}

func TestBuildUniqueCountQuery(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	q := BuildUniqueCountQuery(d, `"listings"`, []string{"email"})
	assert.Contains(t, q, `GROUP BY "email"`)
	assert.Contains(t, q, `"email" IS NOT NULL`)
}
