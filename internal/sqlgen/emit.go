package sqlgen

import (
	"fmt"
	"strings"

	"github.com/saevarl/kontra"
)

// ParamIndex tracks the running placeholder count across fragments batched
// into one statement, mirroring the teacher's *paramIndex threading through
// buildPgMainClause/buildDuckClause.
type ParamIndex struct{ n int }

// Next advances and returns the placeholder for this argument.
func (p *ParamIndex) Next(d Dialect) string {
	p.n++
	return d.Placeholder(p.n)
}

// FailingPredicate returns a boolean SQL expression that is true for rows
// that FAIL the rule, plus the ordered arguments it binds. The EXISTS-phase
// and aggregate-phase query builders both consume this same fragment (§4.4:
// "two-phase: EXISTS fail-fast / aggregate exact-count" share one predicate).
func FailingPredicate(d Dialect, rule *kontra.Rule, idx *ParamIndex) (string, []any, error) {
	col := d.QuoteIdent
	switch p := rule.Params.(type) {
	case *kontra.NotNullParams:
		return fmt.Sprintf("%s IS NULL", col(p.Column)), nil, nil

	case *kontra.AllowedValuesParams:
		if len(p.Values) == 0 {
			return "FALSE", nil, nil
		}
		phs := make([]string, len(p.Values))
		args := make([]any, len(p.Values))
		for i, v := range p.Values {
			phs[i] = idx.Next(d)
			args[i] = v
		}
		return fmt.Sprintf("%s IS NOT NULL AND %s NOT IN (%s)", col(p.Column), col(p.Column), strings.Join(phs, ", ")), args, nil

	case *kontra.DisallowedValuesParams:
		if len(p.Values) == 0 {
			return "FALSE", nil, nil
		}
		phs := make([]string, len(p.Values))
		args := make([]any, len(p.Values))
		for i, v := range p.Values {
			phs[i] = idx.Next(d)
			args[i] = v
		}
		// NULL passes (decided, DESIGN.md Open Questions) - the IN test is
		// already false for NULL under three-valued logic, no extra guard needed.
		return fmt.Sprintf("%s IN (%s)", col(p.Column), strings.Join(phs, ", ")), args, nil

	case *kontra.RangeParams:
		var parts []string
		var args []any
		if p.Min != nil {
			op := ">="
			if p.ExclusiveMin {
				op = ">"
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", col(p.Column), invert(op), idx.Next(d)))
			args = append(args, *p.Min)
		}
		if p.Max != nil {
			op := "<="
			if p.ExclusiveMax {
				op = "<"
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", col(p.Column), invert(op), idx.Next(d)))
			args = append(args, *p.Max)
		}
		return fmt.Sprintf("%s IS NOT NULL AND (%s)", col(p.Column), strings.Join(parts, " OR ")), args, nil

	case *kontra.LengthParams:
		lenExpr := lengthExpr(d, col(p.Column))
		var parts []string
		var args []any
		if p.Min != nil {
			parts = append(parts, fmt.Sprintf("%s < %s", lenExpr, idx.Next(d)))
			args = append(args, *p.Min)
		}
		if p.Max != nil {
			parts = append(parts, fmt.Sprintf("%s > %s", lenExpr, idx.Next(d)))
			args = append(args, *p.Max)
		}
		return fmt.Sprintf("%s IS NOT NULL AND (%s)", col(p.Column), strings.Join(parts, " OR ")), args, nil

	case *kontra.RegexParams:
		ph := idx.Next(d)
		expr, err := regexExpr(d, col(p.Column), ph)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s IS NOT NULL AND NOT (%s)", col(p.Column), expr), []any{p.Pattern}, nil

	case *kontra.ContainsParams:
		ph := idx.Next(d)
		return fmt.Sprintf("%s IS NOT NULL AND %s NOT LIKE %s", col(p.Column), col(p.Column), likeConcat(d, "%", ph, "%")), []any{p.Substr}, nil

	case *kontra.StartsWithParams:
		ph := idx.Next(d)
		return fmt.Sprintf("%s IS NOT NULL AND %s NOT LIKE %s", col(p.Column), col(p.Column), likeConcat(d, "", ph, "%")), []any{p.Prefix}, nil

	case *kontra.EndsWithParams:
		ph := idx.Next(d)
		return fmt.Sprintf("%s IS NOT NULL AND %s NOT LIKE %s", col(p.Column), col(p.Column), likeConcat(d, "%", ph, "")), []any{p.Suffix}, nil

	case *kontra.CompareParams:
		sqlOp, err := compareOp(p.Op)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s IS NOT NULL AND %s IS NOT NULL AND NOT (%s %s %s)",
			col(p.ColumnA), col(p.ColumnB), col(p.ColumnA), sqlOp, col(p.ColumnB)), nil, nil

	case *kontra.FreshnessParams:
		ph := idx.Next(d)
		return fmt.Sprintf("%s IS NOT NULL AND %s < %s", col(p.Column), col(p.Column), freshnessCutoff(d, ph)), []any{p.MaxAge.Seconds()}, nil

	default:
		return "", nil, kontra.NewSQLError(kontra.ErrCodeUnsupportedDialect,
			fmt.Sprintf("sqlgen: no SQL fragment emitter for variant %q", rule.Name), nil)
	}
}

// invert flips a "passes" comparator into the "fails" form used by
// FailingPredicate (value outside [min,max] means the row fails).
func invert(op string) string {
	switch op {
	case ">=":
		return "<"
	case ">":
		return "<="
	case "<=":
		return ">"
	case "<":
		return ">="
	}
	return op
}

func compareOp(op kontra.CompareOp) (string, error) {
	switch op {
	case kontra.OpEq:
		return "=", nil
	case kontra.OpNeq:
		return "!=", nil
	case kontra.OpGt:
		return ">", nil
	case kontra.OpGte:
		return ">=", nil
	case kontra.OpLt:
		return "<", nil
	case kontra.OpLte:
		return "<=", nil
	default:
		return "", kontra.NewConfigError(kontra.ErrCodeInvalidParam, fmt.Sprintf("compare: unsupported op %q", op))
	}
}

func lengthExpr(d Dialect, col string) string {
	if d.Name() == kontra.DialectMSSQL {
		return fmt.Sprintf("LEN(%s)", col)
	}
	return fmt.Sprintf("LENGTH(%s)", col)
}

func regexExpr(d Dialect, col, ph string) (string, error) {
	switch d.Name() {
	case kontra.DialectDuckDB:
		return fmt.Sprintf("regexp_matches(%s, %s)", col, ph), nil
	case kontra.DialectPostgres:
		return fmt.Sprintf("%s ~ %s", col, ph), nil
	default:
		return "", kontra.NewSQLError(kontra.ErrCodeUnsupportedDialect,
			fmt.Sprintf("sqlgen: regex has no SQL emitter for dialect %q, demote to local", d.Name()), nil)
	}
}

func likeConcat(d Dialect, prefix, ph, suffix string) string {
	if prefix == "" {
		return fmt.Sprintf("%s || %s", ph, quoteLit(d, suffix))
	}
	if suffix == "" {
		return fmt.Sprintf("%s || %s", quoteLit(d, prefix), ph)
	}
	return fmt.Sprintf("%s || %s || %s", quoteLit(d, prefix), ph, quoteLit(d, suffix))
}

func quoteLit(d Dialect, s string) string {
	if d.Name() == kontra.DialectMSSQL {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func freshnessCutoff(d Dialect, ph string) string {
	switch d.Name() {
	case kontra.DialectPostgres:
		return fmt.Sprintf("now() - (%s || ' seconds')::interval", ph)
	case kontra.DialectMSSQL:
		return fmt.Sprintf("DATEADD(SECOND, -%s, SYSUTCDATETIME())", ph)
	default: // duckdb
		return fmt.Sprintf("now() - to_seconds(%s)", ph)
	}
}

// BatchPredicate is one rule's failing predicate plus the arguments it
// binds, fed into BuildBatchExistsQuery/BuildBatchAggQuery. idx must be the
// same ParamIndex used to build Predicate, so placeholders already embedded
// in it line up with Args.
type BatchPredicate struct {
	RuleID    string
	Predicate string
	Args      []any
}

// BuildBatchExistsQuery combines every item's fail-fast check into a single
// multi-column statement - one round-trip for every EXISTS-eligible rule in
// the batch (§1, §4.4), instead of one round-trip per rule. Each item's
// result lands under its own alias; the returned map translates that alias
// back to the originating rule id, since rule ids aren't guaranteed to be
// valid SQL identifiers.
func BuildBatchExistsQuery(d Dialect, table string, items []BatchPredicate) (string, []any, map[string]string) {
	cols := make([]string, len(items))
	aliasToRule := make(map[string]string, len(items))
	var args []any
	for i, it := range items {
		alias := fmt.Sprintf("r%d", i)
		aliasToRule[alias] = it.RuleID
		cols[i] = fmt.Sprintf("EXISTS(SELECT 1 FROM %s WHERE %s) AS %s", table, it.Predicate, alias)
		args = append(args, it.Args...)
	}
	return "SELECT " + strings.Join(cols, ", "), args, aliasToRule
}

// BuildBatchAggQuery combines every item's exact fail count into a single
// multi-column aggregate over one shared FROM clause, plus a "total" column
// counting every row in table - one round-trip for every tally-required rule
// in the batch, per the same §4.4 requirement BuildBatchExistsQuery serves
// for the fail-fast phase. CASE/SUM is used instead of COUNT(*) FILTER, which
// go-mssqldb's target doesn't support, so the same statement shape works
// across duckdb/postgres/mssql.
func BuildBatchAggQuery(d Dialect, table string, items []BatchPredicate) (string, []any, map[string]string) {
	cols := make([]string, len(items))
	aliasToRule := make(map[string]string, len(items))
	var args []any
	for i, it := range items {
		alias := fmt.Sprintf("r%d", i)
		aliasToRule[alias] = it.RuleID
		cols[i] = fmt.Sprintf("SUM(CASE WHEN %s THEN 1 ELSE 0 END) AS %s", it.Predicate, alias)
		args = append(args, it.Args...)
	}
	query := fmt.Sprintf("SELECT COUNT(*) AS total, %s FROM %s", strings.Join(cols, ", "), table)
	return query, args, aliasToRule
}

// BuildTotalCountQuery counts every row in table, used by min_rows/max_rows.
func BuildTotalCountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) AS total FROM %s", table)
}

// BuildUniqueCountQuery counts duplicate occurrences (rows minus distinct
// combinations) for the unique rule, per the "duplicate occurrences"
// semantics decided in DESIGN.md.
func BuildUniqueCountQuery(d Dialect, table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	cols := strings.Join(quoted, ", ")
	return fmt.Sprintf(
		"SELECT COALESCE(SUM(cnt) - COUNT(*), 0) AS fail_count FROM (SELECT COUNT(*) AS cnt FROM %s WHERE %s GROUP BY %s HAVING COUNT(*) > 1) dupes",
		table, notAllNull(d, columns), cols,
	)
}

func notAllNull(d Dialect, columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s IS NOT NULL", d.QuoteIdent(c))
	}
	return strings.Join(parts, " OR ")
}
