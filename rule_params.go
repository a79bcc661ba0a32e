package kontra

import (
	"fmt"
	"time"
)

// NotNullParams checks that a column carries no NULLs. Supports metadata
// preplan on every dialect (a null_count of 0 in footer/column stats proves
// the rule passes without reading data).
type NotNullParams struct {
	Column string
}

func (p *NotNullParams) Variant() RuleVariant       { return RuleNotNull }
func (p *NotNullParams) RuleScope() Scope           { return ScopeColumn }
func (p *NotNullParams) RequiredColumns() []string  { return []string{p.Column} }
func (p *NotNullParams) SupportsMetadata(Dialect) bool { return true }
func (p *NotNullParams) SupportsSQL(Dialect) bool      { return true }
func (p *NotNullParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *NotNullParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "not_null: column is required")
	}
	return nil
}

// UniqueParams checks that the combination of Columns carries no duplicate
// occurrences. A single column is the common case; multiple columns check
// composite uniqueness.
type UniqueParams struct {
	Columns []string
}

func (p *UniqueParams) Variant() RuleVariant      { return RuleUnique }
func (p *UniqueParams) RuleScope() Scope {
	if len(p.Columns) == 1 {
		return ScopeColumn
	}
	return ScopeCrossColumn
}
func (p *UniqueParams) RequiredColumns() []string     { return p.Columns }
func (p *UniqueParams) SupportsMetadata(Dialect) bool { return false } // distinctness isn't in footer stats
func (p *UniqueParams) SupportsSQL(Dialect) bool      { return true }
func (p *UniqueParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *UniqueParams) Validate() error {
	if len(p.Columns) == 0 {
		return NewConfigError(ErrCodeInvalidParam, "unique: at least one column is required")
	}
	return nil
}

// AllowedValuesParams checks that every non-NULL value in Column is a member
// of Values. Demoted to local execution above Config.Execution.MaxInListSize
// per §4.4.
type AllowedValuesParams struct {
	Column string
	Values []any
}

func (p *AllowedValuesParams) Variant() RuleVariant      { return RuleAllowedValues }
func (p *AllowedValuesParams) RuleScope() Scope          { return ScopeColumn }
func (p *AllowedValuesParams) RequiredColumns() []string { return []string{p.Column} }
func (p *AllowedValuesParams) SupportsMetadata(Dialect) bool { return false }
func (p *AllowedValuesParams) SupportsSQL(Dialect) bool      { return true }
func (p *AllowedValuesParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *AllowedValuesParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "allowed_values: column is required")
	}
	if len(p.Values) == 0 {
		return NewConfigError(ErrCodeInvalidParam, "allowed_values: at least one value is required")
	}
	return nil
}

// DisallowedValuesParams checks that no non-NULL value in Column is a member
// of Values. NULL passes (decided, DESIGN.md Open Questions).
type DisallowedValuesParams struct {
	Column string
	Values []any
}

func (p *DisallowedValuesParams) Variant() RuleVariant      { return RuleDisallowedValues }
func (p *DisallowedValuesParams) RuleScope() Scope          { return ScopeColumn }
func (p *DisallowedValuesParams) RequiredColumns() []string { return []string{p.Column} }
func (p *DisallowedValuesParams) SupportsMetadata(Dialect) bool { return false }
func (p *DisallowedValuesParams) SupportsSQL(Dialect) bool      { return true }
func (p *DisallowedValuesParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *DisallowedValuesParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "disallowed_values: column is required")
	}
	if len(p.Values) == 0 {
		return NewConfigError(ErrCodeInvalidParam, "disallowed_values: at least one value is required")
	}
	return nil
}

// RangeParams checks Min <= value <= Max for non-NULL values in Column. Either
// bound may be nil to leave it open-ended.
type RangeParams struct {
	Column        string
	Min           *float64
	Max           *float64
	ExclusiveMin  bool
	ExclusiveMax  bool
}

func (p *RangeParams) Variant() RuleVariant      { return RuleRange }
func (p *RangeParams) RuleScope() Scope          { return ScopeColumn }
func (p *RangeParams) RequiredColumns() []string { return []string{p.Column} }
func (p *RangeParams) SupportsMetadata(Dialect) bool { return true } // footer min/max can prove the rule
func (p *RangeParams) SupportsSQL(Dialect) bool      { return true }
func (p *RangeParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *RangeParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "range: column is required")
	}
	if p.Min == nil && p.Max == nil {
		return NewConfigError(ErrCodeInvalidParam, "range: at least one of min/max is required")
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return NewConfigError(ErrCodeInvalidParam, "range: min must be <= max")
	}
	return nil
}

// LengthParams checks that string values in Column have a length within
// [Min, Max].
type LengthParams struct {
	Column string
	Min    *int
	Max    *int
}

func (p *LengthParams) Variant() RuleVariant      { return RuleLength }
func (p *LengthParams) RuleScope() Scope          { return ScopeColumn }
func (p *LengthParams) RequiredColumns() []string { return []string{p.Column} }
func (p *LengthParams) SupportsMetadata(Dialect) bool { return false }
func (p *LengthParams) SupportsSQL(Dialect) bool      { return true }
func (p *LengthParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *LengthParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "length: column is required")
	}
	if p.Min == nil && p.Max == nil {
		return NewConfigError(ErrCodeInvalidParam, "length: at least one of min/max is required")
	}
	return nil
}

// RegexParams checks that string values in Column match Pattern (RE2 syntax,
// matching Go's and DuckDB's regex engines). The Postgres emitter passes the
// pattern to `~` unchanged; MSSQL has no emitter, so the rule runs locally.
type RegexParams struct {
	Column  string
	Pattern string
}

func (p *RegexParams) Variant() RuleVariant      { return RuleRegex }
func (p *RegexParams) RuleScope() Scope          { return ScopeColumn }
func (p *RegexParams) RequiredColumns() []string { return []string{p.Column} }
func (p *RegexParams) SupportsMetadata(Dialect) bool { return false }
func (p *RegexParams) SupportsSQL(d Dialect) bool {
	return d == DialectDuckDB || d == DialectPostgres
}
func (p *RegexParams) RuleSemantics() Semantics { return SemanticsStrict }
func (p *RegexParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "regex: column is required")
	}
	if p.Pattern == "" {
		return NewConfigError(ErrCodeInvalidParam, "regex: pattern is required")
	}
	return nil
}

// ContainsParams checks that string values in Column contain Substr.
type ContainsParams struct {
	Column string
	Substr string
}

func (p *ContainsParams) Variant() RuleVariant      { return RuleContains }
func (p *ContainsParams) RuleScope() Scope          { return ScopeColumn }
func (p *ContainsParams) RequiredColumns() []string { return []string{p.Column} }
func (p *ContainsParams) SupportsMetadata(Dialect) bool { return false }
func (p *ContainsParams) SupportsSQL(Dialect) bool      { return true }
func (p *ContainsParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *ContainsParams) Validate() error {
	if p.Column == "" || p.Substr == "" {
		return NewConfigError(ErrCodeInvalidParam, "contains: column and substr are required")
	}
	return nil
}

// StartsWithParams checks that string values in Column start with Prefix.
type StartsWithParams struct {
	Column string
	Prefix string
}

func (p *StartsWithParams) Variant() RuleVariant      { return RuleStartsWith }
func (p *StartsWithParams) RuleScope() Scope          { return ScopeColumn }
func (p *StartsWithParams) RequiredColumns() []string { return []string{p.Column} }
func (p *StartsWithParams) SupportsMetadata(Dialect) bool { return false }
func (p *StartsWithParams) SupportsSQL(Dialect) bool      { return true }
func (p *StartsWithParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *StartsWithParams) Validate() error {
	if p.Column == "" || p.Prefix == "" {
		return NewConfigError(ErrCodeInvalidParam, "starts_with: column and prefix are required")
	}
	return nil
}

// EndsWithParams checks that string values in Column end with Suffix.
type EndsWithParams struct {
	Column string
	Suffix string
}

func (p *EndsWithParams) Variant() RuleVariant      { return RuleEndsWith }
func (p *EndsWithParams) RuleScope() Scope          { return ScopeColumn }
func (p *EndsWithParams) RequiredColumns() []string { return []string{p.Column} }
func (p *EndsWithParams) SupportsMetadata(Dialect) bool { return false }
func (p *EndsWithParams) SupportsSQL(Dialect) bool      { return true }
func (p *EndsWithParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *EndsWithParams) Validate() error {
	if p.Column == "" || p.Suffix == "" {
		return NewConfigError(ErrCodeInvalidParam, "ends_with: column and suffix are required")
	}
	return nil
}

// DTypeParams checks that Column's declared or inferred type matches
// ExpectedType (a dialect-neutral name: "string", "int", "float", "bool",
// "timestamp").
type DTypeParams struct {
	Column       string
	ExpectedType string
}

func (p *DTypeParams) Variant() RuleVariant      { return RuleDType }
func (p *DTypeParams) RuleScope() Scope          { return ScopeColumn }
func (p *DTypeParams) RequiredColumns() []string { return []string{p.Column} }
func (p *DTypeParams) SupportsMetadata(Dialect) bool { return true } // schema/catalog gives the type directly
func (p *DTypeParams) SupportsSQL(Dialect) bool      { return false }
func (p *DTypeParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *DTypeParams) Validate() error {
	if p.Column == "" || p.ExpectedType == "" {
		return NewConfigError(ErrCodeInvalidParam, "dtype: column and expected_type are required")
	}
	return nil
}

// CompareParams checks ColumnA Op ColumnB for every row (cross-column).
type CompareParams struct {
	ColumnA string
	ColumnB string
	Op      CompareOp
}

func (p *CompareParams) Variant() RuleVariant { return RuleCompare }
func (p *CompareParams) RuleScope() Scope     { return ScopeCrossColumn }
func (p *CompareParams) RequiredColumns() []string {
	return []string{p.ColumnA, p.ColumnB}
}
func (p *CompareParams) SupportsMetadata(Dialect) bool { return false }
func (p *CompareParams) SupportsSQL(Dialect) bool      { return true }
func (p *CompareParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *CompareParams) Validate() error {
	if p.ColumnA == "" || p.ColumnB == "" {
		return NewConfigError(ErrCodeInvalidParam, "compare: column_a and column_b are required")
	}
	switch p.Op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
	default:
		return NewConfigError(ErrCodeInvalidParam, fmt.Sprintf("compare: unsupported op %q", p.Op))
	}
	return nil
}

// ConditionalNotNullParams checks that Column is non-NULL whenever When holds.
type ConditionalNotNullParams struct {
	Column string
	When   Predicate
}

func (p *ConditionalNotNullParams) Variant() RuleVariant { return RuleConditionalNotNull }
func (p *ConditionalNotNullParams) RuleScope() Scope {
	if len(p.When.Columns()) == 0 {
		return ScopeColumn
	}
	return ScopeCrossColumn
}
func (p *ConditionalNotNullParams) RequiredColumns() []string {
	cols := []string{p.Column}
	return append(cols, p.When.Columns()...)
}
func (p *ConditionalNotNullParams) SupportsMetadata(Dialect) bool { return false }
func (p *ConditionalNotNullParams) SupportsSQL(Dialect) bool      { return false }
func (p *ConditionalNotNullParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *ConditionalNotNullParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "conditional_not_null: column is required")
	}
	if p.When == nil {
		return NewConfigError(ErrCodeInvalidParam, "conditional_not_null: when is required")
	}
	return nil
}

// ConditionalRangeParams checks Min <= Column <= Max whenever When holds.
type ConditionalRangeParams struct {
	Column string
	Min    *float64
	Max    *float64
	When   Predicate
}

func (p *ConditionalRangeParams) Variant() RuleVariant { return RuleConditionalRange }
func (p *ConditionalRangeParams) RuleScope() Scope     { return ScopeCrossColumn }
func (p *ConditionalRangeParams) RequiredColumns() []string {
	cols := []string{p.Column}
	return append(cols, p.When.Columns()...)
}
func (p *ConditionalRangeParams) SupportsMetadata(Dialect) bool { return false }
func (p *ConditionalRangeParams) SupportsSQL(Dialect) bool      { return false }
func (p *ConditionalRangeParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *ConditionalRangeParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "conditional_range: column is required")
	}
	if p.When == nil {
		return NewConfigError(ErrCodeInvalidParam, "conditional_range: when is required")
	}
	if p.Min == nil && p.Max == nil {
		return NewConfigError(ErrCodeInvalidParam, "conditional_range: at least one of min/max is required")
	}
	return nil
}

// MinRowsParams checks that the dataset has at least Min rows.
type MinRowsParams struct {
	Min int64
}

func (p *MinRowsParams) Variant() RuleVariant          { return RuleMinRows }
func (p *MinRowsParams) RuleScope() Scope              { return ScopeDataset }
func (p *MinRowsParams) RequiredColumns() []string     { return nil }
func (p *MinRowsParams) SupportsMetadata(Dialect) bool { return true } // row-count hint proves this
func (p *MinRowsParams) SupportsSQL(Dialect) bool      { return true }
func (p *MinRowsParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *MinRowsParams) Validate() error {
	if p.Min < 0 {
		return NewConfigError(ErrCodeInvalidParam, "min_rows: min must be >= 0")
	}
	return nil
}

// MaxRowsParams checks that the dataset has at most Max rows.
type MaxRowsParams struct {
	Max int64
}

func (p *MaxRowsParams) Variant() RuleVariant          { return RuleMaxRows }
func (p *MaxRowsParams) RuleScope() Scope              { return ScopeDataset }
func (p *MaxRowsParams) RequiredColumns() []string     { return nil }
func (p *MaxRowsParams) SupportsMetadata(Dialect) bool { return true }
func (p *MaxRowsParams) SupportsSQL(Dialect) bool      { return true }
func (p *MaxRowsParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *MaxRowsParams) Validate() error {
	if p.Max < 0 {
		return NewConfigError(ErrCodeInvalidParam, "max_rows: max must be >= 0")
	}
	return nil
}

// FreshnessParams checks that the most recent value in Column is within MaxAge
// of the evaluation time. Naive timestamps are treated as UTC (decided,
// DESIGN.md Open Questions).
type FreshnessParams struct {
	Column string
	MaxAge time.Duration
}

func (p *FreshnessParams) Variant() RuleVariant      { return RuleFreshness }
func (p *FreshnessParams) RuleScope() Scope          { return ScopeColumn }
func (p *FreshnessParams) RequiredColumns() []string { return []string{p.Column} }
func (p *FreshnessParams) SupportsMetadata(Dialect) bool { return true } // footer max() proves freshness
func (p *FreshnessParams) SupportsSQL(Dialect) bool      { return true }
func (p *FreshnessParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *FreshnessParams) Validate() error {
	if p.Column == "" {
		return NewConfigError(ErrCodeInvalidParam, "freshness: column is required")
	}
	if p.MaxAge <= 0 {
		return NewConfigError(ErrCodeInvalidParam, "freshness: max_age must be > 0")
	}
	return nil
}

// CustomSQLCheckParams runs a user-supplied single SELECT statement; the
// number of rows it returns is the rule's fail count.
// Dataset-scoped since it may reference arbitrary columns; never eligible for
// metadata preplan or fallback execution (§4.4's "SQL-only" rule variant).
type CustomSQLCheckParams struct {
	SQL string
}

func (p *CustomSQLCheckParams) Variant() RuleVariant          { return RuleCustomSQLCheck }
func (p *CustomSQLCheckParams) RuleScope() Scope              { return ScopeDataset }
func (p *CustomSQLCheckParams) RequiredColumns() []string     { return nil }
func (p *CustomSQLCheckParams) SupportsMetadata(Dialect) bool { return false }
func (p *CustomSQLCheckParams) SupportsSQL(d Dialect) bool    { return d != DialectNone }
func (p *CustomSQLCheckParams) RuleSemantics() Semantics      { return SemanticsStrict }
func (p *CustomSQLCheckParams) Validate() error {
	if p.SQL == "" {
		return NewConfigError(ErrCodeInvalidParam, "custom_sql_check: sql is required")
	}
	return nil
}
