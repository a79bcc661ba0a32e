package kontra

import "fmt"

// Dialect identifies the SQL engine behind a dataset handle.
type Dialect string

const (
	DialectDuckDB   Dialect = "duckdb"
	DialectPostgres Dialect = "postgres"
	DialectMSSQL    Dialect = "mssql"
	DialectNone     Dialect = "none"
)

// Scope classifies how many columns a rule references.
type Scope string

const (
	ScopeColumn      Scope = "column"
	ScopeCrossColumn Scope = "cross_column"
	ScopeDataset     Scope = "dataset"
)

// Semantics classifies whether a rule's SQL emitter is exact or approximate.
type Semantics string

const (
	SemanticsStrict       Semantics = "strict"
	SemanticsApproximate  Semantics = "approximate"
)

// Severity is interpreted by consumers, never by the engine itself.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// RuleVariant is the closed tag identifying which built-in rule a Rule is.
type RuleVariant string

const (
	RuleNotNull             RuleVariant = "not_null"
	RuleUnique              RuleVariant = "unique"
	RuleAllowedValues       RuleVariant = "allowed_values"
	RuleDisallowedValues    RuleVariant = "disallowed_values"
	RuleRange               RuleVariant = "range"
	RuleLength              RuleVariant = "length"
	RuleRegex               RuleVariant = "regex"
	RuleContains            RuleVariant = "contains"
	RuleStartsWith          RuleVariant = "starts_with"
	RuleEndsWith            RuleVariant = "ends_with"
	RuleDType               RuleVariant = "dtype"
	RuleCompare             RuleVariant = "compare"
	RuleConditionalNotNull  RuleVariant = "conditional_not_null"
	RuleConditionalRange    RuleVariant = "conditional_range"
	RuleMinRows             RuleVariant = "min_rows"
	RuleMaxRows             RuleVariant = "max_rows"
	RuleFreshness           RuleVariant = "freshness"
	RuleCustomSQLCheck      RuleVariant = "custom_sql_check"
)

// RuleParams is implemented by every closed rule variant's typed parameter
// record. The planner and engine read capability through SupportsMetadata and
// SupportsSQL; the SQL builder and fallback executor switch on the concrete
// parameter type.
type RuleParams interface {
	// Variant returns the rule name this parameter record belongs to.
	Variant() RuleVariant
	// RuleScope reports whether the rule is column, cross-column, or dataset scoped.
	RuleScope() Scope
	// RequiredColumns lists the columns this rule reads. Empty for dataset rules.
	RequiredColumns() []string
	// SupportsMetadata reports preplan eligibility for the given dialect.
	SupportsMetadata(d Dialect) bool
	// SupportsSQL reports whether a SQL emitter exists for the given dialect.
	SupportsSQL(d Dialect) bool
	// RuleSemantics reports whether the rule's SQL path is exact or approximate.
	RuleSemantics() Semantics
	// Validate checks the parameter record for internal consistency.
	Validate() error
}

// Rule is an immutable declarative measurement. See spec §3.
type Rule struct {
	RuleID   string
	Name     RuleVariant
	Params   RuleParams
	Severity Severity
	Tally    bool
	Context  map[string]any

	idExplicit bool
}

// RuleOption configures optional Rule fields at construction time.
type RuleOption func(*Rule)

// WithID overrides rule-id derivation with an explicit identifier.
func WithID(id string) RuleOption {
	return func(r *Rule) {
		r.RuleID = id
		r.idExplicit = true
	}
}

// WithSeverity sets the rule's severity (default SeverityBlocking).
func WithSeverity(s Severity) RuleOption {
	return func(r *Rule) { r.Severity = s }
}

// WithTally sets whether an exact count is required (vs. fail-fast permitted).
func WithTally(tally bool) RuleOption {
	return func(r *Rule) { r.Tally = tally }
}

// WithContext attaches an opaque context map forwarded to consumers but never
// read by the engine.
func WithContext(ctx map[string]any) RuleOption {
	return func(r *Rule) { r.Context = ctx }
}

// NewRule constructs and validates a Rule. Parameter validation happens here,
// per §3's "validated at construction" invariant. Rule-id derivation (§4.1)
// happens after options are applied so WithID can override it.
func NewRule(name RuleVariant, params RuleParams, opts ...RuleOption) (*Rule, error) {
	if params == nil {
		return nil, NewConfigError(ErrCodeInvalidParam, fmt.Sprintf("rule %q: params must not be nil", name))
	}
	if params.Variant() != name {
		return nil, NewConfigError(ErrCodeInvalidParam,
			fmt.Sprintf("rule %q: params belong to variant %q", name, params.Variant()))
	}
	if err := params.Validate(); err != nil {
		return nil, NewConfigError(ErrCodeInvalidParam, fmt.Sprintf("rule %q: %s", name, err.Error()))
	}

	r := &Rule{
		Name:     name,
		Params:   params,
		Severity: SeverityBlocking,
		Tally:    false,
	}
	for _, opt := range opts {
		opt(r)
	}

	if !r.idExplicit {
		id, err := deriveRuleID(name, params)
		if err != nil {
			return nil, err
		}
		r.RuleID = id
	}

	return r, nil
}

// deriveRuleID implements §4.1's rule-id derivation rule: dataset rules get
// DATASET:{name}; single-column rules get COL:{column}:{name}; anything else
// must have supplied an explicit id, so NewRule returns an error for it here.
// Collisions between ids are checked later, by Contract.Compile.
func deriveRuleID(name RuleVariant, params RuleParams) (string, error) {
	switch params.RuleScope() {
	case ScopeDataset:
		return fmt.Sprintf("DATASET:%s", name), nil
	case ScopeColumn:
		cols := params.RequiredColumns()
		if len(cols) != 1 {
			return "", NewConfigError(ErrCodeInvalidParam,
				fmt.Sprintf("rule %q: column-scoped rule must expose exactly one column", name))
		}
		return fmt.Sprintf("COL:%s:%s", cols[0], name), nil
	default:
		return "", NewConfigError(ErrCodeDuplicateRuleID,
			fmt.Sprintf("rule %q: cross-column rules require an explicit id (WithID)", name)).
			WithHint("pass kontra.WithID(\"...\") when constructing this rule")
	}
}
