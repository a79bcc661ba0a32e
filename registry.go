package kontra

import "sync"

// ParamFactory constructs an empty RuleParams value for a variant, used by
// boundary adapters that decode rules from an external representation (e.g. an
// embedder's own YAML layer) before handing them to NewRule. The engine itself
// never needs this: callers construct typed RuleParams directly.
type ParamFactory func() RuleParams

// Registry is the closed table of rule variants. Populated once at
// construction and never mutated afterward, following the teacher's
// schema-registry pattern: lookup by name, no global mutable state beyond this
// single table (§5).
type Registry struct {
	mu        sync.RWMutex
	factories map[RuleVariant]ParamFactory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[RuleVariant]ParamFactory)}
}

// Register adds a variant's factory. Returns an error if the variant is
// already registered.
func (r *Registry) Register(variant RuleVariant, f ParamFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[variant]; exists {
		return NewConfigError(ErrCodeInvalidParam, "rule variant already registered: "+string(variant))
	}
	r.factories[variant] = f
	return nil
}

// Lookup returns the factory for a variant, if registered.
func (r *Registry) Lookup(variant RuleVariant) (ParamFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[variant]
	return f, ok
}

// Variants returns every registered variant name.
func (r *Registry) Variants() []RuleVariant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RuleVariant, 0, len(r.factories))
	for v := range r.factories {
		out = append(out, v)
	}
	return out
}

// DefaultRegistry returns a Registry pre-populated with the 18 built-in
// variants (§4.1). This is the closed taxonomy: new variants are not added by
// callers at runtime, only by building a new registry.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	entries := map[RuleVariant]ParamFactory{
		RuleNotNull:            func() RuleParams { return &NotNullParams{} },
		RuleUnique:             func() RuleParams { return &UniqueParams{} },
		RuleAllowedValues:      func() RuleParams { return &AllowedValuesParams{} },
		RuleDisallowedValues:   func() RuleParams { return &DisallowedValuesParams{} },
		RuleRange:              func() RuleParams { return &RangeParams{} },
		RuleLength:             func() RuleParams { return &LengthParams{} },
		RuleRegex:              func() RuleParams { return &RegexParams{} },
		RuleContains:           func() RuleParams { return &ContainsParams{} },
		RuleStartsWith:         func() RuleParams { return &StartsWithParams{} },
		RuleEndsWith:           func() RuleParams { return &EndsWithParams{} },
		RuleDType:              func() RuleParams { return &DTypeParams{} },
		RuleCompare:            func() RuleParams { return &CompareParams{} },
		RuleConditionalNotNull: func() RuleParams { return &ConditionalNotNullParams{} },
		RuleConditionalRange:   func() RuleParams { return &ConditionalRangeParams{} },
		RuleMinRows:            func() RuleParams { return &MinRowsParams{} },
		RuleMaxRows:            func() RuleParams { return &MaxRowsParams{} },
		RuleFreshness:          func() RuleParams { return &FreshnessParams{} },
		RuleCustomSQLCheck:     func() RuleParams { return &CustomSQLCheckParams{} },
	}
	for variant, factory := range entries {
		_ = r.Register(variant, factory)
	}
	return r
}
