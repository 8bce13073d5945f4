package types

// Variant is one treatment arm of an experiment.
//
// Weight is the relative share of traffic the variant should receive.
// A nil weight means the experiment is unweighted and traffic is split
// equally across its variants; per-experiment validation requires weights
// to be given for either all variants or none.
type Variant struct {
	// ID uniquely identifies the variant within its experiment.
	ID string `json:"id" yaml:"id"`

	// Weight is the relative traffic share (nil = unweighted).
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Weighted creates a variant with an explicit traffic weight.
func Weighted(id string, weight float64) Variant {
	return Variant{ID: id, Weight: &weight}
}

// Unweighted creates a variant without a weight, splitting traffic equally
// with the experiment's other unweighted variants.
func Unweighted(id string) Variant {
	return Variant{ID: id}
}

// Experiment is a named test with one or more variants.
//
// Experiments are defined once at catalog load and are immutable afterward.
// Bucketing walks Variants in declaration order, so the order is significant
// and must be stable across process restarts.
type Experiment struct {
	// ID uniquely identifies the experiment within a registry.
	ID string `json:"id" yaml:"id"`

	// Variants is the ordered list of treatment arms.
	Variants []Variant `json:"variants" yaml:"variants"`

	// DefaultVariant is the variant rendered before a subject is resolved
	// and the fallback for degenerate configurations. Must be a member of
	// Variants.
	DefaultVariant string `json:"defaultVariant" yaml:"defaultVariant"`
}

// HasVariant reports whether the experiment contains a variant with the
// given ID.
func (e Experiment) HasVariant(id string) bool {
	for _, v := range e.Variants {
		if v.ID == id {
			return true
		}
	}

	return false
}

// VariantIDs returns the variant IDs in declaration order.
func (e Experiment) VariantIDs() []string {
	ids := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		ids[i] = v.ID
	}

	return ids
}

// Unweighted reports whether no variant carries an explicit weight.
//
// Unweighted experiments split traffic equally (1/N per variant).
func (e Experiment) Unweighted() bool {
	for _, v := range e.Variants {
		if v.Weight != nil {
			return false
		}
	}

	return true
}

// TotalWeight returns the sum of the explicit variant weights.
//
// Returns 0 for unweighted experiments; callers must check Unweighted()
// before interpreting the result.
func (e Experiment) TotalWeight() float64 {
	total := 0.0
	for _, v := range e.Variants {
		if v.Weight != nil {
			total += *v.Weight
		}
	}

	return total
}

// Validate checks the experiment invariants:
//   - ID is non-empty
//   - at least one variant, with unique non-empty IDs
//   - DefaultVariant is a member of Variants
//   - weights are given for all variants or none, are non-negative,
//     and at least one is positive when given
//
// Returns:
//   - error: ErrInvalidExperiment wrapped with the violated invariant, nil if valid
func (e Experiment) Validate() error {
	if e.ID == "" {
		return invalidExperiment(e.ID, "experiment ID must not be empty")
	}
	if len(e.Variants) == 0 {
		return invalidExperiment(e.ID, "experiment must define at least one variant")
	}

	seen := make(map[string]struct{}, len(e.Variants))
	weighted := 0
	positive := false

	for _, v := range e.Variants {
		if v.ID == "" {
			return invalidExperiment(e.ID, "variant ID must not be empty")
		}
		if _, dup := seen[v.ID]; dup {
			return invalidExperiment(e.ID, "duplicate variant ID "+v.ID)
		}
		seen[v.ID] = struct{}{}

		if v.Weight == nil {
			continue
		}
		weighted++
		if *v.Weight < 0 {
			return invalidExperiment(e.ID, "variant "+v.ID+" has negative weight")
		}
		if *v.Weight > 0 {
			positive = true
		}
	}

	if weighted > 0 && weighted != len(e.Variants) {
		return invalidExperiment(e.ID, "weights must be given for all variants or none")
	}
	if weighted > 0 && !positive {
		return invalidExperiment(e.ID, "at least one variant weight must be positive")
	}

	if _, ok := seen[e.DefaultVariant]; !ok {
		return invalidExperiment(e.ID, "default variant "+e.DefaultVariant+" is not a member of the experiment")
	}

	return nil
}
