package variant

// VariantStatus describes one variant inside a debug report.
type VariantStatus struct {
	// ID is the variant identifier.
	ID string `json:"id" yaml:"id"`
	// Percentage is the configured traffic share in [0,100], one decimal.
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// ExperimentStatus describes one experiment and the subject's standing in it.
type ExperimentStatus struct {
	// ID is the experiment identifier.
	ID string `json:"id" yaml:"id"`
	// DefaultVariant is the experiment's fallback variant.
	DefaultVariant string `json:"defaultVariant" yaml:"defaultVariant"`
	// Variants lists the experiment's variants with their configured shares.
	Variants []VariantStatus `json:"variants" yaml:"variants"`
	// Assignment is the subject's resolved assignment, nil when unresolved.
	Assignment *Assignment `json:"assignment,omitempty" yaml:"assignment,omitempty"`
}

// DebugReport is a read-only snapshot of the engine for debug tooling.
type DebugReport struct {
	// SubjectID is the identity assignments are bucketed against.
	SubjectID string `json:"subjectId" yaml:"subjectId"`
	// Degraded reports memory-only operation after a storage failure.
	Degraded bool `json:"degraded" yaml:"degraded"`
	// Experiments lists every registered experiment in registration order.
	Experiments []ExperimentStatus `json:"experiments" yaml:"experiments"`
}

// Report assembles a debug snapshot: the subject identity, storage health,
// and per-experiment configured shares plus the subject's current
// assignments. Reporting is side-effect free; unresolved experiments stay
// unresolved.
func (e *Engine) Report() DebugReport {
	experiments := e.registry.List()

	report := DebugReport{
		SubjectID:   e.subjectID,
		Degraded:    e.degraded.Load(),
		Experiments: make([]ExperimentStatus, 0, len(experiments)),
	}

	for _, exp := range experiments {
		status := ExperimentStatus{
			ID:             exp.ID,
			DefaultVariant: exp.DefaultVariant,
			Variants:       make([]VariantStatus, 0, len(exp.Variants)),
		}

		for _, v := range exp.Variants {
			status.Variants = append(status.Variants, VariantStatus{
				ID:         v.ID,
				Percentage: e.GetVariantPercentage(exp.ID, v.ID),
			})
		}

		if a, ok := e.cache.Load(exp.ID); ok {
			assignment := a
			status.Assignment = &assignment
		}

		report.Experiments = append(report.Experiments, status)
	}

	return report
}
