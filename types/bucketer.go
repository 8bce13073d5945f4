package types

// Bucketer maps a (subject, experiment) pair to a variant.
//
// Implementations must:
//   - Be deterministic: identical (experiment configuration, subjectID)
//     always yields the same variant ID, independent of call order or count
//   - Be pure: no I/O, no state, no side effects
//   - Never panic: degenerate configurations (single variant, all-zero
//     weights) fall back to a safe member of the experiment
//
// Bucketers do not consult persisted assignments; the engine layers
// resolve-once-and-cache semantics on top.
type Bucketer interface {
	// Bucket selects a variant for the subject.
	//
	// Parameters:
	//   - exp: Experiment configuration (assumed validated by the registry)
	//   - subjectID: Stable subject identity to bucket against
	//
	// Returns:
	//   - string: The selected variant ID (never empty for a valid experiment)
	Bucket(exp Experiment, subjectID string) string
}
