package types

// Registry is a read-only catalog of experiments.
//
// Implementations must fail closed: unknown IDs return ok=false, never an
// error or a panic, so display code stays robust against stale references.
// The catalog is immutable after construction; bucketing determinism depends
// on Lookup returning identical configurations across calls.
type Registry interface {
	// Lookup returns the experiment with the given ID.
	//
	// Parameters:
	//   - experimentID: Experiment to look up
	//
	// Returns:
	//   - Experiment: The experiment configuration (zero value when not found)
	//   - bool: true if the experiment exists
	Lookup(experimentID string) (Experiment, bool)

	// List returns all experiments in registration order.
	List() []Experiment
}
