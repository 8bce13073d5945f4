package registry

import (
	"fmt"

	"github.com/anvara/variant/types"
)

// Static implements a read-only registry with a fixed list of experiments.
//
// The catalog is validated once at construction and never changes afterward,
// so lookups need no synchronization and bucketing stays deterministic for
// the registry's lifetime.
type Static struct {
	ordered []types.Experiment
	byID    map[string]types.Experiment
}

var _ types.Registry = (*Static)(nil)

// NewStatic creates a validated static registry.
//
// Every experiment must satisfy types.Experiment.Validate and IDs must be
// unique across the catalog.
//
// Parameters:
//   - experiments: Catalog entries in display order
//
// Returns:
//   - *Static: Initialized registry
//   - error: types.ErrInvalidExperiment or types.ErrDuplicateExperiment on
//     the first violated invariant
//
// Example:
//
//	reg, err := registry.NewStatic([]types.Experiment{
//	    {
//	        ID:             "cta-button-text",
//	        Variants:       []types.Variant{types.Weighted("A", 1), types.Weighted("B", 1)},
//	        DefaultVariant: "A",
//	    },
//	})
//	if err != nil { /* handle */ }
func NewStatic(experiments []types.Experiment) (*Static, error) {
	s := &Static{
		ordered: make([]types.Experiment, 0, len(experiments)),
		byID:    make(map[string]types.Experiment, len(experiments)),
	}

	for _, exp := range experiments {
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[exp.ID]; dup {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicateExperiment, exp.ID)
		}

		s.ordered = append(s.ordered, exp)
		s.byID[exp.ID] = exp
	}

	return s, nil
}

// Lookup returns the experiment with the given ID.
//
// Unknown IDs fail closed: the zero Experiment and false, never an error.
func (s *Static) Lookup(experimentID string) (types.Experiment, bool) {
	exp, ok := s.byID[experimentID]

	return exp, ok
}

// List returns the experiments in registration order.
//
// The returned slice is a copy; callers may not mutate catalog entries.
func (s *Static) List() []types.Experiment {
	result := make([]types.Experiment, len(s.ordered))
	copy(result, s.ordered)

	return result
}

// Len returns the number of experiments in the catalog.
func (s *Static) Len() int {
	return len(s.ordered)
}
