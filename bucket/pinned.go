package bucket

import "github.com/anvara/variant/types"

// Pinned implements a bucketer that always selects the default variant.
type Pinned struct{}

var _ types.Bucketer = (*Pinned)(nil)

// NewPinned creates a bucketer that pins every subject to the experiment's
// default variant.
//
// Useful as a kill switch (ship the engine, keep everyone on control) and
// in QA environments where rendering must be predictable.
//
// Returns:
//   - *Pinned: Initialized pinned bucketer
func NewPinned() *Pinned {
	return &Pinned{}
}

// Bucket returns the experiment's default variant.
func (p *Pinned) Bucket(exp types.Experiment, _ string) string {
	return exp.DefaultVariant
}
