package bucket

import (
	"github.com/anvara/variant/internal/hash"
	"github.com/anvara/variant/internal/logging"
	"github.com/anvara/variant/types"
)

// Hashed implements deterministic weighted bucketing over a stable hash.
type Hashed struct {
	hashSeed uint64
	logger   types.Logger
}

var _ types.Bucketer = (*Hashed)(nil)

// HashedOption configures a Hashed bucketer.
type HashedOption func(*Hashed)

// NewHashed creates a new hash-based bucketer.
//
// The bucketer hashes (subjectID, experimentID) to a point in [0,1) and
// walks the experiment's variants in declaration order, accumulating each
// variant's normalized weight until the cumulative boundary exceeds the
// point. Identical inputs always select the same variant, independent of
// call order or count.
//
// Parameters:
//   - opts: Optional configuration (WithHashSeed, WithLogger)
//
// Returns:
//   - *Hashed: Initialized bucketer ready for use
//
// Example:
//
//	b := bucket.NewHashed(bucket.WithHashSeed(42))
//	variantID := b.Bucket(exp, subjectID)
func NewHashed(opts ...HashedOption) *Hashed {
	h := &Hashed{
		hashSeed: 0,
		logger:   logging.NewNop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// WithHashSeed sets a custom hash seed.
//
// Changing the seed reshuffles every subject across variants, so it must
// stay fixed for the lifetime of an experiment.
func WithHashSeed(seed uint64) HashedOption {
	return func(h *Hashed) {
		h.hashSeed = seed
	}
}

// WithLogger sets the logger used for degenerate-configuration diagnostics.
func WithLogger(logger types.Logger) HashedOption {
	return func(h *Hashed) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Bucket selects a variant for the subject.
//
// Edge cases, none of which panic:
//   - single-variant experiment: always that variant
//   - unweighted experiment: equal 1/N split
//   - all-zero weights: degenerate, falls back to DefaultVariant
//   - no variants at all: falls back to DefaultVariant (registry validation
//     normally prevents this)
//
// Parameters:
//   - exp: Experiment configuration
//   - subjectID: Stable subject identity
//
// Returns:
//   - string: Selected variant ID
func (h *Hashed) Bucket(exp types.Experiment, subjectID string) string {
	if len(exp.Variants) == 0 {
		return exp.DefaultVariant
	}
	if len(exp.Variants) == 1 {
		return exp.Variants[0].ID
	}

	point := hash.Point(subjectID, exp.ID, h.hashSeed)

	if exp.Unweighted() {
		// Equal split: index directly instead of accumulating 1/N shares,
		// avoiding float drift on the last boundary.
		idx := int(point * float64(len(exp.Variants)))
		if idx >= len(exp.Variants) {
			idx = len(exp.Variants) - 1
		}

		return exp.Variants[idx].ID
	}

	total := exp.TotalWeight()
	if total <= 0 {
		h.logger.Warn("experiment has all-zero weights, using default variant",
			"experiment", exp.ID,
			"default", exp.DefaultVariant,
		)

		return exp.DefaultVariant
	}

	cumulative := 0.0
	for _, v := range exp.Variants {
		if v.Weight != nil {
			cumulative += *v.Weight / total
		}
		if point < cumulative {
			return v.ID
		}
	}

	// point landed on the tail boundary; the last variant owns it.
	return exp.Variants[len(exp.Variants)-1].ID
}
