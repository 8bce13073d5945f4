// Package hash computes the stable bucketing point for a (subject,
// experiment) pair.
package hash

import "github.com/zeebo/xxh3"

// Point maps a (subjectID, experimentID) pair to a value in [0,1).
//
// The subject ID is hashed first and the result is folded into the
// experiment hash as its seed. This avoids building an intermediate
// concatenated string while keeping the combined hash stable: the same
// inputs always produce the same point, and the same subject lands at
// independent points across experiments.
//
// Parameters:
//   - subjectID: Stable subject identity
//   - experimentID: Experiment being bucketed
//   - seed: Optional hash seed (0 for the default)
//
// Returns:
//   - float64: Deterministic value in [0,1)
func Point(subjectID, experimentID string, seed uint64) float64 {
	var h uint64
	if seed != 0 {
		h = xxh3.HashStringSeed(subjectID, seed)
	} else {
		h = xxh3.HashString(subjectID)
	}

	h = xxh3.HashStringSeed(experimentID, h)

	// Use the top 53 bits so the quotient is exactly representable in a
	// float64 mantissa; the result stays strictly below 1.
	return float64(h>>11) / float64(1<<53)
}
