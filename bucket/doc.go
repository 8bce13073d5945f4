// Package bucket provides built-in bucketer implementations.
//
// Bucketers deterministically map a (subject, experiment) pair to a variant.
// The package includes two built-in bucketers:
//
//   - Hashed: xxh3-based weighted bucketing (the production choice)
//   - Pinned: always returns the experiment's default variant
//
// # Bucketer Selection Guide
//
// Hashed:
//   - Use for real traffic splitting
//   - Honors variant weights (equal split when unweighted)
//   - Same subject always lands in the same variant for a fixed catalog
//   - Configuration: hash seed, logger
//
// Pinned:
//   - Use as a kill switch or for QA environments where every subject must
//     see the default experience
//
// Custom bucketers can be implemented by satisfying the types.Bucketer
// interface.
package bucket
