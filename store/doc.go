// Package store provides built-in assignment storage backends.
//
// Storage persists one subject's experiment assignments plus the subject's
// durable identity. The package includes:
//
//   - Memory: process-lifetime map, the degraded-mode and testing backend
//   - File: single JSON document on disk with atomic replace-on-write
//   - NATSKV: NATS JetStream KeyValue bucket, for assignments shared across
//     processes
//
// All backends are safe for concurrent use. Custom backends can be
// implemented by satisfying the types.AssignmentStorage interface.
package store
