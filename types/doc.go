// Package types contains the core types and interfaces shared across the
// variant library.
//
// The root variant package re-exports these definitions via type aliases so
// that subpackages (registry, bucket, store, internal/...) can depend on them
// without importing the root package, avoiding import cycles.
package types
