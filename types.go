package variant

import "github.com/anvara/variant/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces via type aliases. Internal packages depend on the types
// subpackage directly, avoiding import cycles, while users get convenient
// variant.Experiment, variant.Logger, etc.
type (
	Experiment = types.Experiment
	Variant    = types.Variant
	Assignment = types.Assignment
	Resolution = types.Resolution
)

// Re-export variant constructors from the types subpackage.
var (
	Weighted   = types.Weighted
	Unweighted = types.Unweighted
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Registry          = types.Registry
	Bucketer          = types.Bucketer
	AssignmentStorage = types.AssignmentStorage
	Logger            = types.Logger
	Hooks             = types.Hooks
	MetricsCollector  = types.MetricsCollector
)
