package variant

import (
	"errors"

	"github.com/anvara/variant/types"
)

// Sentinel errors returned by the Engine constructor.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRegistryRequired is returned when the experiment registry is nil.
	ErrRegistryRequired = errors.New("experiment registry is required")

	// ErrStorageRequired is returned when the assignment storage is nil.
	ErrStorageRequired = errors.New("assignment storage is required")
)

// Domain errors re-exported from the types subpackage so callers can check
// them with errors.Is at the public boundary. The identities are shared.
var (
	ErrUnknownExperiment = types.ErrUnknownExperiment
	ErrUnknownVariant    = types.ErrUnknownVariant
	ErrInvalidOverride   = types.ErrInvalidOverride
)
