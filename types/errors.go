package types

import "errors"

// Sentinel errors for the variant library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). Components wrap external errors with context using
// fmt.Errorf("...: %w", err).

// Registry and experiment configuration errors.
var (
	// ErrInvalidExperiment is returned when an experiment violates a catalog
	// invariant (empty variants, default not a member, bad weights).
	ErrInvalidExperiment = errors.New("invalid experiment configuration")

	// ErrDuplicateExperiment is returned when a registry is built with two
	// experiments sharing an ID.
	ErrDuplicateExperiment = errors.New("duplicate experiment ID")
)

// Engine errors - returned by command operations. Read operations never
// return errors; they degrade to safe defaults instead.
var (
	// ErrUnknownExperiment is returned when forcing a variant for an
	// experiment the registry does not contain.
	ErrUnknownExperiment = errors.New("unknown experiment")

	// ErrUnknownVariant is returned when forcing a variant that is not a
	// member of the experiment.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrInvalidOverride is returned when an override query pair cannot be
	// parsed.
	ErrInvalidOverride = errors.New("invalid override")
)

// invalidExperiment wraps ErrInvalidExperiment with the experiment ID and
// the violated invariant.
func invalidExperiment(id, reason string) error {
	return &invalidExperimentError{id: id, reason: reason}
}

type invalidExperimentError struct {
	id     string
	reason string
}

func (e *invalidExperimentError) Error() string {
	if e.id == "" {
		return "invalid experiment configuration: " + e.reason
	}

	return "invalid experiment configuration " + e.id + ": " + e.reason
}

func (e *invalidExperimentError) Unwrap() error {
	return ErrInvalidExperiment
}
