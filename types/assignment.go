package types

import "time"

// Assignment is the persisted record of which variant a subject received
// for one experiment.
//
// Forced (override) assignments are identical in shape to bucketed ones and
// behave indistinguishably to later reads until cleared. The VariantID must
// have belonged to the experiment at assignment time; if the experiment is
// reconfigured later the stale reference is still returned unchanged, never
// treated as an error.
type Assignment struct {
	// VariantID is the variant the subject was assigned.
	VariantID string `json:"variantId"`

	// AssignedAt is the assignment time in epoch milliseconds.
	AssignedAt int64 `json:"assignedAt"`
}

// NewAssignment creates an assignment stamped with the given time.
func NewAssignment(variantID string, at time.Time) Assignment {
	return Assignment{VariantID: variantID, AssignedAt: at.UnixMilli()}
}

// AssignedTime returns the assignment timestamp as a time.Time.
func (a Assignment) AssignedTime() time.Time {
	return time.UnixMilli(a.AssignedAt)
}

// Resolution is a two-phase read of an experiment's variant.
//
// Before a subject has been bucketed, consumers receive the experiment's
// default variant with Resolved=false so first paint and steady state never
// disagree. Once an assignment exists, Resolved is true and VariantID is the
// persisted value.
type Resolution struct {
	// VariantID is the variant to render.
	VariantID string `json:"variantId"`

	// Resolved reports whether VariantID comes from a persisted assignment
	// rather than the pre-resolution default.
	Resolved bool `json:"resolved"`
}
