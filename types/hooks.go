package types

// Hooks are optional callbacks fired on assignment lifecycle events.
//
// Hooks are the seam for exposure tracking: transporting assignment events
// to an analytics sink is the consumer's concern, the engine only reports
// that an event happened. Callbacks run synchronously on the calling
// goroutine and must be fast and non-blocking; nil callbacks are skipped.
type Hooks struct {
	// OnAssigned fires when a subject is bucketed into a variant for the
	// first time (not on cached reads).
	OnAssigned func(experimentID, variantID string)

	// OnForced fires when an assignment is manually overridden.
	OnForced func(experimentID, variantID string)

	// OnCleared fires when assignments are removed, with the affected
	// experiment IDs.
	OnCleared func(experimentIDs []string)
}

// Assigned invokes OnAssigned if set.
func (h *Hooks) Assigned(experimentID, variantID string) {
	if h != nil && h.OnAssigned != nil {
		h.OnAssigned(experimentID, variantID)
	}
}

// Forced invokes OnForced if set.
func (h *Hooks) Forced(experimentID, variantID string) {
	if h != nil && h.OnForced != nil {
		h.OnForced(experimentID, variantID)
	}
}

// Cleared invokes OnCleared if set.
func (h *Hooks) Cleared(experimentIDs []string) {
	if h != nil && h.OnCleared != nil {
		h.OnCleared(experimentIDs)
	}
}
