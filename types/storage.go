package types

import "context"

// AssignmentStorage persists one subject's assignments as a namespaced map
// of experiment ID to Assignment, plus the subject's durable identity.
//
// Storage is an implementation detail behind the engine: the engine loads
// the full map once at construction, serves reads from its session cache,
// and writes through best-effort. A failing backend therefore degrades the
// engine to memory-only operation instead of surfacing errors to consumers.
//
// Implementations must be safe for concurrent use. Cross-process races on
// first write are resolved last-write-wins; no coordination is provided.
type AssignmentStorage interface {
	// Load returns the full persisted assignment map.
	//
	// Returns:
	//   - map[string]Assignment: experiment ID -> assignment (empty when none)
	//   - error: Backend failure
	Load(ctx context.Context) (map[string]Assignment, error)

	// Save persists one assignment, overwriting any existing record for the
	// experiment.
	Save(ctx context.Context, experimentID string, a Assignment) error

	// Delete removes the assignment for one experiment. Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, experimentID string) error

	// Clear removes every persisted assignment, leaving the subject identity
	// intact.
	Clear(ctx context.Context) error

	// SubjectID returns the persisted subject identity, or "" when none has
	// been stored yet.
	SubjectID(ctx context.Context) (string, error)

	// SaveSubjectID persists the subject identity.
	SaveSubjectID(ctx context.Context, id string) error
}
