package store

import (
	"context"
	"sync"

	"github.com/anvara/variant/types"
)

// Memory implements assignment storage backed by a process-lifetime map.
//
// Nothing survives a restart. The engine uses a Memory store internally when
// a durable backend fails, and tests use it to run headless.
type Memory struct {
	mu          sync.RWMutex
	assignments map[string]types.Assignment
	subjectID   string
}

var _ types.AssignmentStorage = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		assignments: make(map[string]types.Assignment),
	}
}

// Load returns a copy of the assignment map.
func (m *Memory) Load(_ context.Context) (map[string]types.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]types.Assignment, len(m.assignments))
	for id, a := range m.assignments {
		result[id] = a
	}

	return result, nil
}

// Save stores one assignment.
func (m *Memory) Save(_ context.Context, experimentID string, a types.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignments[experimentID] = a

	return nil
}

// Delete removes one assignment.
func (m *Memory) Delete(_ context.Context, experimentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.assignments, experimentID)

	return nil
}

// Clear removes every assignment, keeping the subject identity.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignments = make(map[string]types.Assignment)

	return nil
}

// SubjectID returns the stored subject identity, or "".
func (m *Memory) SubjectID(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.subjectID, nil
}

// SaveSubjectID stores the subject identity.
func (m *Memory) SaveSubjectID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subjectID = id

	return nil
}
