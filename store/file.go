package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/anvara/variant/types"
)

// fileDoc is the on-disk document shape: a single namespaced map plus the
// subject identity, mirroring what the engine persists per subject.
type fileDoc struct {
	SubjectID   string                      `json:"subjectId,omitempty"`
	Assignments map[string]types.Assignment `json:"assignments"`
}

// File implements assignment storage backed by a single JSON document.
//
// Writes replace the whole document atomically (write to a temp file in the
// same directory, then rename), so a crash mid-write never leaves a torn
// document behind. A missing file reads as an empty store.
type File struct {
	mu   sync.Mutex
	path string
}

var _ types.AssignmentStorage = (*File)(nil)

// NewFile creates a file-backed store at the given path.
//
// The file and its parent directory are created lazily on first write.
//
// Parameters:
//   - path: Document location, e.g. "~/.config/app/assignments.json"
//
// Returns:
//   - *File: Initialized store
func NewFile(path string) *File {
	return &File{path: path}
}

// Load returns the persisted assignment map.
func (f *File) Load(_ context.Context) (map[string]types.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}

	return doc.Assignments, nil
}

// Save persists one assignment.
func (f *File) Save(_ context.Context, experimentID string, a types.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.update(func(doc *fileDoc) {
		doc.Assignments[experimentID] = a
	})
}

// Delete removes one assignment.
func (f *File) Delete(_ context.Context, experimentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.update(func(doc *fileDoc) {
		delete(doc.Assignments, experimentID)
	})
}

// Clear removes every assignment, keeping the subject identity.
func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.update(func(doc *fileDoc) {
		doc.Assignments = make(map[string]types.Assignment)
	})
}

// SubjectID returns the persisted subject identity, or "".
func (f *File) SubjectID(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return "", err
	}

	return doc.SubjectID, nil
}

// SaveSubjectID persists the subject identity.
func (f *File) SaveSubjectID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.update(func(doc *fileDoc) {
		doc.SubjectID = id
	})
}

// read loads the document, treating a missing file as empty.
func (f *File) read() (fileDoc, error) {
	doc := fileDoc{Assignments: make(map[string]types.Assignment)}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read assignment store %s: %w", f.path, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse assignment store %s: %w", f.path, err)
	}
	if doc.Assignments == nil {
		doc.Assignments = make(map[string]types.Assignment)
	}

	return doc, nil
}

// update applies fn to the current document and writes it back atomically.
// Callers must hold f.mu.
func (f *File) update(fn func(*fileDoc)) error {
	doc, err := f.read()
	if err != nil {
		return err
	}

	fn(&doc)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode assignment store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create assignment store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".assignments-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp assignment store: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to write assignment store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to close assignment store: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace assignment store %s: %w", f.path, err)
	}

	return nil
}
