package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/anvara/variant/types"
)

const (
	// subjectIDKey is the reserved KV key holding the subject identity.
	subjectIDKey = "subject_id"

	// assignmentPrefix namespaces assignment keys within the bucket.
	assignmentPrefix = "assignment."
)

// NATSKV implements assignment storage backed by a NATS JetStream KeyValue
// bucket.
//
// Each assignment lives under "assignment.<experimentID>" and the subject
// identity under "subject_id", so one bucket holds one subject's state.
// Experiment IDs must be valid KV key fragments (alphanumerics, dash,
// underscore, dot).
//
// Concurrent writers from different processes race last-write-wins, matching
// the engine's documented cross-process semantics.
type NATSKV struct {
	kv jetstream.KeyValue
}

var _ types.AssignmentStorage = (*NATSKV)(nil)

// NewNATSKV creates a store on top of an existing KV bucket.
//
// Parameters:
//   - kv: JetStream KeyValue bucket (see EnsureBucket)
//
// Returns:
//   - *NATSKV: Initialized store
func NewNATSKV(kv jetstream.KeyValue) *NATSKV {
	return &NATSKV{kv: kv}
}

// EnsureBucket creates or opens the KV bucket for a store, retrying with
// exponential backoff to absorb races between concurrent bucket creators.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//
// Returns:
//   - jetstream.KeyValue: The bucket instance
//   - error: Creation failure after retries
//
// Example:
//
//	kv, err := store.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "ab-assignments"})
//	if err != nil { /* handle */ }
//	st := store.NewNATSKV(kv)
func EnsureBucket(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	const maxRetries = 3

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded, no overflow risk
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

// Load returns every persisted assignment in the bucket.
func (s *NATSKV) Load(ctx context.Context) (map[string]types.Assignment, error) {
	result := make(map[string]types.Assignment)

	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment keys: %w", err)
	}

	for _, key := range keys {
		experimentID, ok := strings.CutPrefix(key, assignmentPrefix)
		if !ok {
			continue
		}

		entry, err := s.kv.Get(ctx, key)
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			// Deleted between Keys and Get; skip.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load assignment %s: %w", experimentID, err)
		}

		var a types.Assignment
		if err := json.Unmarshal(entry.Value(), &a); err != nil {
			return nil, fmt.Errorf("failed to decode assignment %s: %w", experimentID, err)
		}

		result[experimentID] = a
	}

	return result, nil
}

// Save persists one assignment.
func (s *NATSKV) Save(ctx context.Context, experimentID string, a types.Assignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode assignment %s: %w", experimentID, err)
	}

	if _, err := s.kv.Put(ctx, assignmentPrefix+experimentID, data); err != nil {
		return fmt.Errorf("failed to save assignment %s: %w", experimentID, err)
	}

	return nil
}

// Delete removes one assignment. Deleting an absent key is not an error.
func (s *NATSKV) Delete(ctx context.Context, experimentID string) error {
	err := s.kv.Delete(ctx, assignmentPrefix+experimentID)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete assignment %s: %w", experimentID, err)
	}

	return nil
}

// Clear removes every assignment, keeping the subject identity.
func (s *NATSKV) Clear(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list assignment keys: %w", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, assignmentPrefix) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return fmt.Errorf("failed to clear assignment %s: %w", key, err)
		}
	}

	return nil
}

// SubjectID returns the persisted subject identity, or "".
func (s *NATSKV) SubjectID(ctx context.Context) (string, error) {
	entry, err := s.kv.Get(ctx, subjectIDKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load subject ID: %w", err)
	}

	return string(entry.Value()), nil
}

// SaveSubjectID persists the subject identity.
func (s *NATSKV) SaveSubjectID(ctx context.Context, id string) error {
	if _, err := s.kv.Put(ctx, subjectIDKey, []byte(id)); err != nil {
		return fmt.Errorf("failed to save subject ID: %w", err)
	}

	return nil
}
