package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called from multiple goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	AssignmentMetrics
	StorageMetrics
}

// AssignmentMetrics defines metrics for assignment lifecycle operations.
type AssignmentMetrics interface {
	// RecordAssignment records a first-time bucketing decision.
	RecordAssignment(experimentID, variantID string)

	// RecordOverride records a manual variant force.
	RecordOverride(experimentID, variantID string)

	// RecordClear records assignment removal.
	//
	// Parameters:
	//   - count: Number of assignments removed
	RecordClear(count int)

	// RecordLookup records a variant read.
	//
	// Parameters:
	//   - experimentID: Experiment that was read
	//   - resolved: true if served from an existing assignment, false if the
	//     read triggered bucketing or fell back to a default
	RecordLookup(experimentID string, resolved bool)
}

// StorageMetrics defines metrics for the durable storage backend.
type StorageMetrics interface {
	// RecordStorageFailure records a failed storage operation.
	//
	// Parameters:
	//   - op: Operation type ("load", "save", "delete", "clear", "subject_id")
	RecordStorageFailure(op string)

	// SetDegradedMode sets whether the engine is running memory-only after a
	// storage failure.
	SetDegradedMode(degraded bool)
}
