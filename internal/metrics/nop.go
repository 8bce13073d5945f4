// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/anvara/variant/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* experimentID */, _ /* variantID */ string) {
	// No-op
}

// RecordOverride discards the override metric.
func (n *NopMetrics) RecordOverride(_ /* experimentID */, _ /* variantID */ string) {
	// No-op
}

// RecordClear discards the clear metric.
func (n *NopMetrics) RecordClear(_ /* count */ int) {
	// No-op
}

// RecordLookup discards the lookup metric.
func (n *NopMetrics) RecordLookup(_ /* experimentID */ string, _ /* resolved */ bool) {
	// No-op
}

// RecordStorageFailure discards the storage failure metric.
func (n *NopMetrics) RecordStorageFailure(_ /* op */ string) {
	// No-op
}

// SetDegradedMode discards the degraded mode metric.
func (n *NopMetrics) SetDegradedMode(_ /* degraded */ bool) {
	// No-op
}
