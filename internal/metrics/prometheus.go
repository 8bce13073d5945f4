package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anvara/variant/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Registration is lazy: collectors are created and registered on first use so
// that constructing the collector never fails, and duplicate registration in
// tests is tolerated via the registerer's error path.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments     *prometheus.CounterVec
	overrides       *prometheus.CounterVec
	clears          prometheus.Counter
	clearedEntries  prometheus.Counter
	lookups         *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	degradedMode    prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "variant" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "variant"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "assignments_total",
			Help:      "Total first-time bucketing decisions by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.overrides = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "overrides_total",
			Help:      "Total manual variant forces by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.clears = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "clears_total",
			Help:      "Total clear operations.",
		})

		p.clearedEntries = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "cleared_assignments_total",
			Help:      "Total assignments removed by clear operations.",
		})

		p.lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "lookups_total",
			Help:      "Total variant reads by experiment and resolution outcome.",
		}, []string{"experiment", "outcome"})

		p.storageFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Total storage backend failures by operation.",
		}, []string{"op"})

		p.degradedMode = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "storage",
			Name:      "degraded_mode",
			Help:      "1 when the engine runs memory-only after a storage failure, 0 otherwise.",
		})

		for _, c := range []prometheus.Collector{
			p.assignments, p.overrides, p.clears, p.clearedEntries,
			p.lookups, p.storageFailures, p.degradedMode,
		} {
			// Ignore AlreadyRegisteredError so shared registries across tests
			// do not panic; the first registration wins.
			_ = p.reg.Register(c)
		}
	})
}

// RecordAssignment increments the assignment counter.
func (p *PrometheusCollector) RecordAssignment(experimentID, variantID string) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(experimentID, variantID).Inc()
}

// RecordOverride increments the override counter.
func (p *PrometheusCollector) RecordOverride(experimentID, variantID string) {
	p.ensureRegistered()
	p.overrides.WithLabelValues(experimentID, variantID).Inc()
}

// RecordClear increments the clear counters.
func (p *PrometheusCollector) RecordClear(count int) {
	p.ensureRegistered()
	p.clears.Inc()
	p.clearedEntries.Add(float64(count))
}

// RecordLookup increments the lookup counter with the resolution outcome.
func (p *PrometheusCollector) RecordLookup(experimentID string, resolved bool) {
	p.ensureRegistered()
	outcome := "resolved"
	if !resolved {
		outcome = "unresolved"
	}
	p.lookups.WithLabelValues(experimentID, outcome).Inc()
}

// RecordStorageFailure increments the storage failure counter.
func (p *PrometheusCollector) RecordStorageFailure(op string) {
	p.ensureRegistered()
	p.storageFailures.WithLabelValues(op).Inc()
}

// SetDegradedMode sets the degraded mode gauge.
func (p *PrometheusCollector) SetDegradedMode(degraded bool) {
	p.ensureRegistered()
	if degraded {
		p.degradedMode.Set(1)
	} else {
		p.degradedMode.Set(0)
	}
}
