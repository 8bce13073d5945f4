package variant

import "time"

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
	bucketer Bucketer
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	clock    func() time.Time
}

// WithBucketer sets a custom bucketer.
//
// Parameters:
//   - b: Bucketer implementation (default: bucket.NewHashed with the
//     configured hash seed)
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	eng, err := variant.NewEngine(&cfg, reg, st, variant.WithBucketer(bucket.NewPinned()))
func WithBucketer(b Bucketer) Option {
	return func(o *engineOptions) {
		o.bucketer = b
	}
}

// WithHooks sets assignment lifecycle hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	hooks := &variant.Hooks{
//	    OnAssigned: func(experimentID, variantID string) {
//	        analytics.Track("exposure", experimentID, variantID)
//	    },
//	}
//	eng, err := variant.NewEngine(&cfg, reg, st, variant.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEngine
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewEngine
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithClock sets the time source used to stamp assignments. Intended for
// tests that need deterministic assignedAt values.
//
// Parameters:
//   - clock: Time source (default: time.Now)
//
// Returns:
//   - Option: Functional option for NewEngine
func WithClock(clock func() time.Time) Option {
	return func(o *engineOptions) {
		o.clock = clock
	}
}
