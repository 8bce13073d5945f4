package variant

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/anvara/variant/bucket"
	"github.com/anvara/variant/internal/logging"
	"github.com/anvara/variant/internal/metrics"
	"github.com/anvara/variant/types"
)

// Engine resolves experiment variants for one subject.
//
// The Engine is the main entry point of the variant library. It layers
// resolve-once-and-cache semantics over a deterministic bucketer:
//   - First read of an experiment buckets the subject, persists the
//     assignment, and caches it for the engine's lifetime
//   - Later reads return the cached assignment unchanged, even if the
//     registry's weights changed in the meantime (stickiness)
//   - Manual overrides rewrite the assignment; clears remove it, so the next
//     read re-buckets
//
// Error posture: read paths never fail. Unknown experiments return empty
// values and a warning log; a failing storage backend flips the engine to
// memory-only operation for its lifetime instead of surfacing errors.
// Command paths (ForceVariant, ApplyOverrideQuery) return sentinel errors
// for invalid input and otherwise share the same degradation behavior.
//
// Thread safety: all public methods are safe for concurrent use. Two call
// sites racing on the first read of an experiment observe a single bucketing
// decision; the session cache is the sole serialization mechanism.
type Engine struct {
	cfg      Config
	registry Registry
	storage  AssignmentStorage

	bucketer Bucketer
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	clock    func() time.Time

	subjectID string
	cache     *xsync.Map[string, types.Assignment]
	degraded  atomic.Bool
}

// NewEngine creates an Engine for one subject.
//
// Construction resolves the subject identity and loads the persisted
// assignment map into the session cache. An explicit Config.SubjectID wins;
// otherwise the identity is loaded from storage, generating and persisting a
// random UUID on first use. Storage failures during construction do not fail
// it: the engine starts memory-only and logs the degradation.
//
// Returns a concrete *Engine following the "accept interfaces, return
// structs" principle. Consumers can define their own narrow interfaces for
// testing.
//
// Parameters:
//   - cfg: Engine configuration (defaults applied in place)
//   - registry: Read-only experiment catalog
//   - storage: Durable per-subject assignment storage
//   - opts: Optional configuration (bucketer, hooks, metrics, logger, clock)
//
// Returns:
//   - *Engine: Initialized engine
//   - error: ErrInvalidConfig, ErrRegistryRequired, or ErrStorageRequired
//
// Example:
//
//	cfg := variant.DefaultConfig()
//	reg, _ := registry.NewStatic(catalog)
//	eng, err := variant.NewEngine(&cfg, reg, store.NewFile(path))
//	if err != nil { /* handle */ }
//	variantID := eng.GetVariant("cta-button-text")
func NewEngine(cfg *Config, registry Registry, storage AssignmentStorage, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if storage == nil {
		return nil, ErrStorageRequired
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Apply options
	options := &engineOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	// Provide safe defaults for optional dependencies to avoid nil checks
	// everywhere
	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	bucketerInstance := options.bucketer
	if bucketerInstance == nil {
		bucketerInstance = bucket.NewHashed(
			bucket.WithHashSeed(cfg.HashSeed),
			bucket.WithLogger(loggerInstance),
		)
	}

	clock := options.clock
	if clock == nil {
		clock = time.Now
	}

	e := &Engine{
		cfg:      *cfg,
		registry: registry,
		storage:  storage,
		bucketer: bucketerInstance,
		hooks:    options.hooks,
		metrics:  metricsCollector,
		logger:   loggerInstance,
		clock:    clock,
		cache:    xsync.NewMap[string, types.Assignment](),
	}

	e.resolveSubjectID()
	e.loadAssignments()

	return e, nil
}

// SubjectID returns the stable subject identity this engine buckets against.
func (e *Engine) SubjectID() string {
	return e.subjectID
}

// Degraded reports whether the engine runs memory-only after a storage
// failure. Assignments made while degraded last until the engine is
// discarded.
func (e *Engine) Degraded() bool {
	return e.degraded.Load()
}

// ListExperiments returns the registry catalog in registration order.
func (e *Engine) ListExperiments() []Experiment {
	return e.registry.List()
}

// GetVariant returns the subject's variant for an experiment, resolving and
// persisting it on first access.
//
// The stickiness invariant holds: once resolved, the same variant is
// returned on every call until the assignment is cleared or overridden,
// regardless of registry weight changes. Unknown experiments return ""
// without error.
//
// Parameters:
//   - experimentID: Experiment to resolve
//
// Returns:
//   - string: The assigned variant ID ("" for unknown experiments)
func (e *Engine) GetVariant(experimentID string) string {
	exp, ok := e.registry.Lookup(experimentID)
	if !ok {
		e.logger.Warn("variant requested for unknown experiment", "experiment", experimentID)
		e.metrics.RecordLookup(experimentID, false)

		return ""
	}

	if a, hit := e.cache.Load(experimentID); hit {
		e.metrics.RecordLookup(experimentID, true)

		return a.VariantID
	}

	candidate := types.NewAssignment(e.bucketer.Bucket(exp, e.subjectID), e.clock())

	// LoadOrStore is the resolve-once discipline: when two call sites race
	// on first access, exactly one candidate wins and both observe it.
	actual, loaded := e.cache.LoadOrStore(experimentID, candidate)
	if loaded {
		e.metrics.RecordLookup(experimentID, true)

		return actual.VariantID
	}

	e.persist("save", func(ctx context.Context) error {
		return e.storage.Save(ctx, experimentID, candidate)
	})

	e.logger.Debug("subject bucketed",
		"experiment", experimentID,
		"variant", candidate.VariantID,
		"subject", e.subjectID,
	)
	e.metrics.RecordAssignment(experimentID, candidate.VariantID)
	e.metrics.RecordLookup(experimentID, false)
	e.hooks.Assigned(experimentID, candidate.VariantID)

	return candidate.VariantID
}

// Lookup is the side-effect-free two-phase read.
//
// Unresolved experiments return the default variant with Resolved=false and
// are NOT bucketed; consumers render that default on first paint and call
// GetVariant (or Lookup again after someone else resolved) for steady state.
// Unknown experiments return the zero Resolution.
//
// Parameters:
//   - experimentID: Experiment to peek at
//
// Returns:
//   - Resolution: Variant to render plus whether it is a persisted assignment
func (e *Engine) Lookup(experimentID string) Resolution {
	exp, ok := e.registry.Lookup(experimentID)
	if !ok {
		return Resolution{}
	}

	if a, hit := e.cache.Load(experimentID); hit {
		return Resolution{VariantID: a.VariantID, Resolved: true}
	}

	return Resolution{VariantID: exp.DefaultVariant, Resolved: false}
}

// GetAllAssignments returns a snapshot of the subject's assignments keyed by
// experiment ID. The snapshot is a copy; mutating it does not affect the
// engine.
func (e *Engine) GetAllAssignments() map[string]Assignment {
	snapshot := make(map[string]Assignment)
	e.cache.Range(func(experimentID string, a types.Assignment) bool {
		snapshot[experimentID] = a

		return true
	})

	return snapshot
}

// ForceVariant overrides the subject's assignment for an experiment.
//
// The written assignment is identical in shape to a bucketed one, so later
// reads cannot distinguish it until it is cleared. Forcing an already
// assigned experiment simply rewrites the assignment.
//
// Parameters:
//   - experimentID: Experiment to override
//   - variantID: Variant to force; must belong to the experiment
//
// Returns:
//   - error: ErrUnknownExperiment or ErrUnknownVariant on invalid input;
//     nil otherwise (storage failures degrade silently)
func (e *Engine) ForceVariant(experimentID, variantID string) error {
	exp, ok := e.registry.Lookup(experimentID)
	if !ok {
		e.logger.Error("cannot force variant for unknown experiment", "experiment", experimentID)

		return fmt.Errorf("%w: %s", ErrUnknownExperiment, experimentID)
	}
	if !exp.HasVariant(variantID) {
		e.logger.Error("cannot force unknown variant",
			"experiment", experimentID,
			"variant", variantID,
		)

		return fmt.Errorf("%w: %s has no variant %s", ErrUnknownVariant, experimentID, variantID)
	}

	a := types.NewAssignment(variantID, e.clock())
	e.cache.Store(experimentID, a)

	e.persist("save", func(ctx context.Context) error {
		return e.storage.Save(ctx, experimentID, a)
	})

	e.logger.Info("variant forced", "experiment", experimentID, "variant", variantID)
	e.metrics.RecordOverride(experimentID, variantID)
	e.hooks.Forced(experimentID, variantID)

	return nil
}

// ClearAssignments removes every assignment, forced or natural. The next
// GetVariant call re-buckets against the current registry configuration.
func (e *Engine) ClearAssignments() {
	cleared := make([]string, 0)
	e.cache.Range(func(experimentID string, _ types.Assignment) bool {
		cleared = append(cleared, experimentID)
		e.cache.Delete(experimentID)

		return true
	})

	e.persist("clear", func(ctx context.Context) error {
		return e.storage.Clear(ctx)
	})

	e.logger.Info("assignments cleared", "count", len(cleared))
	e.metrics.RecordClear(len(cleared))
	if len(cleared) > 0 {
		e.hooks.Cleared(cleared)
	}
}

// ClearAssignment removes the assignment for one experiment. Clearing an
// unassigned experiment is a no-op.
//
// Parameters:
//   - experimentID: Experiment to clear
func (e *Engine) ClearAssignment(experimentID string) {
	_, existed := e.cache.LoadAndDelete(experimentID)

	e.persist("delete", func(ctx context.Context) error {
		return e.storage.Delete(ctx, experimentID)
	})

	if !existed {
		return
	}

	e.logger.Info("assignment cleared", "experiment", experimentID)
	e.metrics.RecordClear(1)
	e.hooks.Cleared([]string{experimentID})
}

// GetVariantPercentage reports the share of traffic a variant is configured
// to receive, for display only.
//
// The figure derives from static configured weights (equal split when
// unweighted), not from observed assignments: client-side exactly one
// subject's assignments are visible, so an observed distribution would be
// meaningless. Values are rounded to one decimal place. Unknown experiments
// or variants return 0; the method never mutates state.
//
// Parameters:
//   - experimentID: Experiment to inspect
//   - variantID: Variant whose share to report
//
// Returns:
//   - float64: Configured share in [0,100]
func (e *Engine) GetVariantPercentage(experimentID, variantID string) float64 {
	exp, ok := e.registry.Lookup(experimentID)
	if !ok || !exp.HasVariant(variantID) {
		return 0
	}

	if exp.Unweighted() {
		return roundShare(100 / float64(len(exp.Variants)))
	}

	total := exp.TotalWeight()
	if total <= 0 {
		// Degenerate all-zero weights: bucketing sends everyone to the
		// default variant.
		if variantID == exp.DefaultVariant {
			return 100
		}

		return 0
	}

	for _, v := range exp.Variants {
		if v.ID != variantID {
			continue
		}
		if v.Weight == nil {
			return 0
		}

		return roundShare(*v.Weight / total * 100)
	}

	return 0
}

// roundShare rounds a percentage to one decimal place for display.
func roundShare(pct float64) float64 {
	return math.Round(pct*10) / 10
}

// resolveSubjectID establishes the stable subject identity: explicit config
// value first, then the persisted identity, then a freshly generated UUID
// persisted for future sessions.
func (e *Engine) resolveSubjectID() {
	if e.cfg.SubjectID != "" {
		e.subjectID = e.cfg.SubjectID

		return
	}

	ctx, cancel := e.opCtx()
	defer cancel()

	id, err := e.storage.SubjectID(ctx)
	if err != nil {
		e.degrade("subject_id", err)
	}
	if id != "" {
		e.subjectID = id

		return
	}

	e.subjectID = uuid.NewString()
	e.logger.Info("generated new subject identity", "subject", e.subjectID)

	e.persist("subject_id", func(ctx context.Context) error {
		return e.storage.SaveSubjectID(ctx, e.subjectID)
	})
}

// loadAssignments warms the session cache from storage so every call site in
// the session observes the same resolved values.
func (e *Engine) loadAssignments() {
	if e.degraded.Load() {
		return
	}

	ctx, cancel := e.opCtx()
	defer cancel()

	persisted, err := e.storage.Load(ctx)
	if err != nil {
		e.degrade("load", err)

		return
	}

	for experimentID, a := range persisted {
		e.cache.Store(experimentID, a)
	}
}

// persist runs a storage write best-effort: failures degrade the engine to
// memory-only and are never surfaced to the caller.
func (e *Engine) persist(op string, fn func(ctx context.Context) error) {
	if e.degraded.Load() {
		return
	}

	ctx, cancel := e.opCtx()
	defer cancel()

	if err := fn(ctx); err != nil {
		e.degrade(op, err)
	}
}

// degrade flips the engine to memory-only operation after a storage failure.
func (e *Engine) degrade(op string, err error) {
	e.metrics.RecordStorageFailure(op)

	if e.degraded.Swap(true) {
		return
	}

	e.metrics.SetDegradedMode(true)
	e.logger.Warn("assignment storage unavailable, continuing memory-only",
		"op", op,
		"error", err,
	)
}

// opCtx bounds one storage operation.
func (e *Engine) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.cfg.OperationTimeout)
}
