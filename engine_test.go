package variant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anvara/variant/registry"
	"github.com/anvara/variant/store"
	"github.com/anvara/variant/types"
)

func testCatalog(t *testing.T) *registry.Static {
	t.Helper()

	reg, err := registry.NewStatic([]Experiment{
		{
			ID: "cta-button-text",
			Variants: []Variant{
				types.Weighted("A", 1),
				types.Weighted("B", 1),
			},
			DefaultVariant: "A",
		},
		{
			ID: "pricing-page",
			Variants: []Variant{
				types.Unweighted("control"),
				types.Unweighted("annual-first"),
				types.Unweighted("monthly-first"),
			},
			DefaultVariant: "control",
		},
		{
			ID: "onboarding-flow",
			Variants: []Variant{
				types.Weighted("short", 9),
				types.Weighted("long", 1),
			},
			DefaultVariant: "short",
		},
	})
	require.NoError(t, err)

	return reg
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	cfg := TestConfig()
	cfg.SubjectID = "subject-1"

	eng, err := NewEngine(&cfg, testCatalog(t), store.NewMemory(), opts...)
	require.NoError(t, err)

	return eng
}

func TestNewEngine(t *testing.T) {
	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewEngine(nil, testCatalog(t), store.NewMemory())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects nil registry", func(t *testing.T) {
		cfg := TestConfig()
		_, err := NewEngine(&cfg, nil, store.NewMemory())
		require.ErrorIs(t, err, ErrRegistryRequired)
	})

	t.Run("rejects nil storage", func(t *testing.T) {
		cfg := TestConfig()
		_, err := NewEngine(&cfg, testCatalog(t), nil)
		require.ErrorIs(t, err, ErrStorageRequired)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := TestConfig()
		cfg.OverrideParam = "a:b"

		_, err := NewEngine(&cfg, testCatalog(t), store.NewMemory())
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("applies defaults to zero config", func(t *testing.T) {
		cfg := Config{SubjectID: "subject-1"}
		eng, err := NewEngine(&cfg, testCatalog(t), store.NewMemory())
		require.NoError(t, err)
		require.Equal(t, "ab", eng.cfg.OverrideParam)
	})
}

func TestEngineSubjectIdentity(t *testing.T) {
	t.Run("explicit subject id wins", func(t *testing.T) {
		eng := newTestEngine(t)
		require.Equal(t, "subject-1", eng.SubjectID())
	})

	t.Run("generated identity persists across engines", func(t *testing.T) {
		storage := store.NewMemory()
		cfg := TestConfig()

		first, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)
		require.NotEmpty(t, first.SubjectID())

		cfg2 := TestConfig()
		second, err := NewEngine(&cfg2, testCatalog(t), storage)
		require.NoError(t, err)
		require.Equal(t, first.SubjectID(), second.SubjectID())
	})

	t.Run("explicit identity is not persisted", func(t *testing.T) {
		storage := store.NewMemory()
		cfg := TestConfig()
		cfg.SubjectID = "league-user-7"

		_, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)

		persisted, err := storage.SubjectID(context.Background())
		require.NoError(t, err)
		require.Empty(t, persisted)
	})
}

func TestEngineGetVariant(t *testing.T) {
	t.Run("returns a member variant", func(t *testing.T) {
		eng := newTestEngine(t)

		got := eng.GetVariant("cta-button-text")
		require.Contains(t, []string{"A", "B"}, got)
	})

	t.Run("is deterministic across fresh engines", func(t *testing.T) {
		first := newTestEngine(t)
		second := newTestEngine(t)

		for _, id := range []string{"cta-button-text", "pricing-page", "onboarding-flow"} {
			require.Equal(t, first.GetVariant(id), second.GetVariant(id), "experiment %s", id)
		}
	})

	t.Run("unknown experiment returns empty without side effects", func(t *testing.T) {
		eng := newTestEngine(t)

		require.Empty(t, eng.GetVariant("does-not-exist"))
		require.Empty(t, eng.GetAllAssignments())
	})

	t.Run("sticky across repeated calls", func(t *testing.T) {
		eng := newTestEngine(t)

		first := eng.GetVariant("pricing-page")
		for range 50 {
			require.Equal(t, first, eng.GetVariant("pricing-page"))
		}
	})

	t.Run("sticky after weight change", func(t *testing.T) {
		storage := store.NewMemory()
		cfg := TestConfig()
		cfg.SubjectID = "subject-1"

		eng, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)
		assigned := eng.GetVariant("onboarding-flow")

		// Reverse the skew; the persisted assignment must still win.
		reweighted, err := registry.NewStatic([]Experiment{{
			ID: "onboarding-flow",
			Variants: []Variant{
				types.Weighted("short", 1),
				types.Weighted("long", 9),
			},
			DefaultVariant: "short",
		}})
		require.NoError(t, err)

		cfg2 := TestConfig()
		cfg2.SubjectID = "subject-1"
		eng2, err := NewEngine(&cfg2, reweighted, storage)
		require.NoError(t, err)

		require.Equal(t, assigned, eng2.GetVariant("onboarding-flow"))
	})

	t.Run("stale assignment survives variant removal", func(t *testing.T) {
		storage := store.NewMemory()
		cfg := TestConfig()
		cfg.SubjectID = "subject-1"

		eng, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)
		require.NoError(t, eng.ForceVariant("cta-button-text", "B"))

		// Reconfigure the experiment without "B"; the persisted assignment
		// now references a variant outside the catalog.
		reconfigured, err := registry.NewStatic([]Experiment{{
			ID: "cta-button-text",
			Variants: []Variant{
				types.Weighted("A", 1),
				types.Weighted("C", 1),
			},
			DefaultVariant: "A",
		}})
		require.NoError(t, err)

		cfg2 := TestConfig()
		cfg2.SubjectID = "subject-1"
		eng2, err := NewEngine(&cfg2, reconfigured, storage)
		require.NoError(t, err)

		// Stickiness outranks catalog membership on reads.
		require.Equal(t, "B", eng2.GetVariant("cta-button-text"))

		res := eng2.Lookup("cta-button-text")
		require.True(t, res.Resolved)
		require.Equal(t, "B", res.VariantID)

		// The removed variant has no configured share.
		require.Zero(t, eng2.GetVariantPercentage("cta-button-text", "B"))

		var report DebugReport
		require.NotPanics(t, func() { report = eng2.Report() })
		require.NotNil(t, report.Experiments[0].Assignment)
		require.Equal(t, "B", report.Experiments[0].Assignment.VariantID)

		// Clearing re-buckets against the current configuration.
		eng2.ClearAssignments()
		require.Contains(t, []string{"A", "C"}, eng2.GetVariant("cta-button-text"))
	})

	t.Run("persists the assignment timestamp", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		eng := newTestEngine(t, WithClock(func() time.Time { return now }))

		got := eng.GetVariant("cta-button-text")

		all := eng.GetAllAssignments()
		require.Len(t, all, 1)
		require.Equal(t, got, all["cta-button-text"].VariantID)
		require.Equal(t, now.UnixMilli(), all["cta-button-text"].AssignedAt)
	})

	t.Run("concurrent first access resolves once", func(t *testing.T) {
		eng := newTestEngine(t)

		const callers = 32
		results := make([]string, callers)

		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = eng.GetVariant("pricing-page")
			}()
		}
		wg.Wait()

		for i := 1; i < callers; i++ {
			require.Equal(t, results[0], results[i])
		}
		require.Len(t, eng.GetAllAssignments(), 1)
	})
}

func TestEngineLookup(t *testing.T) {
	eng := newTestEngine(t)

	t.Run("unresolved returns default without bucketing", func(t *testing.T) {
		res := eng.Lookup("cta-button-text")
		require.Equal(t, Resolution{VariantID: "A", Resolved: false}, res)
		require.Empty(t, eng.GetAllAssignments())
	})

	t.Run("resolved returns the assignment", func(t *testing.T) {
		assigned := eng.GetVariant("cta-button-text")

		res := eng.Lookup("cta-button-text")
		require.True(t, res.Resolved)
		require.Equal(t, assigned, res.VariantID)
	})

	t.Run("unknown experiment returns zero resolution", func(t *testing.T) {
		require.Equal(t, Resolution{}, eng.Lookup("does-not-exist"))
	})
}

func TestEngineForceVariant(t *testing.T) {
	t.Run("overrides the assignment", func(t *testing.T) {
		eng := newTestEngine(t)
		eng.GetVariant("cta-button-text")

		require.NoError(t, eng.ForceVariant("cta-button-text", "B"))
		require.Equal(t, "B", eng.GetVariant("cta-button-text"))

		res := eng.Lookup("cta-button-text")
		require.True(t, res.Resolved)
		require.Equal(t, "B", res.VariantID)
	})

	t.Run("forced assignment survives restart", func(t *testing.T) {
		storage := store.NewMemory()
		cfg := TestConfig()
		cfg.SubjectID = "subject-1"

		eng, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)
		require.NoError(t, eng.ForceVariant("pricing-page", "annual-first"))

		cfg2 := TestConfig()
		cfg2.SubjectID = "subject-1"
		eng2, err := NewEngine(&cfg2, testCatalog(t), storage)
		require.NoError(t, err)
		require.Equal(t, "annual-first", eng2.GetVariant("pricing-page"))
	})

	t.Run("rejects unknown experiment", func(t *testing.T) {
		eng := newTestEngine(t)
		require.ErrorIs(t, eng.ForceVariant("does-not-exist", "A"), ErrUnknownExperiment)
	})

	t.Run("rejects unknown variant", func(t *testing.T) {
		eng := newTestEngine(t)
		require.ErrorIs(t, eng.ForceVariant("cta-button-text", "Z"), ErrUnknownVariant)
		require.Empty(t, eng.GetAllAssignments())
	})
}

func TestEngineClear(t *testing.T) {
	t.Run("clear all re-buckets on next read", func(t *testing.T) {
		eng := newTestEngine(t)
		require.NoError(t, eng.ForceVariant("cta-button-text", "B"))
		eng.GetVariant("pricing-page")

		eng.ClearAssignments()
		require.Empty(t, eng.GetAllAssignments())

		// The natural bucket for subject-1 is deterministic; the forced "B"
		// only survives if the hash happens to agree.
		natural := newTestEngine(t).GetVariant("cta-button-text")
		require.Equal(t, natural, eng.GetVariant("cta-button-text"))
	})

	t.Run("clear one leaves others intact", func(t *testing.T) {
		eng := newTestEngine(t)
		eng.GetVariant("cta-button-text")
		eng.GetVariant("pricing-page")

		eng.ClearAssignment("cta-button-text")

		all := eng.GetAllAssignments()
		require.Len(t, all, 1)
		require.Contains(t, all, "pricing-page")
	})

	t.Run("clearing unassigned experiment is a no-op", func(t *testing.T) {
		eng := newTestEngine(t)
		eng.ClearAssignment("cta-button-text")
		require.Empty(t, eng.GetAllAssignments())
	})

	t.Run("clear persists across restart", func(t *testing.T) {
		storage := store.NewMemory()
		cfg := TestConfig()
		cfg.SubjectID = "subject-1"

		eng, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)
		require.NoError(t, eng.ForceVariant("cta-button-text", "B"))
		eng.ClearAssignments()

		cfg2 := TestConfig()
		cfg2.SubjectID = "subject-1"
		eng2, err := NewEngine(&cfg2, testCatalog(t), storage)
		require.NoError(t, err)
		require.Empty(t, eng2.GetAllAssignments())
	})
}

func TestEngineGetVariantPercentage(t *testing.T) {
	eng := newTestEngine(t)

	t.Run("weighted shares", func(t *testing.T) {
		require.InDelta(t, 50.0, eng.GetVariantPercentage("cta-button-text", "A"), 0.001)
		require.InDelta(t, 50.0, eng.GetVariantPercentage("cta-button-text", "B"), 0.001)
		require.InDelta(t, 90.0, eng.GetVariantPercentage("onboarding-flow", "short"), 0.001)
		require.InDelta(t, 10.0, eng.GetVariantPercentage("onboarding-flow", "long"), 0.001)
	})

	t.Run("unweighted equal split rounds to one decimal", func(t *testing.T) {
		require.InDelta(t, 33.3, eng.GetVariantPercentage("pricing-page", "control"), 0.001)
	})

	t.Run("unknown experiment or variant returns zero", func(t *testing.T) {
		require.Zero(t, eng.GetVariantPercentage("does-not-exist", "A"))
		require.Zero(t, eng.GetVariantPercentage("cta-button-text", "Z"))
	})

	t.Run("all-zero weights map to the default variant", func(t *testing.T) {
		reg, err := registry.NewStatic([]Experiment{{
			ID: "paused",
			Variants: []Variant{
				types.Weighted("keep", 0),
				types.Weighted("drop", 1),
			},
			DefaultVariant: "keep",
		}})
		require.NoError(t, err)

		cfg := TestConfig()
		cfg.SubjectID = "subject-1"
		paused, err := NewEngine(&cfg, reg, store.NewMemory())
		require.NoError(t, err)

		require.InDelta(t, 100.0, paused.GetVariantPercentage("paused", "drop"), 0.001)
		require.Zero(t, paused.GetVariantPercentage("paused", "keep"))
	})

	t.Run("does not resolve assignments", func(t *testing.T) {
		fresh := newTestEngine(t)
		fresh.GetVariantPercentage("cta-button-text", "A")
		require.Empty(t, fresh.GetAllAssignments())
	})
}

func TestEngineHooks(t *testing.T) {
	var mu sync.Mutex
	var assigned, forced [][2]string
	var cleared [][]string

	hooks := &Hooks{
		OnAssigned: func(experimentID, variantID string) {
			mu.Lock()
			defer mu.Unlock()
			assigned = append(assigned, [2]string{experimentID, variantID})
		},
		OnForced: func(experimentID, variantID string) {
			mu.Lock()
			defer mu.Unlock()
			forced = append(forced, [2]string{experimentID, variantID})
		},
		OnCleared: func(experimentIDs []string) {
			mu.Lock()
			defer mu.Unlock()
			cleared = append(cleared, experimentIDs)
		},
	}

	eng := newTestEngine(t, WithHooks(hooks))

	got := eng.GetVariant("cta-button-text")
	eng.GetVariant("cta-button-text") // cache hit, no hook
	require.NoError(t, eng.ForceVariant("pricing-page", "annual-first"))
	eng.ClearAssignment("pricing-page")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, [][2]string{{"cta-button-text", got}}, assigned)
	require.Equal(t, [][2]string{{"pricing-page", "annual-first"}}, forced)
	require.Equal(t, [][]string{{"pricing-page"}}, cleared)
}

// failingStorage fails every operation after a configurable number of
// successes, for degradation tests.
type failingStorage struct {
	mu        sync.Mutex
	remaining int
	calls     int
}

var errStorageDown = errors.New("storage down")

func (s *failingStorage) fail() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.remaining > 0 {
		s.remaining--

		return nil
	}

	return errStorageDown
}

func (s *failingStorage) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func (s *failingStorage) Load(context.Context) (map[string]types.Assignment, error) {
	return nil, s.fail()
}

func (s *failingStorage) Save(context.Context, string, types.Assignment) error {
	return s.fail()
}

func (s *failingStorage) Delete(context.Context, string) error { return s.fail() }
func (s *failingStorage) Clear(context.Context) error          { return s.fail() }

func (s *failingStorage) SubjectID(context.Context) (string, error) {
	return "", s.fail()
}

func (s *failingStorage) SaveSubjectID(context.Context, string) error {
	return s.fail()
}

func TestEngineStorageDegradation(t *testing.T) {
	t.Run("construction survives a dead backend", func(t *testing.T) {
		cfg := TestConfig()
		cfg.SubjectID = "subject-1"

		eng, err := NewEngine(&cfg, testCatalog(t), &failingStorage{})
		require.NoError(t, err)
		require.True(t, eng.Degraded())
	})

	t.Run("reads and overrides keep working memory-only", func(t *testing.T) {
		cfg := TestConfig()
		cfg.SubjectID = "subject-1"

		eng, err := NewEngine(&cfg, testCatalog(t), &failingStorage{})
		require.NoError(t, err)

		got := eng.GetVariant("cta-button-text")
		require.Contains(t, []string{"A", "B"}, got)
		require.Equal(t, got, eng.GetVariant("cta-button-text"))

		require.NoError(t, eng.ForceVariant("cta-button-text", "B"))
		require.Equal(t, "B", eng.GetVariant("cta-button-text"))
	})

	t.Run("stops calling storage after the first failure", func(t *testing.T) {
		storage := &failingStorage{remaining: 2} // subject load + save succeed
		cfg := TestConfig()

		eng, err := NewEngine(&cfg, testCatalog(t), storage)
		require.NoError(t, err)
		require.True(t, eng.Degraded()) // assignment load failed

		before := storage.callCount()
		eng.GetVariant("cta-button-text")
		require.NoError(t, eng.ForceVariant("pricing-page", "control"))
		eng.ClearAssignments()

		require.Equal(t, before, storage.callCount())
	})
}

func TestEngineReport(t *testing.T) {
	eng := newTestEngine(t)
	assigned := eng.GetVariant("cta-button-text")

	report := eng.Report()
	require.Equal(t, "subject-1", report.SubjectID)
	require.False(t, report.Degraded)
	require.Len(t, report.Experiments, 3)

	cta := report.Experiments[0]
	require.Equal(t, "cta-button-text", cta.ID)
	require.Equal(t, "A", cta.DefaultVariant)
	require.Len(t, cta.Variants, 2)
	require.InDelta(t, 50.0, cta.Variants[0].Percentage, 0.001)
	require.NotNil(t, cta.Assignment)
	require.Equal(t, assigned, cta.Assignment.VariantID)

	pricing := report.Experiments[1]
	require.Equal(t, "pricing-page", pricing.ID)
	require.Nil(t, pricing.Assignment)
}

func TestEngineListExperiments(t *testing.T) {
	eng := newTestEngine(t)

	experiments := eng.ListExperiments()
	require.Len(t, experiments, 3)
	require.Equal(t, "cta-button-text", experiments[0].ID)
}
