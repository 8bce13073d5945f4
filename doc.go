// Package variant provides a Go library for deterministic, client-resident
// experiment assignment with sticky per-subject variants.
//
// Variant resolves A/B-test buckets locally from a static experiment catalog,
// without calling an assignment service. Bucketing is a pure hash of the
// subject identity and experiment ID, so the same subject lands in the same
// variant on every device that shares its identity. Resolved assignments are
// persisted and never re-bucketed, even when experiment weights change.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import (
//	    "github.com/anvara/variant"
//	    "github.com/anvara/variant/registry"
//	    "github.com/anvara/variant/store"
//	)
//
//	reg, err := registry.NewStatic([]variant.Experiment{
//	    {
//	        ID:             "cta-button-text",
//	        Variants:       []variant.Variant{variant.Unweighted("control"), variant.Unweighted("treatment")},
//	        DefaultVariant: "control",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := variant.DefaultConfig()
//	eng, err := variant.NewEngine(&cfg, reg, store.NewFile("assignments.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if eng.GetVariant("cta-button-text") == "treatment" {
//	    // render the treatment
//	}
//
// # Key Features
//
//   - Deterministic Bucketing: Pure xxh3 hash of subject and experiment, no network calls
//   - Sticky Assignments: First resolution wins; weight changes never reshuffle existing subjects
//   - Pluggable Storage: In-memory, JSON file, and NATS JetStream KV backends
//   - Manual Overrides: Force variants programmatically or via a URL query parameter
//   - Graceful Degradation: Storage failures fall back to memory-only operation, reads never fail
//
// # Architecture
//
// An assignment read flows through three layers:
//
//	session cache → persisted storage → deterministic bucketer
//
// The Engine warms its session cache from storage at construction, so every
// call site in a session observes the same values. First access to an
// unresolved experiment buckets the subject, persists the result, and fires
// the OnAssigned hook.
//
// # Advanced Usage
//
// Custom bucketer with options:
//
//	import (
//	    "github.com/anvara/variant"
//	    "github.com/anvara/variant/bucket"
//	)
//
//	hooks := &variant.Hooks{
//	    OnAssigned: func(experimentID, variantID string) {
//	        analytics.Track("experiment_assigned", experimentID, variantID)
//	    },
//	}
//
//	eng, err := variant.NewEngine(&cfg, reg, storage,
//	    variant.WithBucketer(bucket.NewPinned()),
//	    variant.WithHooks(hooks),
//	)
//
// See the examples/ directory for complete working examples.
package variant
