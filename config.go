package variant

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the configuration for the Engine.
//
// All fields have working defaults; the zero Config is usable after
// SetDefaults. Fields carry yaml tags for configuration files and env tags
// for twelve-factor deployments (see ConfigFromEnv).
type Config struct {
	// SubjectID pins the subject identity explicitly, e.g. to an
	// authenticated user ID so assignments follow the user across devices.
	// When empty, the engine loads a persisted random identity from storage,
	// generating and persisting one on first use.
	SubjectID string `yaml:"subjectId" env:"VARIANT_SUBJECT_ID"`

	// HashSeed seeds the default bucketer. Changing it reshuffles every
	// subject across variants, so it must stay fixed once experiments run.
	HashSeed uint64 `yaml:"hashSeed" env:"VARIANT_HASH_SEED"`

	// OverrideParam is the URL query parameter carrying manual overrides as
	// comma-separated experimentId:variantId pairs
	// (e.g. "?ab=cta-button-text:B").
	OverrideParam string `yaml:"overrideParam" env:"VARIANT_OVERRIDE_PARAM"`

	// OperationTimeout bounds each storage backend call. Storage is expected
	// to be a fast local call; the timeout only guards against a misbehaving
	// remote backend wedging a render path.
	OperationTimeout time.Duration `yaml:"operationTimeout" env:"VARIANT_OPERATION_TIMEOUT"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		OverrideParam:    "ab",
		OperationTimeout: 5 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.OverrideParam == "" {
		cfg.OverrideParam = defaults.OverrideParam
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
}

// Validate checks configuration constraints and returns an error for invalid
// values.
//
// Returns:
//   - error: Validation error with a clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}

	// Override pairs are split on ':' and ',' during query parsing, so the
	// parameter name must not collide with the pair syntax.
	if strings.ContainsAny(cfg.OverrideParam, ":,=&") {
		return fmt.Errorf("OverrideParam %q must not contain ':', ',', '=' or '&'", cfg.OverrideParam)
	}

	return nil
}

// ConfigFromEnv builds a Config from VARIANT_* environment variables, then
// applies defaults.
//
// Returns:
//   - Config: Parsed configuration
//   - error: Environment parse error
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment configuration: %w", err)
	}

	SetDefaults(&cfg)

	return cfg, nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with a short storage timeout for tests
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.OperationTimeout = 500 * time.Millisecond

	return cfg
}
