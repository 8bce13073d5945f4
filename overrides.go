package variant

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ApplyOverrideQuery applies variant overrides from a URL query string.
//
// The override parameter (Config.OverrideParam, "ab" by default) carries a
// comma-separated list of experiment:variant pairs:
//
//	?ab=cta-button-text:treatment,pricing-page:control
//
// A repeated parameter contributes all of its occurrences, in query order.
// Each valid pair is forced exactly as ForceVariant would. Invalid pairs are
// skipped, not fatal: valid pairs in the same query still apply, and the
// returned error joins one error per rejected pair so callers can log the
// whole picture. A query without the override parameter is a no-op.
//
// Parameters:
//   - rawQuery: Raw query string, with or without a leading "?"
//
// Returns:
//   - error: nil when every pair applied; otherwise joined ErrInvalidOverride,
//     ErrUnknownExperiment, and ErrUnknownVariant errors
func (e *Engine) ApplyOverrideQuery(rawQuery string) error {
	rawQuery = strings.TrimPrefix(rawQuery, "?")

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOverride, err)
	}

	var errs []error
	for _, spec := range values[e.cfg.OverrideParam] {
		for _, pair := range strings.Split(spec, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}

			experimentID, variantID, ok := strings.Cut(pair, ":")
			if !ok || experimentID == "" || variantID == "" {
				errs = append(errs, fmt.Errorf("%w: malformed pair %q", ErrInvalidOverride, pair))

				continue
			}

			if err := e.ForceVariant(experimentID, variantID); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}
