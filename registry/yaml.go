package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anvara/variant/types"
)

// catalogDoc is the YAML document shape for a registry catalog.
type catalogDoc struct {
	Experiments []types.Experiment `yaml:"experiments"`
}

// LoadYAML builds a static registry from a YAML catalog document.
//
// Document shape:
//
//	experiments:
//	  - id: cta-button-text
//	    defaultVariant: A
//	    variants:
//	      - id: A
//	        weight: 1
//	      - id: B
//	        weight: 1
//
// Omitting every weight in an experiment makes it unweighted (equal split).
//
// Parameters:
//   - data: YAML document bytes
//
// Returns:
//   - *Static: Validated registry
//   - error: Parse error or catalog invariant violation
func LoadYAML(data []byte) (*Static, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse experiment catalog: %w", err)
	}

	return NewStatic(doc.Experiments)
}

// LoadYAMLFile builds a static registry from a YAML catalog file.
//
// Parameters:
//   - path: Catalog file path
//
// Returns:
//   - *Static: Validated registry
//   - error: Read error, parse error, or catalog invariant violation
func LoadYAMLFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment catalog %s: %w", path, err)
	}

	return LoadYAML(data)
}
