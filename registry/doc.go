// Package registry provides built-in experiment catalog implementations.
//
// Registries are read-only catalogs of experiments. The package includes:
//
//   - Static: Fixed, validated catalog built from code
//   - LoadYAML / LoadYAMLFile: Static catalog parsed from a YAML document
//
// Custom registries can be implemented by satisfying the types.Registry
// interface.
package registry
