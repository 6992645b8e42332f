// Package config loads hearthd configuration from YAML with ${ENV}
// expansion, duration parsing, and validation.
package config
