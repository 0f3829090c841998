// Package config loads, validates, and normalizes curator configuration
// from TOML files, providing defaults and sample generation.
package config
