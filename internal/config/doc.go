// Package config loads, normalizes, and validates gamedex configuration.
//
// Configuration lives in a single TOML file. Load applies repository
// defaults first, overlays the file when present, expands all path
// fields, and validates the result, so downstream components can treat
// every field as absolute and well-formed.
package config
