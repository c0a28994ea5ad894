// Package library persists per-user catalog state that survives
// rescans: favorite entries and launch history. Backed by SQLite in
// the data directory.
package library
