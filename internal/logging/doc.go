// Package logging assembles the structured slog loggers used across
// gamedex components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so components emit log lines
// with a uniform shape. A no-op logger is provided for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new
// components log with the same shape as the rest of the system.
package logging
