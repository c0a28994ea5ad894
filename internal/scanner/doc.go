// Package scanner supervises the external game scan process.
//
// The Supervisor runs exactly one scan session at a time. It resolves
// an ordered chain of launch candidates (prebuilt binary first, then
// script alternates under each configured runtime), parses the
// line-oriented PROGRESS protocol from the child's stdout, folds
// discovered games into the catalog merger, and requests best-effort
// cover warm-ups for newly accepted entries. A single wall-clock
// timeout spans the whole fallback chain.
//
// The scanner itself is an opaque external process; this package only
// speaks its stdout protocol and its exit codes.
package scanner
