// Package daemon hosts the long-running gamedex process: it enforces
// single-instance execution with a lock file, serves the local HTTP
// API the CLI talks to, and watches for storage hotplug events that
// warrant a rescan.
package daemon
