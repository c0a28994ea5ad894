// Command gamedex is the CLI companion to gamedexd. It talks to the
// daemon's local HTTP API to trigger scans, browse the catalog, manage
// favorites, and launch games.
package main
