// Package artwork caches cover images for catalog entries.
//
// Resolve maps an entry to a usable local image path and never fails
// outward: a cache hit returns immediately, an undersized file is
// deleted and refetched, and any lookup, download, or timeout failure
// falls back to the fixed placeholder. Sweep keeps the cache directory
// under its file-count and byte budgets by evicting the files least
// recently touched.
package artwork
