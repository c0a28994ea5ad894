// Package catalog owns the authoritative in-memory collection of
// discovered games.
//
// The Merger absorbs batches streamed in by the scan supervisor with
// strict dedup: a candidate is rejected when its platform-scoped
// identity, or its lowercased name within the same platform, already
// exists in the live collection. Merges are serialized and atomic with
// respect to Snapshot, and nothing is ever removed except by Reset.
package catalog
