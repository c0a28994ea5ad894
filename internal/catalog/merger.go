package catalog

import (
	"log/slog"
	"strings"
	"sync"

	"gamedex/internal/logging"
)

// Merger maintains the order-preserving, deduplicated collection of
// entries for one session. Merge and Reset are serialized against each
// other; Snapshot never observes a partially-appended batch.
type Merger struct {
	logger *slog.Logger

	mu         sync.RWMutex
	entries    []Entry
	byIdentity map[string]struct{}
	byName     map[string]struct{}
}

// NewMerger constructs an empty merger.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{
		logger:     logging.NewComponentLogger(logger, "catalog"),
		byIdentity: make(map[string]struct{}),
		byName:     make(map[string]struct{}),
	}
}

// Reset clears the collection. Callers must only invoke this between
// scans, never while a merge is mid-flight.
func (m *Merger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.byIdentity = make(map[string]struct{})
	m.byName = make(map[string]struct{})
}

// Merge folds a batch into the collection and returns exactly the
// subset that was appended. Candidates are tested entry by entry in
// arrival order against the growing live set, so re-merging the same
// batch appends nothing and batch-internal duplicates collapse to the
// first occurrence.
func (m *Merger) Merge(batch []Entry) []Entry {
	if len(batch) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var accepted []Entry
	for _, candidate := range batch {
		entry := normalizeEntry(candidate)
		if entry.Name == "" {
			m.logger.Debug("dropping record without a name", logging.String(logging.FieldPlatform, entry.Platform))
			continue
		}

		identityKey, nameKey := entryKeys(entry)
		if identityKey != "" {
			if _, dup := m.byIdentity[identityKey]; dup {
				continue
			}
		}
		if _, dup := m.byName[nameKey]; dup {
			continue
		}

		if identityKey != "" {
			m.byIdentity[identityKey] = struct{}{}
		}
		m.byName[nameKey] = struct{}{}
		m.entries = append(m.entries, entry)
		accepted = append(accepted, entry)
	}

	if len(accepted) > 0 {
		m.logger.Debug("merged batch",
			logging.Int("batch", len(batch)),
			logging.Int("accepted", len(accepted)),
			logging.Int("total", len(m.entries)))
	}
	return accepted
}

// Snapshot returns a copy of the current collection in first-arrival order.
func (m *Merger) Snapshot() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports the authoritative entry count.
func (m *Merger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func normalizeEntry(e Entry) Entry {
	e.Name = strings.TrimSpace(e.Name)
	e.Identity = strings.TrimSpace(e.Identity)
	e.Platform = NormalizePlatform(e.Platform)
	return e
}

// entryKeys derives the two dedup keys. Identity is storefront-scoped,
// so the identity key carries the platform too; an empty identity yields
// no identity key at all.
func entryKeys(e Entry) (identityKey, nameKey string) {
	if e.Identity != "" {
		identityKey = e.Platform + "\x00" + e.Identity
	}
	nameKey = e.Platform + "\x00" + strings.ToLower(e.Name)
	return identityKey, nameKey
}
