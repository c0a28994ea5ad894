package catalog_test

import (
	"fmt"
	"reflect"
	"testing"

	"gamedex/internal/catalog"
	"gamedex/internal/logging"
)

func newMerger() *catalog.Merger {
	return catalog.NewMerger(logging.NewNop())
}

func TestMergeIsIdempotent(t *testing.T) {
	m := newMerger()
	batch := []catalog.Entry{
		{Name: "Foo", Platform: "steam", Identity: "1"},
		{Name: "Bar", Platform: "epic"},
	}

	first := m.Merge(batch)
	if len(first) != 2 {
		t.Fatalf("first merge accepted %d, want 2", len(first))
	}

	second := m.Merge(batch)
	if len(second) != 0 {
		t.Fatalf("second merge accepted %d, want 0", len(second))
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
}

func TestMergeDeduplicatesAcrossBatchBoundaries(t *testing.T) {
	// Scanner emits the same record in two progress units plus one new
	// entry; the final snapshot holds exactly two entries in arrival order.
	m := newMerger()
	m.Merge([]catalog.Entry{{Name: "Foo", Platform: "steam", Identity: "1"}})
	m.Merge([]catalog.Entry{
		{Name: "Foo", Platform: "steam", Identity: "1"},
		{Name: "Bar", Platform: "epic"},
	})

	snapshot := m.Snapshot()
	names := make([]string, 0, len(snapshot))
	for _, e := range snapshot {
		names = append(names, e.Name)
	}
	if !reflect.DeepEqual(names, []string{"Foo", "Bar"}) {
		t.Fatalf("snapshot order = %v, want [Foo Bar]", names)
	}
}

func TestMergeDedupKeys(t *testing.T) {
	tests := []struct {
		name     string
		first    catalog.Entry
		second   catalog.Entry
		wantDup  bool
		scenario string
	}{
		{
			name:    "identity match rejects despite different display names",
			first:   catalog.Entry{Name: "Half-Life 2", Platform: "steam", Identity: "220"},
			second:  catalog.Entry{Name: "Half Life 2", Platform: "steam", Identity: "220"},
			wantDup: true,
		},
		{
			name:    "name and platform match rejects when identities absent",
			first:   catalog.Entry{Name: "Rocket League", Platform: "epic"},
			second:  catalog.Entry{Name: "rocket league", Platform: "epic"},
			wantDup: true,
		},
		{
			name:    "same name on different platforms survives",
			first:   catalog.Entry{Name: "Rocket League", Platform: "steam", Identity: "252950"},
			second:  catalog.Entry{Name: "Rocket League", Platform: "epic", Identity: "Sugar"},
			wantDup: false,
		},
		{
			name:    "platform alias normalization applies before dedup",
			first:   catalog.Entry{Name: "Anthem", Platform: "ea"},
			second:  catalog.Entry{Name: "Anthem", Platform: "Origin"},
			wantDup: true,
		},
		{
			name:    "different identity same platform different name survives",
			first:   catalog.Entry{Name: "Portal", Platform: "steam", Identity: "400"},
			second:  catalog.Entry{Name: "Portal 2", Platform: "steam", Identity: "620"},
			wantDup: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newMerger()
			m.Merge([]catalog.Entry{tc.first})
			accepted := m.Merge([]catalog.Entry{tc.second})
			gotDup := len(accepted) == 0
			if gotDup != tc.wantDup {
				t.Fatalf("duplicate = %v, want %v", gotDup, tc.wantDup)
			}
		})
	}
}

func TestMergeOrderIndependence(t *testing.T) {
	a := catalog.Entry{Name: "Foo", Platform: "steam", Identity: "1"}
	b := catalog.Entry{Name: "foo", Platform: "steam"}

	forward := newMerger()
	forward.Merge([]catalog.Entry{a, b})
	reverse := newMerger()
	reverse.Merge([]catalog.Entry{b, a})

	if forward.Len() != 1 || reverse.Len() != 1 {
		t.Fatalf("lens = %d/%d, want 1/1", forward.Len(), reverse.Len())
	}
}

func TestMergeSkipsNamelessRecords(t *testing.T) {
	m := newMerger()
	accepted := m.Merge([]catalog.Entry{{Platform: "steam", Identity: "42"}, {Name: "  "}})
	if len(accepted) != 0 || m.Len() != 0 {
		t.Fatal("nameless records must be dropped")
	}
}

func TestResetClearsCollection(t *testing.T) {
	m := newMerger()
	m.Merge([]catalog.Entry{{Name: "Foo", Platform: "steam", Identity: "1"}})
	m.Reset()
	if m.Len() != 0 {
		t.Fatalf("len after reset = %d", m.Len())
	}
	// Previously merged records are accepted again after a reset.
	if accepted := m.Merge([]catalog.Entry{{Name: "Foo", Platform: "steam", Identity: "1"}}); len(accepted) != 1 {
		t.Fatal("reset must forget dedup keys")
	}
}

func TestSnapshotNeverObservesPartialBatch(t *testing.T) {
	const (
		batches   = 100
		batchSize = 5
	)

	m := newMerger()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < batches; i++ {
			batch := make([]catalog.Entry, 0, batchSize)
			for j := 0; j < batchSize; j++ {
				batch = append(batch, catalog.Entry{
					Name:     fmt.Sprintf("Game %d-%d", i, j),
					Platform: "steam",
					Identity: fmt.Sprintf("%d-%d", i, j),
				})
			}
			m.Merge(batch)
		}
	}()

	// Every concurrent snapshot must land on a batch boundary: a merge
	// call appends its whole accepted set or nothing visible at all.
	for {
		if got := len(m.Snapshot()); got%batchSize != 0 {
			t.Fatalf("snapshot saw %d entries, not a multiple of the batch size %d", got, batchSize)
		}
		select {
		case <-done:
			if got := m.Len(); got != batches*batchSize {
				t.Fatalf("final length = %d, want %d", got, batches*batchSize)
			}
			return
		default:
		}
	}
}
