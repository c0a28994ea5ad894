package render_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/logging"
	"gamedex/internal/render"
)

type staticCatalog struct {
	entries []catalog.Entry
}

func (s *staticCatalog) Snapshot() []catalog.Entry {
	return s.entries
}

// fakeImages resolves instantly except for the first blockCalls calls,
// which wait on the gate channel.
type fakeImages struct {
	mu         sync.Mutex
	calls      int
	blockCalls int
	gate       chan struct{}
}

func (f *fakeImages) Resolve(ctx context.Context, entry catalog.Entry) string {
	f.mu.Lock()
	call := f.calls + 1
	f.calls = call
	f.mu.Unlock()
	if f.gate != nil && call <= f.blockCalls {
		<-f.gate
	}
	return "covers/" + entry.Name + ".png"
}

func (f *fakeImages) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSink struct {
	mu      sync.Mutex
	lists   [][]catalog.Entry
	entries []string
	images  map[string]string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{images: make(map[string]string)}
}

func (r *recordingSink) RenderList(entries []catalog.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, entries)
}

func (r *recordingSink) RenderEntry(entry catalog.Entry, imagePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry.Name)
	r.images[entry.Name] = imagePath
}

func (r *recordingSink) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists), len(r.entries)
}

func testRenderConfig() config.Render {
	return config.Render{
		DebounceMillis:   5,
		BatchSize:        2,
		BatchPauseMillis: 1,
		Locale:           "en",
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRequestRenderCoalescesBursts(t *testing.T) {
	snap := &staticCatalog{entries: []catalog.Entry{
		{Name: "Portal", Platform: "steam"},
		{Name: "Zelda", Platform: "steam"},
	}}
	sink := newRecordingSink()
	sched := render.New(testRenderConfig(), snap, &fakeImages{}, sink, logging.NewNop())

	for i := 0; i < 10; i++ {
		sched.RequestRender()
	}
	waitFor(t, "render delivery", func() bool {
		_, entries := sink.counts()
		return entries == 2
	})

	// Let any spurious extra pass surface before asserting.
	time.Sleep(30 * time.Millisecond)
	lists, entries := sink.counts()
	if lists != 1 {
		t.Fatalf("render passes = %d, want 1", lists)
	}
	if entries != 2 {
		t.Fatalf("entries delivered = %d, want 2", entries)
	}
}

func TestPassDeliversOrderedEntriesWithImages(t *testing.T) {
	snap := &staticCatalog{entries: []catalog.Entry{
		{Name: "The Witcher", Platform: "gog"},
		{Name: "A Quiet Place", Platform: "steam"},
		{Name: "Zelda", Platform: "steam"},
	}}
	sink := newRecordingSink()
	sched := render.New(testRenderConfig(), snap, &fakeImages{}, sink, logging.NewNop())

	sched.Update(render.Options{Descending: true})
	waitFor(t, "render delivery", func() bool {
		_, entries := sink.counts()
		return entries == 3
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	want := []string{"Zelda", "The Witcher", "A Quiet Place"}
	for i, name := range want {
		if sink.entries[i] != name {
			t.Fatalf("delivery order = %v, want %v", sink.entries, want)
		}
	}
	if sink.images["Zelda"] != "covers/Zelda.png" {
		t.Fatalf("image path = %q", sink.images["Zelda"])
	}
}

func TestNewerRequestSupersedesActivePass(t *testing.T) {
	snap := &staticCatalog{entries: []catalog.Entry{
		{Name: "Alpha", Platform: "steam"},
		{Name: "Beta", Platform: "steam"},
		{Name: "Gamma", Platform: "steam"},
		{Name: "Delta", Platform: "steam"},
	}}
	// The first pass's opening batch (2 resolves) parks on the gate;
	// the second pass resolves freely.
	images := &fakeImages{blockCalls: 2, gate: make(chan struct{})}
	sink := newRecordingSink()
	sched := render.New(testRenderConfig(), snap, images, sink, logging.NewNop())

	sched.RequestRender()
	waitFor(t, "first pass to block", func() bool {
		return images.callCount() == 2
	})

	sched.RequestRender()
	waitFor(t, "second pass delivery", func() bool {
		_, entries := sink.counts()
		return entries == 4
	})

	// Unblock the stale pass; it must notice the newer generation and
	// discard its entries instead of appending them.
	close(images.gate)
	time.Sleep(30 * time.Millisecond)

	lists, entries := sink.counts()
	if lists != 2 {
		t.Fatalf("render lists = %d, want 2", lists)
	}
	if entries != 4 {
		t.Fatalf("entries delivered = %d, want 4 (stale pass must stay silent)", entries)
	}
}

func TestUpdateAppliesSelection(t *testing.T) {
	snap := &staticCatalog{entries: []catalog.Entry{
		{Name: "Portal", Platform: "steam"},
		{Name: "Fortnite", Platform: "epic"},
	}}
	sink := newRecordingSink()
	sched := render.New(testRenderConfig(), snap, &fakeImages{}, sink, logging.NewNop())

	sched.Update(render.Options{Platform: "epic"})
	waitFor(t, "filtered delivery", func() bool {
		_, entries := sink.counts()
		return entries == 1
	})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.entries[0] != "Fortnite" {
		t.Fatalf("delivered %v, want [Fortnite]", sink.entries)
	}
	if got := sched.Options().Platform; got != "epic" {
		t.Fatalf("Options().Platform = %q", got)
	}
}
