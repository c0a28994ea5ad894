package artwork_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gamedex/internal/artwork"
	"gamedex/internal/config"
	"gamedex/internal/logging"
	"gamedex/internal/testsupport"
)

func newSweepCache(t *testing.T, cfg config.Artwork) (*artwork.Cache, string) {
	t.Helper()
	dir := t.TempDir()
	cfg.Placeholder = filepath.Join(dir, "placeholder.png")
	covers := filepath.Join(dir, "covers")
	cache, err := artwork.New(cfg, covers, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cache, covers
}

// seedFiles writes n files of the given size with strictly increasing
// last-access times, oldest first.
func seedFiles(t *testing.T, dir string, n int, size int) []string {
	t.Helper()
	base := time.Now().Add(-time.Duration(n+1) * time.Minute)
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("game-%03d.png", i))
		testsupport.WriteFile(t, name, int64(size))
		stamp := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(name, stamp, stamp); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	return names
}

func listCovers(t *testing.T, dir string) map[string]bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		present[filepath.Join(dir, entry.Name())] = true
	}
	return present
}

func TestSweepEnforcesCountBudget(t *testing.T) {
	cache, covers := newSweepCache(t, config.Artwork{
		MinImageBytes: 1,
		MaxFiles:      210,
		MaxCacheMiB:   1024,
	})
	names := seedFiles(t, covers, 230, 8)

	cache.Sweep()

	present := listCovers(t, covers)
	// 210 ceiling sweeps down to 10 survivors, the most recently used.
	if len(present) != 10 {
		t.Fatalf("%d files survive, want 10", len(present))
	}
	for _, name := range names[len(names)-10:] {
		if !present[name] {
			t.Fatalf("newest file %s was evicted", name)
		}
	}
}

func TestSweepEnforcesByteBudget(t *testing.T) {
	cache, covers := newSweepCache(t, config.Artwork{
		MinImageBytes: 1,
		MaxFiles:      100000,
		MaxCacheMiB:   1,
	})
	names := seedFiles(t, covers, 6, 256<<10)

	cache.Sweep()

	present := listCovers(t, covers)
	// 1.5 MiB of covers against a 1 MiB ceiling; eviction stops once
	// usage drops under 80% of the ceiling, so the oldest three go.
	if len(present) != 3 {
		t.Fatalf("%d files survive, want 3", len(present))
	}
	for _, name := range names[:3] {
		if present[name] {
			t.Fatalf("oldest file %s survived", name)
		}
	}
}

func TestSweepUnderBudgetIsNoop(t *testing.T) {
	cache, covers := newSweepCache(t, config.Artwork{
		MinImageBytes: 1,
		MaxFiles:      500,
		MaxCacheMiB:   64,
	})
	seedFiles(t, covers, 5, 16)

	cache.Sweep()

	if got := len(listCovers(t, covers)); got != 5 {
		t.Fatalf("%d files after sweep, want 5", got)
	}
}
