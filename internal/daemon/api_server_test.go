package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gamedex/internal/artwork"
	"gamedex/internal/catalog"
	"gamedex/internal/daemon"
	"gamedex/internal/logging"
	"gamedex/internal/render"
	"gamedex/internal/scanner"
	"gamedex/internal/testsupport"
)

func startAPIDaemon(t *testing.T, lines []string) (*daemon.Daemon, string) {
	t.Helper()
	d, _ := newTestDaemon(t, lines)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, "http://" + d.APIAddr()
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func scanLines(games string) []string {
	return []string{
		fmt.Sprintf(`PROGRESS:{"type":"steam","platform":"Steam","percentage":50,"games_found":2,"games":%s}`, games),
		`PROGRESS:{"type":"Terminé","percentage":100,"games_found":2,"games":[]}`,
	}
}

func waitForScan(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var status daemon.Status
		getJSON(t, base+"/api/status", &status)
		if status.Scan.State.Terminal() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scan did not finish")
}

func TestStatusEndpoint(t *testing.T) {
	_, base := startAPIDaemon(t, nil)

	var status daemon.Status
	if code := getJSON(t, base+"/api/status", &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if !status.Running || status.PID == 0 {
		t.Fatalf("status = %+v", status)
	}
}

func TestScanAndCatalogEndpoints(t *testing.T) {
	games := `[{"appid":"400","name":"Portal","platform":"steam"},{"name":"Zelda","platform":"gog"}]`
	_, base := startAPIDaemon(t, scanLines(games))

	var scan daemon.ScanResponse
	if code := postJSON(t, base+"/api/scan", nil, &scan); code != http.StatusAccepted {
		t.Fatalf("scan status code = %d", code)
	}
	if scan.SessionID == "" {
		t.Fatal("expected session id")
	}
	waitForScan(t, base)

	var all daemon.CatalogResponse
	getJSON(t, base+"/api/catalog", &all)
	if len(all.Entries) != 2 {
		t.Fatalf("catalog entries = %d, want 2", len(all.Entries))
	}
	// Ordered ascending by default.
	if all.Entries[0].Name != "Portal" || all.Entries[1].Name != "Zelda" {
		t.Fatalf("order = %v", all.Entries)
	}

	var filtered daemon.CatalogResponse
	getJSON(t, base+"/api/catalog?platform=steam", &filtered)
	if len(filtered.Entries) != 1 || filtered.Entries[0].Name != "Portal" {
		t.Fatalf("filtered = %v", filtered.Entries)
	}

	var searched daemon.CatalogResponse
	getJSON(t, base+"/api/catalog?search=zel&order=desc", &searched)
	if len(searched.Entries) != 1 || searched.Entries[0].Name != "Zelda" {
		t.Fatalf("searched = %v", searched.Entries)
	}
}

func TestScanConflictWhileRunning(t *testing.T) {
	games := `[{"appid":"400","name":"Portal","platform":"steam"}]`
	_, base := startAPIDaemon(t, scanLines(games))

	if code := postJSON(t, base+"/api/scan", nil, nil); code != http.StatusAccepted {
		t.Fatalf("first scan code = %d", code)
	}
	waitForScan(t, base)

	// A finished session allows a restart rather than a conflict.
	if code := postJSON(t, base+"/api/scan", nil, nil); code != http.StatusAccepted {
		t.Fatalf("restart code = %d", code)
	}
}

// blockingExecutor parks the scan session until released.
type blockingExecutor struct {
	release chan struct{}
}

func (b *blockingExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestScanConflictReturns409(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLibrary(t, cfg)
	release := make(chan struct{})
	merger := catalog.NewMerger(logging.NewNop())
	supervisor := scanner.New(cfg.Scanner, merger, nil, logging.NewNop(),
		scanner.WithExecutor(&blockingExecutor{release: release}),
		scanner.WithCandidates([]scanner.Candidate{alwaysCandidate("/bin/scanner")}))
	d, err := daemon.New(cfg, daemon.Deps{
		Merger:     merger,
		Supervisor: supervisor,
		Library:    store,
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		close(release)
		d.Stop()
	})
	base := "http://" + d.APIAddr()

	if code := postJSON(t, base+"/api/scan", nil, nil); code != http.StatusAccepted {
		t.Fatalf("first scan code = %d", code)
	}
	waitFor409 := func() bool {
		return postJSON(t, base+"/api/scan", nil, nil) == http.StatusConflict
	}
	deadline := time.Now().Add(3 * time.Second)
	for !waitFor409() {
		if time.Now().After(deadline) {
			t.Fatal("second scan never conflicted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	games := `[{"appid":"400","name":"Portal","platform":"steam"},{"name":"Zelda","platform":"gog"}]`
	_, base := startAPIDaemon(t, scanLines(games))
	postJSON(t, base+"/api/scan", nil, nil)
	waitForScan(t, base)

	req := map[string]any{"appid": "400", "name": "Portal", "platform": "steam", "favorite": true}
	if code := postJSON(t, base+"/api/favorites", req, nil); code != http.StatusOK {
		t.Fatalf("set favorite code = %d", code)
	}

	var favorites daemon.FavoritesResponse
	getJSON(t, base+"/api/favorites", &favorites)
	if len(favorites.Favorites) != 1 || favorites.Favorites[0].Name != "Portal" {
		t.Fatalf("favorites = %+v", favorites.Favorites)
	}

	var filtered daemon.CatalogResponse
	getJSON(t, base+"/api/catalog?favorites=1", &filtered)
	if len(filtered.Entries) != 1 || filtered.Entries[0].Name != "Portal" {
		t.Fatalf("favorite catalog = %v", filtered.Entries)
	}

	// Missing name is rejected.
	if code := postJSON(t, base+"/api/favorites", map[string]any{"favorite": true}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad favorite code = %d", code)
	}
}

func TestLaunchEndpoints(t *testing.T) {
	_, base := startAPIDaemon(t, nil)

	entry := map[string]any{"appid": "400", "name": "Portal", "platform": "steam"}
	if code := postJSON(t, base+"/api/launches", entry, nil); code != http.StatusAccepted {
		t.Fatalf("record launch code = %d", code)
	}

	var launches daemon.LaunchesResponse
	getJSON(t, base+"/api/launches?limit=5", &launches)
	if len(launches.Launches) != 1 || launches.Launches[0].Name != "Portal" {
		t.Fatalf("launches = %+v", launches.Launches)
	}
}

// countingSink tallies list deliveries so tests can observe a pass.
type countingSink struct {
	mu    sync.Mutex
	lists int
}

func (s *countingSink) RenderList([]catalog.Entry) {
	s.mu.Lock()
	s.lists++
	s.mu.Unlock()
}

func (s *countingSink) RenderEntry(catalog.Entry, string) {}

func (s *countingSink) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

func TestRenderEndpointSchedulesPass(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.DebounceMillis = 5
	cfg.Render.BatchPauseMillis = 1
	store := testsupport.MustOpenLibrary(t, cfg)
	merger := catalog.NewMerger(logging.NewNop())
	merger.Merge([]catalog.Entry{{Name: "Portal", Platform: "steam", Identity: "400"}})
	supervisor := scanner.New(cfg.Scanner, merger, nil, logging.NewNop(),
		scanner.WithExecutor(&scriptedExecutor{}),
		scanner.WithCandidates([]scanner.Candidate{alwaysCandidate("/bin/scanner")}))
	images, err := artwork.New(cfg.Artwork, filepath.Join(cfg.Paths.CacheDir, "covers"), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("artwork.New: %v", err)
	}
	sink := &countingSink{}
	scheduler := render.New(cfg.Render, merger, images, sink, logging.NewNop())
	d, err := daemon.New(cfg, daemon.Deps{
		Merger:     merger,
		Supervisor: supervisor,
		Scheduler:  scheduler,
		Images:     images,
		Library:    store,
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)
	base := "http://" + d.APIAddr()

	if code := getJSON(t, base+"/api/render", nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("GET render code = %d", code)
	}
	body := daemon.RenderRequest{Platform: "steam", Order: "desc"}
	if code := postJSON(t, base+"/api/render", body, nil); code != http.StatusAccepted {
		t.Fatalf("render code = %d", code)
	}

	deadline := time.Now().Add(3 * time.Second)
	for sink.listCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("render pass never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, base := startAPIDaemon(t, nil)
	if code := postJSON(t, base+"/api/status", nil, nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("code = %d", code)
	}
	if code := getJSON(t, base+"/api/scan", nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("code = %d", code)
	}
}
