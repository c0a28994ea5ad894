package daemon_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gamedex/internal/artwork"
	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/daemon"
	"gamedex/internal/library"
	"gamedex/internal/logging"
	"gamedex/internal/render"
	"gamedex/internal/scanner"
	"gamedex/internal/testsupport"
)

// scriptedExecutor emits a fixed set of scanner protocol lines and exits
// cleanly.
type scriptedExecutor struct {
	lines []string
}

func (s *scriptedExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	for _, line := range s.lines {
		onStdout(line)
	}
	return nil
}

func alwaysCandidate(binary string) scanner.Candidate {
	return func() (scanner.Invocation, bool) {
		return scanner.Invocation{Label: "test", Binary: binary}, true
	}
}

// nopSink discards render deliveries for tests that only exercise the
// daemon surface.
type nopSink struct{}

func (nopSink) RenderList([]catalog.Entry)        {}
func (nopSink) RenderEntry(catalog.Entry, string) {}

func newTestDaemon(t *testing.T, lines []string) (*daemon.Daemon, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Render.DebounceMillis = 5
	cfg.Render.BatchPauseMillis = 1
	store := testsupport.MustOpenLibrary(t, cfg)

	merger := catalog.NewMerger(logging.NewNop())
	supervisor := scanner.New(cfg.Scanner, merger, nil, logging.NewNop(),
		scanner.WithExecutor(&scriptedExecutor{lines: lines}),
		scanner.WithCandidates([]scanner.Candidate{alwaysCandidate("/bin/scanner")}))

	images, err := artwork.New(cfg.Artwork, filepath.Join(cfg.Paths.CacheDir, "covers"), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("artwork.New: %v", err)
	}
	scheduler := render.New(cfg.Render, merger, images, nopSink{}, logging.NewNop())

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
	return d, cfg
}

func TestDaemonStartStop(t *testing.T) {
	d, cfg := newTestDaemon(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	status := d.Status()
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path = %q, want %q", status.LockFilePath, cfg.LockPath())
	}
	if d.APIAddr() == "" {
		t.Fatal("expected bound API address")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped daemon")
	}
	// Stopping twice is safe.
	d.Stop()
}

func TestDaemonRejectsSecondInstance(t *testing.T) {
	first, cfg := newTestDaemon(t, nil)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	store, err := library.Open(cfg.LibraryDBPath())
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	defer store.Close()
	merger := catalog.NewMerger(logging.NewNop())
	supervisor := scanner.New(cfg.Scanner, merger, nil, logging.NewNop(),
		scanner.WithExecutor(&scriptedExecutor{}),
		scanner.WithCandidates([]scanner.Candidate{alwaysCandidate("/bin/scanner")}))
	second, err := daemon.New(cfg, daemon.Deps{
		Merger:     merger,
		Supervisor: supervisor,
		Library:    store,
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail on lock")
	}
}

func TestTriggerScanMergesResults(t *testing.T) {
	lines := []string{
		`PROGRESS:{"type":"steam","platform":"Steam","percentage":50,"games_found":1,"games":[{"appid":"400","name":"Portal","platform":"steam"}]}`,
		`PROGRESS:{"type":"Terminé","percentage":100,"games_found":1,"games":[]}`,
	}
	d, _ := newTestDaemon(t, lines)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	sessionID, err := d.TriggerScan()
	if err != nil {
		t.Fatalf("TriggerScan: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if d.Status().Scan.State.Terminal() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	status := d.Status()
	if status.Scan.State != scanner.StateSucceeded {
		t.Fatalf("scan state = %s, want succeeded (%s)", status.Scan.State, status.Scan.Reason)
	}
	if status.CatalogEntries != 1 {
		t.Fatalf("catalog entries = %d, want 1", status.CatalogEntries)
	}
}
