package render

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/logging"
)

// Sink receives render output. RenderList delivers the full ordered
// view once per pass; RenderEntry follows with each entry's resolved
// cover image as it becomes available.
type Sink interface {
	RenderList(entries []catalog.Entry)
	RenderEntry(entry catalog.Entry, imagePath string)
}

// ImageResolver resolves a local cover path for an entry. Satisfied by
// the artwork cache.
type ImageResolver interface {
	Resolve(ctx context.Context, entry catalog.Entry) string
}

// Snapshotter provides the current catalog state. Satisfied by the
// catalog merger.
type Snapshotter interface {
	Snapshot() []catalog.Entry
}

// Scheduler debounces render requests and runs at most one live pass.
// Every request bumps a generation counter; a pass checks its captured
// generation before each delivery step and stops silently once a newer
// request exists.
type Scheduler struct {
	catalog  Snapshotter
	images   ImageResolver
	sink     Sink
	cmp      *comparator
	favorite func(catalog.Entry) bool
	logger   *slog.Logger

	debounce   time.Duration
	batchSize  int
	batchPause time.Duration

	generation atomic.Int64

	mu    sync.Mutex
	opts  Options
	timer *time.Timer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFavorites installs the predicate backing Options.FavoritesOnly.
func WithFavorites(favorite func(catalog.Entry) bool) Option {
	return func(s *Scheduler) {
		s.favorite = favorite
	}
}

func New(cfg config.Render, snap Snapshotter, images ImageResolver, sink Sink, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		catalog:    snap,
		images:     images,
		sink:       sink,
		cmp:        newComparator(cfg.Locale),
		logger:     logging.NewComponentLogger(logger, "render"),
		debounce:   time.Duration(cfg.DebounceMillis) * time.Millisecond,
		batchSize:  cfg.BatchSize,
		batchPause: time.Duration(cfg.BatchPauseMillis) * time.Millisecond,
	}
	if s.batchSize <= 0 {
		s.batchSize = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update replaces the filter/sort selection and schedules a refresh.
func (s *Scheduler) Update(opts Options) {
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
	s.RequestRender()
}

// Options returns the current filter/sort selection.
func (s *Scheduler) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// RequestRender schedules a render pass. Calls arriving inside the
// debounce window collapse into one pass using the selection in effect
// when the window closes.
func (s *Scheduler) RequestRender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	gen := s.generation.Add(1)
	s.mu.Lock()
	opts := s.opts
	s.mu.Unlock()
	go s.pass(gen, opts)
}

func (s *Scheduler) stale(gen int64) bool {
	return s.generation.Load() != gen
}

func (s *Scheduler) pass(gen int64, opts Options) {
	entries := buildView(s.catalog.Snapshot(), opts, s.cmp, s.favorite)
	if s.stale(gen) {
		return
	}
	s.sink.RenderList(entries)
	s.logger.Debug("render pass started",
		logging.Int64("generation", gen),
		logging.Int("entries", len(entries)))

	for start := 0; start < len(entries); start += s.batchSize {
		if s.stale(gen) {
			s.logger.Debug("render pass superseded", logging.Int64("generation", gen))
			return
		}
		end := start + s.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		// Resolve the whole group concurrently, then deliver in view
		// order. In-flight fetches of a superseded pass finish on
		// their own; their results are dropped below.
		paths := make([]string, len(batch))
		var wg sync.WaitGroup
		for i, entry := range batch {
			wg.Add(1)
			go func(i int, entry catalog.Entry) {
				defer wg.Done()
				paths[i] = s.images.Resolve(context.Background(), entry)
			}(i, entry)
		}
		wg.Wait()

		for i, entry := range batch {
			if s.stale(gen) {
				return
			}
			s.sink.RenderEntry(entry, paths[i])
		}

		if end < len(entries) && s.batchPause > 0 {
			time.Sleep(s.batchPause)
		}
	}
	s.logger.Debug("render pass completed", logging.Int64("generation", gen))
}
