package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gamedex/internal/artwork"
	"gamedex/internal/artwork/steamgrid"
	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/daemon"
	"gamedex/internal/library"
	"gamedex/internal/logging"
	"gamedex/internal/notifications"
	"gamedex/internal/render"
	"gamedex/internal/scanner"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogPath()},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := library.Open(cfg.LibraryDBPath())
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return
	}

	merger := catalog.NewMerger(logger)
	seedCatalog(cfg, merger, logger)

	images, err := newImageCache(cfg, logger)
	if err != nil {
		logger.Error("init image cache", logging.Error(err))
		return
	}
	images.Sweep()

	notifier := notifications.NewService(cfg.Notifications)
	favorite := func(entry catalog.Entry) bool {
		ok, err := store.IsFavorite(context.Background(), entry)
		return err == nil && ok
	}
	scheduler := render.New(cfg.Render, merger, images, coverSink{logger: logger}, logger,
		render.WithFavorites(favorite))

	supervisor := scanner.New(cfg.Scanner, merger, images, logger,
		scanner.WithProgressFunc(func(scanner.Progress) {
			scheduler.RequestRender()
		}),
		scanner.WithCompletionFunc(func(status scanner.Status) {
			onScanFinished(status, notifier, logger)
			scheduler.RequestRender()
			images.Sweep()
		}))

	d, err := daemon.New(cfg, daemon.Deps{
		Merger:     merger,
		Supervisor: supervisor,
		Scheduler:  scheduler,
		Images:     images,
		Library:    store,
		Notifier:   notifier,
	}, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("gamedexd shutting down")
}

// seedCatalog cold-loads the catalog the scanner persisted on a prior
// run so the API serves entries before the first scan completes.
func seedCatalog(cfg *config.Config, merger *catalog.Merger, logger *slog.Logger) {
	persisted, err := catalog.LoadPersisted(cfg.Paths.CatalogPath)
	if err != nil {
		logger.Warn("load persisted catalog", logging.Error(err))
		return
	}
	if len(persisted) == 0 {
		return
	}
	accepted := merger.Merge(persisted)
	logger.Info("catalog seeded from disk",
		logging.Int("persisted", len(persisted)),
		logging.Int("accepted", len(accepted)))
}

func newImageCache(cfg *config.Config, logger *slog.Logger) (*artwork.Cache, error) {
	var resolver artwork.Resolver
	if cfg.Artwork.APIKey != "" {
		client, err := steamgrid.New(cfg.Artwork.APIKey, cfg.Artwork.BaseURL)
		if err != nil {
			return nil, err
		}
		resolver = client
	} else {
		logger.Warn("no steamgriddb api key configured, covers fall back to the placeholder")
	}
	dir := filepath.Join(cfg.Paths.CacheDir, "covers")
	return artwork.New(cfg.Artwork, dir, resolver, logger)
}

func onScanFinished(status scanner.Status, notifier notifications.Service, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch status.State {
	case scanner.StateSucceeded:
		err = notifier.NotifyScanCompleted(ctx, status.Merged, status.FinishedAt.Sub(status.StartedAt))
	default:
		err = notifier.NotifyScanFailed(ctx, status.Reason)
	}
	if err != nil {
		logger.Warn("scan notification failed", logging.Error(err))
	}
}

// coverSink is the daemon-side render sink. The daemon has no UI of
// its own; delivering a pass here keeps cover art warm for the entries
// a client is about to show.
type coverSink struct {
	logger *slog.Logger
}

func (s coverSink) RenderList(entries []catalog.Entry) {
	s.logger.Debug("view refreshed", logging.Int("entries", len(entries)))
}

func (s coverSink) RenderEntry(entry catalog.Entry, imagePath string) {
	s.logger.Debug("cover ready",
		logging.String(logging.FieldEntry, entry.Key()),
		logging.String("image", imagePath))
}
