package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"gamedex/internal/artwork"
	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/library"
	"gamedex/internal/logging"
	"gamedex/internal/notifications"
	"gamedex/internal/render"
	"gamedex/internal/scanner"
)

// Deps bundles the subsystems the daemon coordinates.
type Deps struct {
	Merger     *catalog.Merger
	Supervisor *scanner.Supervisor
	Scheduler  *render.Scheduler
	Images     *artwork.Cache
	Library    *library.Store
	Notifier   notifications.Service
}

// Daemon coordinates background services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Deps

	lockPath string
	lock     *flock.Flock

	api    *apiServer
	drives *driveMonitor

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool           `json:"running"`
	PID            int            `json:"pid"`
	StartedAt      time.Time      `json:"started_at,omitempty"`
	CatalogEntries int            `json:"catalog_entries"`
	Scan           scanner.Status `json:"scan"`
	LibraryDBPath  string         `json:"library_db_path"`
	LockFilePath   string         `json:"lock_file_path"`
	CacheDir       string         `json:"cache_dir"`
	CachedCovers   int            `json:"cached_covers"`
	CacheUsedMiB   int64          `json:"cache_used_mib"`
	CacheFreeMiB   int64          `json:"cache_free_mib"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || deps.Merger == nil || deps.Supervisor == nil || deps.Library == nil {
		return nil, errors.New("daemon requires config, merger, supervisor, and library store")
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(config.Notifications{})
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		deps:     deps,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	d.drives = newDriveMonitor(logger, d.rescan)
	return d, nil
}

// Start acquires the daemon lock and launches the API server and drive
// monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gamedex daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}
	if err := d.drives.Start(d.ctx); err != nil {
		d.logger.Warn("drive monitor unavailable", logging.Error(err))
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("gamedex daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.drives.Stop()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("gamedex daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.deps.Library.Close()
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status() Status {
	status := Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		StartedAt:      d.startedAt,
		CatalogEntries: d.deps.Merger.Len(),
		Scan:           d.deps.Supervisor.Status(),
		LibraryDBPath:  d.deps.Library.Path(),
		LockFilePath:   d.lockPath,
		CacheDir:       d.cfg.Paths.CacheDir,
		CacheFreeMiB:   cacheFreeMiB(d.cfg.Paths.CacheDir),
	}
	if d.deps.Images != nil {
		status.CachedCovers, status.CacheUsedMiB = d.coverUsage()
	}
	return status
}

func (d *Daemon) coverUsage() (int, int64) {
	files, usedBytes := d.deps.Images.Usage()
	return files, usedBytes / (1 << 20)
}

// APIAddr returns the bound API listen address, empty until Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// TriggerScan starts a scan session. The session is bound to the
// daemon's lifetime, not the caller's request.
func (d *Daemon) TriggerScan() (string, error) {
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	sessionID, err := d.deps.Supervisor.Start(ctx)
	if err != nil {
		return "", err
	}
	go func() {
		if err := d.deps.Notifier.NotifyScanStarted(context.Background()); err != nil {
			d.logger.Warn("scan-started notification failed", logging.Error(err))
		}
	}()
	return sessionID, nil
}

// RequestRender applies an optional view selection and schedules a
// debounced render pass.
func (d *Daemon) RequestRender(opts *render.Options) error {
	if d.deps.Scheduler == nil {
		return errors.New("render scheduler not configured")
	}
	if opts != nil {
		d.deps.Scheduler.Update(*opts)
	}
	d.deps.Scheduler.RequestRender()
	return nil
}

func (d *Daemon) rescan(device string) {
	sessionID, err := d.TriggerScan()
	if err != nil {
		if errors.Is(err, scanner.ErrAlreadyRunning) {
			d.logger.Debug("hotplug rescan skipped, scan already running",
				logging.String("device", device))
			return
		}
		d.logger.Warn("hotplug rescan failed",
			logging.String("device", device), logging.Error(err))
		return
	}
	d.logger.Info("rescan triggered by storage hotplug",
		logging.String("device", device),
		logging.String(logging.FieldSessionID, sessionID))
}
