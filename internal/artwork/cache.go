package artwork

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamedex/internal/artwork/steamgrid"
	"gamedex/internal/catalog"
	"gamedex/internal/config"
	"gamedex/internal/fileutil"
	"gamedex/internal/logging"
	"gamedex/internal/textutil"
)

//go:embed placeholder.png
var placeholderPNG []byte

// errNotFound marks a lookup that returned zero results. Retrying
// cannot change "not found", so it short-circuits the retry loop.
var errNotFound = errors.New("no artwork found")

const (
	fetchRetries = 2
	retryBackoff = time.Second
	// sweepFloor is how far below the file ceiling a count-triggered
	// sweep evicts.
	sweepFloor = 200
	// byteTarget is the fraction of the byte ceiling a byte-triggered
	// sweep reduces to.
	byteTarget = 0.8
)

// Resolver is the remote lookup surface the cache fetches through.
type Resolver interface {
	SearchByName(ctx context.Context, name string) ([]steamgrid.SearchResult, error)
	Grids(ctx context.Context, gameID int64) ([]steamgrid.Grid, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// Cache resolves entries to locally cached cover images.
type Cache struct {
	dir         string
	placeholder string
	minBytes    int64
	maxFiles    int
	maxBytes    int64
	timeout     time.Duration
	backoff     time.Duration
	resolver    Resolver
	logger      *slog.Logger
}

// Option configures the cache.
type Option func(*Cache)

// WithBackoff overrides the retry backoff (primarily for tests).
func WithBackoff(backoff time.Duration) Option {
	return func(c *Cache) {
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// New constructs a cover cache. A nil resolver is valid and turns every
// miss into the placeholder; this is how gamedex runs without an API key.
func New(cfg config.Artwork, dir string, resolver Resolver, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("artwork cache directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &Cache{
		dir:         dir,
		placeholder: cfg.Placeholder,
		minBytes:    cfg.MinImageBytes,
		maxFiles:    cfg.MaxFiles,
		maxBytes:    cfg.MaxCacheMiB * 1024 * 1024,
		timeout:     time.Duration(cfg.FetchTimeout) * time.Second,
		backoff:     retryBackoff,
		resolver:    resolver,
		logger:      logging.NewComponentLogger(logger, "artwork"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.ensurePlaceholder(); err != nil {
		return nil, err
	}
	return c, nil
}

// Placeholder returns the fixed fallback image path.
func (c *Cache) Placeholder() string {
	return c.placeholder
}

// Resolve returns a local image path for the entry. It never fails
// outward; on any error or timeout it returns the placeholder.
func (c *Cache) Resolve(ctx context.Context, entry catalog.Entry) string {
	path := c.pathFor(entry)

	if size := fileutil.FileSize(path); size >= c.minBytes {
		now := time.Now()
		if err := os.Chtimes(path, now, now); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Debug("touch cache file", logging.Error(err))
		}
		return path
	} else if size > 0 {
		// Undersized files are never served; delete and refetch.
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("remove corrupt cache file", logging.String("path", path), logging.Error(err))
		}
	}

	if c.resolver == nil {
		return c.placeholder
	}

	opCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	for attempt := 0; ; attempt++ {
		data, err := c.fetch(opCtx, entry)
		if err == nil {
			if int64(len(data)) < c.minBytes {
				c.logger.Warn("fetched image below viable size",
					logging.String(logging.FieldEntry, entry.Name),
					logging.Int("bytes", len(data)))
				return c.placeholder
			}
			if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
				c.logger.Warn("write cache file", logging.String("path", path), logging.Error(err))
				return c.placeholder
			}
			return path
		}

		if errors.Is(err, errNotFound) || opCtx.Err() != nil || attempt >= fetchRetries {
			c.logger.Debug("cover fetch gave up",
				logging.String(logging.FieldEntry, entry.Name),
				logging.Int("attempts", attempt+1),
				logging.Error(err))
			return c.placeholder
		}

		select {
		case <-opCtx.Done():
			return c.placeholder
		case <-time.After(c.backoff):
		}
	}
}

// Warm pre-fetches the cover for an entry, ignoring the result. It
// satisfies scanner.Warmer.
func (c *Cache) Warm(ctx context.Context, entry catalog.Entry) {
	_ = c.Resolve(ctx, entry)
}

// fetch performs the two-step remote resolution and the download.
func (c *Cache) fetch(ctx context.Context, entry catalog.Entry) ([]byte, error) {
	results, err := c.resolver.SearchByName(ctx, entry.Name)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return nil, errNotFound
	}

	grids, err := c.resolver.Grids(ctx, results[0].ID)
	if err != nil {
		return nil, fmt.Errorf("grids: %w", err)
	}
	if len(grids) == 0 {
		return nil, errNotFound
	}

	data, err := c.resolver.Download(ctx, grids[0].URL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return data, nil
}

// pathFor derives the deterministic cache location for an entry.
func (c *Cache) pathFor(entry catalog.Entry) string {
	return filepath.Join(c.dir, textutil.SanitizeToken(entry.Key())+".png")
}

// ensurePlaceholder materializes the embedded fallback image so the
// placeholder path always points at a real file.
func (c *Cache) ensurePlaceholder() error {
	if fileutil.FileSize(c.placeholder) > 0 {
		return nil
	}
	if err := fileutil.WriteFileAtomic(c.placeholder, placeholderPNG, 0o644); err != nil {
		return fmt.Errorf("write placeholder image: %w", err)
	}
	return nil
}
