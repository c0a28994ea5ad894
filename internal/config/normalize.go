package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeScanner(); err != nil {
		return err
	}
	if err := c.normalizeArtwork(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeScanner() error {
	expanded := make([]string, 0, len(c.Scanner.BinaryPaths))
	for i, candidate := range c.Scanner.BinaryPaths {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		path, err := expandPath(candidate)
		if err != nil {
			return fmt.Errorf("scanner.binary_paths[%d]: %w", i, err)
		}
		expanded = append(expanded, path)
	}
	c.Scanner.BinaryPaths = expanded

	if strings.TrimSpace(c.Scanner.ScriptPath) != "" {
		path, err := expandPath(c.Scanner.ScriptPath)
		if err != nil {
			return fmt.Errorf("scanner.script_path: %w", err)
		}
		c.Scanner.ScriptPath = path
	}

	runtimes := make([]string, 0, len(c.Scanner.Runtimes))
	for _, runtime := range c.Scanner.Runtimes {
		runtime = strings.TrimSpace(runtime)
		if runtime != "" {
			runtimes = append(runtimes, runtime)
		}
	}
	c.Scanner.Runtimes = runtimes

	if c.Scanner.Timeout <= 0 {
		c.Scanner.Timeout = defaultScannerTimeout
	}
	return nil
}

func (c *Config) normalizeArtwork() error {
	c.Artwork.APIKey = strings.TrimSpace(c.Artwork.APIKey)
	c.Artwork.BaseURL = strings.TrimRight(strings.TrimSpace(c.Artwork.BaseURL), "/")
	if c.Artwork.BaseURL == "" {
		c.Artwork.BaseURL = defaultArtworkBaseURL
	}
	if strings.TrimSpace(c.Artwork.Placeholder) == "" {
		c.Artwork.Placeholder = filepath.Join(c.Paths.CacheDir, "placeholder.png")
	} else {
		path, err := expandPath(c.Artwork.Placeholder)
		if err != nil {
			return fmt.Errorf("artwork.placeholder: %w", err)
		}
		c.Artwork.Placeholder = path
	}
	if c.Artwork.FetchTimeout <= 0 {
		c.Artwork.FetchTimeout = defaultArtworkFetchTimeout
	}
	if c.Artwork.MinImageBytes <= 0 {
		c.Artwork.MinImageBytes = defaultArtworkMinImageBytes
	}
	if c.Artwork.MaxFiles <= 0 {
		c.Artwork.MaxFiles = defaultArtworkMaxFiles
	}
	if c.Artwork.MaxCacheMiB <= 0 {
		c.Artwork.MaxCacheMiB = defaultArtworkMaxCacheMiB
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.DebounceMillis <= 0 {
		c.Render.DebounceMillis = defaultRenderDebounceMillis
	}
	if c.Render.BatchSize <= 0 {
		c.Render.BatchSize = defaultRenderBatchSize
	}
	if c.Render.BatchPauseMillis < 0 {
		c.Render.BatchPauseMillis = defaultRenderBatchPauseMillis
	}
	if strings.TrimSpace(c.Render.Locale) == "" {
		c.Render.Locale = defaultRenderLocale
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
