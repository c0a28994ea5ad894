package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateArtwork(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if len(c.Scanner.BinaryPaths) == 0 && strings.TrimSpace(c.Scanner.ScriptPath) == "" {
		return errors.New("scanner needs binary_paths or script_path; nothing to launch otherwise")
	}
	if strings.TrimSpace(c.Scanner.ScriptPath) != "" && len(c.Scanner.Runtimes) == 0 {
		return errors.New("scanner.runtimes must list at least one runtime when script_path is set")
	}
	return nil
}

func (c *Config) validateArtwork() error {
	if c.Artwork.MaxFiles <= 200 {
		return fmt.Errorf("artwork.max_files must exceed the sweep floor of 200, got %d", c.Artwork.MaxFiles)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.BatchSize > 64 {
		return fmt.Errorf("render.batch_size %d is unreasonably large; keep it at or below 64", c.Render.BatchSize)
	}
	return nil
}
