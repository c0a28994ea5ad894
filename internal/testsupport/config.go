package testsupport

import (
	"path/filepath"
	"testing"

	"gamedex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CatalogPath = filepath.Join(base, "data", "games_list.json")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Scanner.BinaryPaths = []string{filepath.Join(base, "scanner")}
	cfgVal.Artwork.Placeholder = filepath.Join(base, "cache", "placeholder.png")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithScannerBinary overrides the scanner candidate paths.
func WithScannerBinary(paths ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.BinaryPaths = paths
	}
}
