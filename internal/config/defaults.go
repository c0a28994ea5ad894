package config

const (
	defaultDataDir     = "~/.local/share/gamedex"
	defaultCacheDir    = "~/.cache/gamedex/covers"
	defaultLogDir      = "~/.local/share/gamedex/logs"
	defaultCatalogPath = "~/.local/share/gamedex/catalog.json"
	defaultAPIBind     = "127.0.0.1:7511"

	defaultScannerScript  = "~/.local/share/gamedex/scanner/unified_scanner.py"
	defaultScannerTimeout = 180

	defaultArtworkBaseURL       = "https://www.steamgriddb.com/api/v2"
	defaultArtworkFetchTimeout  = 10
	defaultArtworkMinImageBytes = 1024
	defaultArtworkMaxFiles      = 1000
	defaultArtworkMaxCacheMiB   = 512

	defaultRenderDebounceMillis   = 150
	defaultRenderBatchSize        = 8
	defaultRenderBatchPauseMillis = 50
	defaultRenderLocale           = "en"

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			CacheDir:    defaultCacheDir,
			LogDir:      defaultLogDir,
			CatalogPath: defaultCatalogPath,
			APIBind:     defaultAPIBind,
		},
		Scanner: Scanner{
			BinaryPaths: []string{
				"~/.local/share/gamedex/scanner/unified_scanner",
				"/usr/local/libexec/gamedex/unified_scanner",
			},
			ScriptPath: defaultScannerScript,
			Runtimes:   []string{"python3", "python"},
			Timeout:    defaultScannerTimeout,
		},
		Artwork: Artwork{
			BaseURL:       defaultArtworkBaseURL,
			FetchTimeout:  defaultArtworkFetchTimeout,
			MinImageBytes: defaultArtworkMinImageBytes,
			MaxFiles:      defaultArtworkMaxFiles,
			MaxCacheMiB:   defaultArtworkMaxCacheMiB,
		},
		Render: Render{
			DebounceMillis:   defaultRenderDebounceMillis,
			BatchSize:        defaultRenderBatchSize,
			BatchPauseMillis: defaultRenderBatchPauseMillis,
			Locale:           defaultRenderLocale,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Scan:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
