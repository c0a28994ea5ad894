package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"gamedex/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; stale databases are rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages library persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Favorite is one pinned catalog entry.
type Favorite struct {
	Key       string
	Name      string
	Platform  string
	CreatedAt time.Time
}

// Launch is one recorded launch event.
type Launch struct {
	Key        string
	Name       string
	Platform   string
	LaunchedAt time.Time
}

// Open initializes or connects to the library database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SetFavorite pins or unpins an entry. Pinning an already-pinned entry
// is a no-op.
func (s *Store) SetFavorite(ctx context.Context, entry catalog.Entry, favorite bool) error {
	if favorite {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO favorites (entry_key, name, platform, created_at)
             VALUES (?, ?, ?, ?)
             ON CONFLICT(entry_key) DO NOTHING`,
			entry.Key(), entry.Name, entry.Platform, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert favorite: %w", err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE entry_key = ?", entry.Key()); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether an entry is pinned.
func (s *Store) IsFavorite(ctx context.Context, entry catalog.Entry) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM favorites WHERE entry_key = ?", entry.Key()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query favorite: %w", err)
	}
	return count > 0, nil
}

// FavoriteKeys returns the set of pinned entry keys, for filtering a
// whole view in one query.
func (s *Store) FavoriteKeys(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT entry_key FROM favorites")
	if err != nil {
		return nil, fmt.Errorf("query favorite keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan favorite key: %w", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite keys: %w", err)
	}
	return keys, nil
}

// ListFavorites returns all pinned entries ordered by name.
func (s *Store) ListFavorites(ctx context.Context) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT entry_key, name, platform, created_at FROM favorites ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var fav Favorite
		var createdAt string
		if err := rows.Scan(&fav.Key, &fav.Name, &fav.Platform, &createdAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		fav.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

// RecordLaunch appends a launch event for an entry.
func (s *Store) RecordLaunch(ctx context.Context, entry catalog.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO launches (entry_key, name, platform, launched_at) VALUES (?, ?, ?, ?)`,
		entry.Key(), entry.Name, entry.Platform, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record launch: %w", err)
	}
	return nil
}

// RecentLaunches returns the newest launch events, most recent first.
func (s *Store) RecentLaunches(ctx context.Context, limit int) ([]Launch, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT entry_key, name, platform, launched_at FROM launches ORDER BY launched_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close()

	var launches []Launch
	for rows.Next() {
		var launch Launch
		var launchedAt string
		if err := rows.Scan(&launch.Key, &launch.Name, &launch.Platform, &launchedAt); err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		launch.LaunchedAt, _ = time.Parse(time.RFC3339Nano, launchedAt)
		launches = append(launches, launch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launches: %w", err)
	}
	return launches, nil
}

// LaunchCount returns how many times an entry has been launched.
func (s *Store) LaunchCount(ctx context.Context, entry catalog.Entry) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM launches WHERE entry_key = ?", entry.Key()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count launches: %w", err)
	}
	return count, nil
}
