// Package store implements the Workspace Store: goals and stories scoped to
// a caller-supplied workspace key, persisted in SQLite.
//
// Every operation runs as a single transaction. Reads never cross workspace
// boundaries, ids are assigned here and never reused, and there is no
// delete path: goals and stories are append-only records whose stories move
// through a fixed set of phases.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DefaultFileName is the database file created inside Config.DataDir.
const DefaultFileName = "story_goals.db"

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	// DataDir is created if missing. Ignored when Path is set.
	DataDir string
	// Path overrides DataDir/DefaultFileName. ":memory:" is not supported
	// because each pooled connection would see its own database.
	Path string
	// BusyTimeout is how long SQLite waits on a locked database.
	// Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// DefaultBusyTimeout is applied when Config.BusyTimeout is zero.
const DefaultBusyTimeout = 5 * time.Second

// DefaultConfig returns the default configuration: ~/.storygoal/story_goals.db.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".storygoal"), BusyTimeout: DefaultBusyTimeout}
}

// DBPath resolves the database file location.
func (c Config) DBPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(c.DataDir, DefaultFileName)
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the workspace store backed by SQLite. It is safe for concurrent
// use; writes are serialised through a single connection.
type Store struct {
	db    *sql.DB
	cfg   Config
	log   zerolog.Logger
	hooks storeHooks
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l.With().Str("component", "store").Logger()
	}
}

type storeHooks struct {
	beginTx func(ctx context.Context, db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		beginTx: func(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
			return db.BeginTx(ctx, nil)
		},
		commit: func(tx *sql.Tx) error {
			return tx.Commit()
		},
	}
}

func (s *Store) beginTxHook(ctx context.Context) (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(ctx, s.db)
	}
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// New opens (or creates) the database described by cfg, applies pragmas,
// and runs migrations.
func New(cfg Config, opts ...Option) (*Store, error) {
	path := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// One connection: SQLite allows a single writer, and a shared
	// connection avoids SQLITE_BUSY on deferred transaction upgrades.
	db.SetMaxOpenConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = DefaultBusyTimeout
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, log: zerolog.Nop(), hooks: defaultStoreHooks()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	s.log.Debug().Str("path", path).Msg("store opened")
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file in use.
func (s *Store) Path() string {
	return s.cfg.DBPath()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_key   TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS goals (
			id              TEXT PRIMARY KEY,
			user_key        TEXT NOT NULL,
			title           TEXT NOT NULL,
			vision          TEXT NOT NULL,
			success_metrics TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL,
			FOREIGN KEY (user_key) REFERENCES users(user_key)
		);

		CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_key, created_at);

		CREATE TABLE IF NOT EXISTS stories (
			id                  TEXT PRIMARY KEY,
			user_key            TEXT NOT NULL,
			title               TEXT NOT NULL,
			as_a                TEXT NOT NULL,
			i_want              TEXT NOT NULL,
			so_that             TEXT NOT NULL,
			acceptance_criteria TEXT NOT NULL DEFAULT '[]',
			current_phase       TEXT NOT NULL DEFAULT 'defining'
				CHECK (current_phase IN ('defining', 'developing', 'validating', 'complete')),
			progress_notes      TEXT NOT NULL DEFAULT '[]',
			goal_id             TEXT,
			created_at          TEXT NOT NULL,
			updated_at          TEXT NOT NULL,
			FOREIGN KEY (user_key) REFERENCES users(user_key),
			FOREIGN KEY (goal_id)  REFERENCES goals(id)
		);

		CREATE INDEX IF NOT EXISTS idx_stories_goal    ON stories(user_key, goal_id);
		CREATE INDEX IF NOT EXISTS idx_stories_phase   ON stories(user_key, current_phase);
		CREATE INDEX IF NOT EXISTS idx_stories_created ON stories(user_key, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Transactions ────────────────────────────────────────────────────────────

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error. Errors from fn are returned unchanged; database errors
// from begin/commit become StorageFailure.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return storageFailure(op+": begin", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.commitHook(tx); err != nil {
		_ = tx.Rollback()
		return storageFailure(op+": commit", err)
	}
	return nil
}

// ─── Time ────────────────────────────────────────────────────────────────────

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Now returns the current time formatted for storage.
func Now() string {
	return timeNow().UTC().Format(timeLayout)
}
