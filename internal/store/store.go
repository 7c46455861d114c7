package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serializes every read-modify-write against the file.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// Path is the database file the store was opened with.
func (s *Store) Path() string { return s.path }

// DB exposes the handle for maintenance tasks such as backups.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS entries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		activity         TEXT NOT NULL CHECK (activity <> ''),
		start_ms         INTEGER NOT NULL,
		pause_intervals  TEXT NOT NULL DEFAULT '[]',
		end_ms           INTEGER,
		duration_minutes INTEGER,
		tags             TEXT NOT NULL DEFAULT '',
		note             TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entries_start ON entries(start_ms);

	-- At most one entry may be unfinished.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_single_active
		ON entries((end_ms IS NULL)) WHERE end_ms IS NULL;

	CREATE TABLE IF NOT EXISTS daily_targets (
		weekday        INTEGER PRIMARY KEY CHECK (weekday BETWEEN 0 AND 6),
		target_minutes INTEGER NOT NULL DEFAULT 0 CHECK (target_minutes >= 0),
		updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	INSERT OR IGNORE INTO daily_targets (weekday, target_minutes) VALUES
		(0, 0), (1, 480), (2, 480), (3, 480), (4, 480), (5, 480), (6, 0);

	CREATE TABLE IF NOT EXISTS day_offs (
		date        TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS vacations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		CHECK (start_date <= end_date)
	);

	CREATE INDEX IF NOT EXISTS idx_vacations_dates ON vacations(start_date, end_date);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('idle_timeout', '300'),
		('idle_action',  'pause'),
		('week_start',   'monday');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/worktrack/worktrack.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "worktrack", "worktrack.db"), nil
}
