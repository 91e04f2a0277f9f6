// Package sqlite provides SQLite-based persistent storage for HabitFlow.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// FileName is the database file created inside the data directory.
const FileName = "state.db"

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db   *sql.DB
	path string
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db, path: dbPath}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Scalar state: version, total_points, quote
		`CREATE TABLE IF NOT EXISTS state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id            TEXT PRIMARY KEY,
			position      INTEGER NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			kind          TEXT NOT NULL,
			color         TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL,
			weekly_target INTEGER,
			freq_unit     TEXT,
			freq_value    INTEGER,
			reminders     TEXT NOT NULL DEFAULT '[]',
			streak        INTEGER NOT NULL DEFAULT 0,
			points        INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position)`,

		`CREATE TABLE IF NOT EXISTS completions (
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			date    TEXT NOT NULL,
			PRIMARY KEY (task_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS rewards (
			id                TEXT PRIMARY KEY,
			position          INTEGER NOT NULL,
			title             TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			icon              TEXT NOT NULL DEFAULT '',
			point_requirement INTEGER NOT NULL,
			unlocked          BOOLEAN NOT NULL DEFAULT 0,
			unlocked_at       TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── State KV ───────────────────────────────────────────────────────────────

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SetState stores a key-value pair in state.
func (d *DB) SetState(ctx context.Context, key, value string) error {
	return setState(ctx, d.db, key, value)
}

// GetState retrieves a value from state. Missing keys return "".
func (d *DB) GetState(ctx context.Context, key string) (string, error) {
	v, _, err := getState(ctx, d.db, key)
	return v, err
}

func setState(ctx context.Context, e execer, key, value string) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

func getState(ctx context.Context, q queryer, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
