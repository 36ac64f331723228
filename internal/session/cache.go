package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.
)

// cacheKey is the fixed slot the serialized session lives under.
const cacheKey = "plog.session"

// Cache is the durable single-slot store behind the session Store.
// Read returns nil, nil when nothing is cached.
type Cache interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
	Close() error
}

// SQLiteCache persists the session slot in a small SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the session cache database at the given path.
// Parent directories are created if missing. The connection is limited to a
// single writer, matching SQLite's concurrency model.
func OpenCache(path string) (*SQLiteCache, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory %q: %w", dir, err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening session cache %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS session_cache (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session_cache table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Read returns the cached session bytes, or nil, nil when the slot is empty.
func (c *SQLiteCache) Read(ctx context.Context) ([]byte, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM session_cache WHERE key = ?`, cacheKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session cache: %w", err)
	}
	return []byte(value), nil
}

// Write fully overwrites the cached session slot.
func (c *SQLiteCache) Write(ctx context.Context, data []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO session_cache (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		cacheKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("writing session cache: %w", err)
	}
	return nil
}

// Clear removes the cached session slot.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM session_cache WHERE key = ?`, cacheKey,
	); err != nil {
		return fmt.Errorf("clearing session cache: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
