package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS summary_cache (
	cache_key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_at TEXT NOT NULL
)`

// SQLiteCache persists summary payloads across runs. TTLs are ignored here:
// entries are keyed to a dataset fingerprint, so they stay valid until the
// source data changes.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the cache database at path
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Get retrieves a cached payload by key
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var payload []byte
	err := c.db.QueryRow("SELECT payload FROM summary_cache WHERE cache_key = ?", key).Scan(&payload)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set inserts or updates a payload under key
func (c *SQLiteCache) Set(key string, value []byte, ttl time.Duration) error {
	_, err := c.db.Exec(`
		INSERT INTO summary_cache (cache_key, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes a single cache entry
func (c *SQLiteCache) Delete(key string) error {
	_, err := c.db.Exec("DELETE FROM summary_cache WHERE cache_key = ?", key)
	return err
}

// Clear removes all cache entries
func (c *SQLiteCache) Clear() error {
	_, err := c.db.Exec("DELETE FROM summary_cache")
	return err
}

// Close releases the underlying database handle
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
