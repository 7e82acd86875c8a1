// Package sqlite provides a persistent, TTL-bounded query cache backed by
// SQLite. It implements swapi.Cache so results survive across CLI runs.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/natejswenson/gizmo/pkg/swapi"
)

// Cache is an exact-match query cache backed by SQLite.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache contents and performance counters. Hit and miss counts
// cover the current process only; entries are persistent.
type Stats struct {
	Entries int64
	Hits    int64
	Misses  int64
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS query_cache (
	query_key TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	payload BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_ms INTEGER NOT NULL
);
`

// New creates a Cache with the given database path and entry TTL.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// keyKind extracts the resource kind from a cache key. Keys are formed as
// "kind|selector:value|..."; a bare kind has no separator.
func keyKind(key string) string {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[:i]
	}
	return key
}

// Get retrieves a cached result. Returns false if not found or expired.
func (c *Cache) Get(key string) (swapi.Result, bool) {
	var payload []byte
	var createdAt time.Time
	var ttlMs int64

	err := c.db.QueryRow(
		`SELECT payload, created_at, ttl_ms FROM query_cache WHERE query_key = ?`,
		key,
	).Scan(&payload, &createdAt, &ttlMs)

	if err != nil {
		c.misses.Add(1)
		return swapi.Result{}, false
	}

	ttl := time.Duration(ttlMs) * time.Millisecond
	if ttl > 0 && time.Since(createdAt) > ttl {
		c.misses.Add(1)
		return swapi.Result{}, false
	}

	var res swapi.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		c.misses.Add(1)
		return swapi.Result{}, false
	}

	c.hits.Add(1)
	return res, true
}

// Put stores a result in the cache, replacing any previous entry for key.
func (c *Cache) Put(key string, res swapi.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO query_cache (query_key, kind, payload, created_at, ttl_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		key, keyKind(key), payload, time.Now().UTC(), c.ttl.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Stats returns cache performance metrics.
func (c *Cache) Stats() (Stats, error) {
	var count int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM query_cache`).Scan(&count)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return Stats{
		Entries: count,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Clear removes cache entries. If expiredOnly is true, only expired entries
// are removed.
func (c *Cache) Clear(expiredOnly bool) error {
	var query string
	if expiredOnly {
		query = `DELETE FROM query_cache WHERE ttl_ms > 0 AND (julianday('now') - julianday(created_at)) * 86400000 > ttl_ms`
	} else {
		query = `DELETE FROM query_cache`
	}
	_, err := c.db.Exec(query)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
