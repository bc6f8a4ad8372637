package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS cone_cache (
	key     TEXT PRIMARY KEY,
	payload BLOB NOT NULL
);`

// Cache is a sqlite-backed cone-search cache wrapping another Querier.
// Identical queries (positions rounded to ~0.04 arcsec) are served from
// disk; failures are never cached.
type Cache struct {
	db    *sql.DB
	inner Querier
	log   *zap.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger attaches a logger for hit/miss diagnostics.
func WithCacheLogger(log *zap.Logger) CacheOption {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCache opens (creating if needed) the cache database at path.
func NewCache(path string, inner Querier, opts ...CacheOption) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init cache schema: %w", err)
	}
	c := &Cache{db: db, inner: inner, log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Close releases the database handle.
func (c *Cache) Close() error { return c.db.Close() }

func cacheKey(ra, dec, radius float64) string {
	return fmt.Sprintf("%.5f|%.5f|%.5f", ra, dec, radius)
}

// ConeSearch implements Querier.
func (c *Cache) ConeSearch(ctx context.Context, ra, dec, radius float64) ([]Source, error) {
	key := cacheKey(ra, dec, radius)

	var payload []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM cone_cache WHERE key = ?`, key).Scan(&payload)
	switch {
	case err == nil:
		var sources []Source
		if err := json.Unmarshal(payload, &sources); err == nil {
			c.log.Debug("cone cache hit", zap.String("key", key), zap.Int("sources", len(sources)))
			return sources, nil
		}
		// Corrupt entry: fall through to a fresh query.
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("catalog: cache read: %w", err)
	}

	sources, err := c.inner.ConeSearch(ctx, ra, dec, radius)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(sources); err == nil {
		if _, err := c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO cone_cache (key, payload) VALUES (?, ?)`, key, payload); err != nil {
			c.log.Warn("cone cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return sources, nil
}
