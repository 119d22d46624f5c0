// Package cache provides a SQLite-backed response store for the TVDB
// client, so cached responses survive across runs.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vmunix/tvmeta/pkg/tvdb"
)

const schema = `
CREATE TABLE IF NOT EXISTS response_cache (
	key        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	etag       TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_response_cache_fetched_at ON response_cache(fetched_at);
`

// Store is a persistent tvdb.Store backed by SQLite. Expiry is decided by
// the client per request; the store just keeps entries until pruned.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle. The schema must already
// exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get retrieves a cached response by key.
func (s *Store) Get(ctx context.Context, key tvdb.Key) (tvdb.Entry, bool) {
	var entry tvdb.Entry

	err := s.db.QueryRowContext(ctx,
		"SELECT body, etag, fetched_at FROM response_cache WHERE key = ?", key.String(),
	).Scan(&entry.Body, &entry.ETag, &entry.FetchedAt)

	if err != nil {
		return tvdb.Entry{}, false
	}
	return entry, true
}

// Set stores a response, replacing any previous entry for the key.
func (s *Store) Set(ctx context.Context, key tvdb.Key, entry tvdb.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_cache (key, body, etag, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, etag = excluded.etag, fetched_at = excluded.fetched_at`,
		key.String(), entry.Body, entry.ETag, entry.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Prune removes entries fetched longer than maxAge ago.
// Returns the number of entries removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM response_cache WHERE fetched_at < ?", time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
