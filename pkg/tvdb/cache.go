package tvdb

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Expiration policies per endpoint class.
const (
	ttlDay   = 24 * time.Hour // search results, episode pages
	ttlWeek  = 7 * ttlDay     // series detail, images
	ttlMonth = 30 * ttlDay    // language list, IMDb lookups
)

// Key identifies a cached response. Locale is part of the key so
// language-specific responses never collide; it is empty for endpoints
// that are not localized.
type Key struct {
	Endpoint string
	Locale   string
}

// String renders the key for stores that need a flat primary key.
func (k Key) String() string {
	locale := k.Locale
	if locale == "" {
		locale = "any"
	}
	return "tvdb:" + locale + ":" + k.Endpoint
}

// Entry is a cached response body with its fetch metadata.
type Entry struct {
	Body      []byte
	ETag      string
	FetchedAt time.Time
}

// Store persists cached responses. Implementations must be safe for
// concurrent use. Stores only keep entries; the client applies TTLs.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, bool)
	Set(ctx context.Context, key Key, entry Entry) error
}

// fetchFunc performs the network fetch behind a cache miss. stale is the
// expired entry, if any, so the fetch can be conditional; notModified
// reports that the origin confirmed the stale body is still current.
type fetchFunc func(ctx context.Context, stale *Entry) (entry Entry, notModified bool, err error)

// gateway mediates between request execution and the Store.
type gateway struct {
	store Store
	log   *slog.Logger
}

// fetch returns the cached body when it is younger than ttl, otherwise
// invokes fn and stores the result. A not-modified outcome keeps the stale
// body and refreshes its timestamp.
func (g *gateway) fetch(ctx context.Context, key Key, ttl time.Duration, fn fetchFunc) ([]byte, error) {
	cached, ok := g.store.Get(ctx, key)
	if ok && time.Since(cached.FetchedAt) < ttl {
		if g.log != nil {
			g.log.Debug("cache hit", "key", key.String())
		}
		return cached.Body, nil
	}

	var stale *Entry
	if ok {
		stale = &cached
	}

	entry, notModified, err := fn(ctx, stale)
	if err != nil {
		return nil, err
	}
	if notModified {
		entry = cached
		entry.FetchedAt = time.Now()
	}

	if err := g.store.Set(ctx, key, entry); err != nil {
		// A failed write degrades caching, not the request.
		if g.log != nil {
			g.log.Warn("cache set failed", "key", key.String(), "error", err)
		}
	}
	return entry.Body, nil
}

// memoryStore is the default in-process Store.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[Key]Entry)}
}

func (s *memoryStore) Get(_ context.Context, key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

func (s *memoryStore) Set(_ context.Context, key Key, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
	return nil
}
