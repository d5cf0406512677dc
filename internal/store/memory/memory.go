// Package memory is the session-scoped store: values live in an LRU cache
// and expire after the session TTL or when the process exits.
package memory

import (
	"context"
	"time"

	"saga/internal/cache"
	"saga/internal/store"
)

// DefaultSessionTTL matches the lifetime of a browser session closely enough
// for a long-running local process.
const DefaultSessionTTL = 12 * time.Hour

type Store struct {
	items *cache.LRUCache[[]byte]
}

var _ store.Store = (*Store)(nil)

// New creates a session store holding at most maxKeys values for ttl each.
func New(maxKeys int, ttl time.Duration) *Store {
	if maxKeys <= 0 {
		maxKeys = 16
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{items: cache.NewLRUCache[[]byte](maxKeys, ttl)}
}

// Cache exposes the underlying cache so it can be registered for expiry cleanup.
func (s *Store) Cache() *cache.LRUCache[[]byte] {
	return s.items
}

func (s *Store) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Write(_ context.Context, key string, value []byte) error {
	s.items.Set(key, append([]byte(nil), value...))
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}
