package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded in-process store for single-instance deployments and tests.
type MemoryStore struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

var _ domainCache.Store = (*MemoryStore)(nil)

func NewMemoryStore(size int) (*MemoryStore, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{entries: entries, now: time.Now}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, domainCache.ErrMiss
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.entries.Remove(key)
		return nil, domainCache.ErrMiss
	}
	return entry.value, nil
}

// Set stores a copy of value. A zero ttl never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries.Add(key, entry)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.entries.Remove(key)
	}
	return nil
}

// Len reports the number of entries, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
