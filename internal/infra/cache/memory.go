package cache

import (
	"context"
	"sync"
	"time"

	"logolate/go_backend/internal/domain/catalog"
)

type memoryEntry struct {
	products []catalog.Product
	expires  time.Time
}

// MemoryCache is the in-process fallback used when REDIS_ADDR is not set.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, catalog.ErrCacheMiss
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, catalog.ErrCacheMiss
	}
	return append([]catalog.Product(nil), e.products...), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, products []catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		products: append([]catalog.Product(nil), products...),
		expires:  m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
