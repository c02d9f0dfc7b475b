package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache layer.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory cache. A zero ttl means entries never expire,
// which is what the filing caches want: disclosed facts do not change.
func NewMemory(ttl time.Duration) *Memory {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	return &Memory{cache: gocache.New(ttl, 10*time.Minute)}
}

// Get returns the stored value and whether it was present.
func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, bool) {
	if v, found := m.cache.Get(compositeKey(namespace, key)); found {
		return v.([]byte), true
	}
	return nil, false
}

// Set stores a value, replacing any previous one.
func (m *Memory) Set(_ context.Context, namespace, key string, value []byte) error {
	m.cache.SetDefault(compositeKey(namespace, key), value)
	return nil
}

// Clear drops one namespace, or everything when namespace is empty.
func (m *Memory) Clear(_ context.Context, namespace string) error {
	if namespace == "" {
		m.cache.Flush()
		return nil
	}
	prefix := namespace + "\x00"
	for key := range m.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			m.cache.Delete(key)
		}
	}
	return nil
}

// Close is a no-op for the memory layer.
func (m *Memory) Close() error { return nil }
