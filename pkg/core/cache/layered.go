package cache

import (
	"context"
	"time"
)

// Layered composes a memory cache over a persistent one. Reads check
// memory first and promote disk hits; writes go to both layers.
type Layered struct {
	memory Cache
	disk   Cache
}

// NewLayered builds the standard memory-over-sqlite stack.
func NewLayered(dbPath string, memoryTTL time.Duration) (*Layered, error) {
	disk, err := NewSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return &Layered{memory: NewMemory(memoryTTL), disk: disk}, nil
}

// NewLayeredFrom composes arbitrary layers; used by tests.
func NewLayeredFrom(memory, disk Cache) *Layered {
	return &Layered{memory: memory, disk: disk}
}

// Get returns the stored value and whether it was present in either layer.
func (l *Layered) Get(ctx context.Context, namespace, key string) ([]byte, bool) {
	if v, found := l.memory.Get(ctx, namespace, key); found {
		return v, true
	}
	if v, found := l.disk.Get(ctx, namespace, key); found {
		_ = l.memory.Set(ctx, namespace, key, v)
		return v, true
	}
	return nil, false
}

// Set stores a value in both layers.
func (l *Layered) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := l.memory.Set(ctx, namespace, key, value); err != nil {
		return err
	}
	return l.disk.Set(ctx, namespace, key, value)
}

// Clear drops the namespace from both layers.
func (l *Layered) Clear(ctx context.Context, namespace string) error {
	if err := l.memory.Clear(ctx, namespace); err != nil {
		return err
	}
	return l.disk.Clear(ctx, namespace)
}

// Close closes both layers.
func (l *Layered) Close() error {
	l.memory.Close()
	return l.disk.Close()
}
