package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_, found := m.Get(ctx, "ns", "missing")
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "ns", "k", []byte(`{"value":1}`)))
	got, found := m.Get(ctx, "ns", "k")
	require.True(t, found)
	assert.Equal(t, []byte(`{"value":1}`), got)

	// Same key under a different namespace is a different entry.
	_, found = m.Get(ctx, "other", "k")
	assert.False(t, found)
}

func TestMemoryClearNamespace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	require.NoError(t, m.Set(ctx, "a", "k", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", "k", []byte("2")))
	require.NoError(t, m.Clear(ctx, "a"))

	_, found := m.Get(ctx, "a", "k")
	assert.False(t, found)
	_, found = m.Get(ctx, "b", "k")
	assert.True(t, found)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "execcheck.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "edgar_concepts", "AAPL-Revenues", []byte(`[]`)))
	require.NoError(t, s.Close())

	s2, err := NewSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	got, found := s2.Get(ctx, "edgar_concepts", "AAPL-Revenues")
	require.True(t, found)
	assert.Equal(t, []byte(`[]`), got)
}

func TestSQLiteReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "ns", "k", []byte("old")))
	require.NoError(t, s.Set(ctx, "ns", "k", []byte("new")))
	got, found := s.Get(ctx, "ns", "k")
	require.True(t, found)
	assert.Equal(t, []byte("new"), got)

	require.NoError(t, s.Set(ctx, "other", "k", []byte("keep")))
	require.NoError(t, s.Clear(ctx, "ns"))
	_, found = s.Get(ctx, "ns", "k")
	assert.False(t, found)
	_, found = s.Get(ctx, "other", "k")
	assert.True(t, found)
}

func TestLayeredPromotesDiskHits(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(0)
	disk := NewMemory(0) // stands in for the sqlite layer
	l := NewLayeredFrom(mem, disk)

	// Seed only the disk layer, as after a process restart.
	require.NoError(t, disk.Set(ctx, "ns", "k", []byte("v")))

	got, found := l.Get(ctx, "ns", "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), got)

	// The hit must now be served from memory.
	promoted, found := mem.Get(ctx, "ns", "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), promoted)
}

func TestLayeredSetWritesBothLayers(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(0)
	disk := NewMemory(0)
	l := NewLayeredFrom(mem, disk)

	require.NoError(t, l.Set(ctx, "ns", "k", []byte("v")))

	_, found := mem.Get(ctx, "ns", "k")
	assert.True(t, found)
	_, found = disk.Get(ctx, "ns", "k")
	assert.True(t, found)
}
