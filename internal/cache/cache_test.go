package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("text", "https://example.com/pricing")
	assert.Equal(t, a, Key("text", "https://example.com/pricing"))
	assert.NotEqual(t, a, Key("jina", "https://example.com/pricing"))
	assert.Contains(t, a, "tierscope:v1:text:")
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Set("short", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := Key("html", "https://example.com")
	require.NoError(t, c.Set(key, []byte("<html></html>"), 0))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "<html></html>", string(got))

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok = c.Get(key)
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "expired entry is removed")
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cache"), []byte("{not json"), 0o644))
	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	assert.NoError(t, c.Delete("nothing"))
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	require.NoError(t, layered.disk.Set("k", []byte("from disk"), 0))

	got, ok := layered.Get("k")
	require.True(t, ok)
	assert.Equal(t, "from disk", string(got))

	inMemory, ok := layered.memory.Get("k")
	require.True(t, ok)
	assert.Equal(t, "from disk", string(inMemory))

	require.NoError(t, layered.Clear())
	_, ok = layered.Get("k")
	assert.False(t, ok)
}
