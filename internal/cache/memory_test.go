package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := newMemoryCache(Options{DefaultTTL: time.Minute, MaxEntries: 100})
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))
}

func TestMemoryCacheGetMissing(t *testing.T) {
	c := newMemoryCache(Options{})
	defer c.Close()

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCacheExpiresByTTL(t *testing.T) {
	c := newMemoryCache(Options{})
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	c := newMemoryCache(Options{})
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "assignment:MINIMIZE_VEHICLES:depot=D1:abc", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "assignment:MINIMIZE_VEHICLES:depot=D2:def", []byte("2"), 0))

	n, err := c.DeleteByPattern(ctx, "assignment:*:depot=D1:*")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = c.Get(ctx, "assignment:MINIMIZE_VEHICLES:depot=D2:def")
	assert.NoError(t, err)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newMemoryCache(Options{MaxEntries: 2})
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, _ = c.Get(ctx, "a") // touch a so b becomes the LRU candidate
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err := c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCacheCloseRejectsFurtherOps(t *testing.T) {
	c := newMemoryCache(Options{})
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "key")
	assert.ErrorIs(t, err, ErrCacheClosed)
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, matchPattern("*", "anything"))
	assert.True(t, matchPattern("assignment:*", "assignment:foo"))
	assert.True(t, matchPattern("*:depot=D1", "assignment:depot=D1"))
	assert.False(t, matchPattern("assignment:*", "other:foo"))
	assert.True(t, matchPattern("exact", "exact"))
	assert.False(t, matchPattern("exact", "other"))
}
