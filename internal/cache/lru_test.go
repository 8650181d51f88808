package cache

import (
	"context"
	"testing"

	"github.com/hupe1980/pisearch/resource"
	"github.com/stretchr/testify/assert"
)

func TestLRUBlockCache_Basic(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(10, nil)

	k1 := CacheKey{Path: "pi.digits", Block: 0}
	k2 := CacheKey{Path: "pi.digits", Block: 1}
	k3 := CacheKey{Path: "pi.suffix", Block: 0}

	c.Set(ctx, k1, []byte{1, 2, 3, 4})
	c.Set(ctx, k2, []byte{5, 6, 7, 8})
	assert.Equal(t, int64(8), c.Size())

	v, ok := c.Get(ctx, k1)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, v)

	// k2 is now least recently used and gets evicted.
	c.Set(ctx, k3, []byte{9, 9, 9, 9})
	_, ok = c.Get(ctx, k2)
	assert.False(t, ok)
	_, ok = c.Get(ctx, k1)
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUBlockCache_TooLarge(t *testing.T) {
	c := NewLRUBlockCache(4, nil)
	c.Set(context.Background(), CacheKey{Path: "x"}, make([]byte, 5))
	assert.Equal(t, int64(0), c.Size())
}

func TestLRUBlockCache_UpdateAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(100, nil)

	c.Set(ctx, CacheKey{Path: "a", Block: 0}, make([]byte, 10))
	c.Set(ctx, CacheKey{Path: "a", Block: 0}, make([]byte, 20))
	c.Set(ctx, CacheKey{Path: "b", Block: 0}, make([]byte, 5))
	assert.Equal(t, int64(25), c.Size())

	c.Invalidate(func(k CacheKey) bool { return k.Path == "a" })
	assert.Equal(t, int64(5), c.Size())

	assert.NoError(t, c.Close())
	assert.Equal(t, int64(0), c.Size())
}

func TestLRUBlockCache_ResourceController(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 6})
	c := NewLRUBlockCache(100, rc)

	c.Set(ctx, CacheKey{Path: "a", Block: 0}, make([]byte, 4))
	assert.Equal(t, int64(4), rc.MemoryUsage())

	// The global budget refuses the second block.
	c.Set(ctx, CacheKey{Path: "a", Block: 1}, make([]byte, 4))
	_, ok := c.Get(ctx, CacheKey{Path: "a", Block: 1})
	assert.False(t, ok)

	c.Invalidate(func(CacheKey) bool { return true })
	assert.Equal(t, int64(0), rc.MemoryUsage())
}
