package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(context.Background(), 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(ctx, 20), context.DeadlineExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(context.Background(), 20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())
	assert.True(t, c.TryAcquireMemory(1<<40))

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500+1<<40), c.MemoryUsage())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 10))
	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.NoError(t, c.AcquireSearch(context.Background()))
	assert.True(t, c.TryAcquireSearch())
	c.ReleaseSearch()
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestController_SearchSlots(t *testing.T) {
	c := NewController(Config{MaxConcurrentSearches: 2})
	assert.Equal(t, int64(2), c.Config().MaxConcurrentSearches)

	require.NoError(t, c.AcquireSearch(context.Background()))
	require.NoError(t, c.AcquireSearch(context.Background()))

	assert.False(t, c.TryAcquireSearch())

	c.ReleaseSearch()
	assert.True(t, c.TryAcquireSearch())
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// A request above the burst size is split instead of rejected.
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20+10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 1<<20))
}

func TestRateLimitedReaderWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)
	n, err := w.Write([]byte{0x31, 0x41})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r := NewRateLimitedReader(ctx, &buf, c)
	out := make([]byte, 2)
	n, err = r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x31, 0x41}, out)
}
