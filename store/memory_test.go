package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pisearch/resource"
)

func TestMemoryStore_WriteRead(t *testing.T) {
	buf := make([]byte, 4)
	m, err := NewMemory(0, ModeReadWrite, buf, WithChunkSize(8))
	require.NoError(t, err)
	defer m.Close()

	for i := 0; i < 5; i++ {
		copy(buf, []byte{byte(4 * i), byte(4*i + 1), byte(4*i + 2), byte(4*i + 3)})
		n, err := m.WriteBlocks(4)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	}

	length, err := m.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(20), length)

	require.NoError(t, m.SetPosition(6))
	n, err := m.ReadBlocks(4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	// Crosses the chunk boundary at 8.
	assert.Equal(t, []byte{6, 7, 8, 9}, buf)

	require.NoError(t, m.SetPosition(18))
	n, err = m.ReadBlocks(4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{18, 19}, buf[:n])

	n, err = m.ReadBlocks(4)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_SparseCapacity(t *testing.T) {
	buf := make([]byte, 16)
	const capacity = int64(1) << 33
	m, err := NewMemory(capacity, ModeReadWrite, buf, WithChunkSize(1<<20))
	require.NoError(t, err)
	defer m.Close()

	length, err := m.Length()
	require.NoError(t, err)
	assert.Equal(t, capacity, length)
	assert.Zero(t, m.AllocatedBytes())

	require.NoError(t, m.SetPosition(capacity-1))
	buf[0] = 0xAB
	_, err = m.WriteBlocks(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), m.AllocatedBytes())

	require.NoError(t, m.SetPosition(capacity-16))
	n, err := m.ReadBlocks(16)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, byte(0), buf[0])
	assert.Equal(t, byte(0xAB), buf[15])

	pos, err := m.Position()
	require.NoError(t, err)
	assert.Equal(t, capacity, pos)
}

func TestMemoryStore_MemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	buf := make([]byte, 8)
	m, err := NewMemory(64, ModeReadWrite, buf, WithChunkSize(8), WithResourceController(rc))
	require.NoError(t, err)

	_, err = m.WriteBlocks(8)
	require.NoError(t, err)
	_, err = m.WriteBlocks(8)
	require.NoError(t, err)
	assert.Equal(t, int64(16), rc.MemoryUsage())

	_, err = m.WriteBlocks(8)
	assert.ErrorIs(t, err, ErrMemoryLimit)

	pos, err := m.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(16), pos, "refused write must not move the cursor")

	require.NoError(t, m.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestMemoryStore_Validation(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		_, err := NewMemory(8, ModeRead, nil)
		assert.ErrorIs(t, err, ErrInvalidBlockSize)
	})
	t.Run("block larger than chunk", func(t *testing.T) {
		_, err := NewMemory(8, ModeRead, make([]byte, 16), WithChunkSize(8))
		assert.ErrorIs(t, err, ErrInvalidBlockSize)
	})
	t.Run("negative capacity", func(t *testing.T) {
		_, err := NewMemory(-1, ModeRead, make([]byte, 1))
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})
	t.Run("invalid mode", func(t *testing.T) {
		_, err := NewMemory(8, Mode(0), make([]byte, 1))
		assert.ErrorIs(t, err, ErrInvalidMode)
	})
	t.Run("count out of range", func(t *testing.T) {
		m, err := NewMemory(8, ModeReadWrite, make([]byte, 4))
		require.NoError(t, err)
		_, err = m.ReadBlocks(5)
		assert.ErrorIs(t, err, ErrInvalidCount)
		_, err = m.WriteBlocks(-1)
		assert.ErrorIs(t, err, ErrInvalidCount)
	})
	t.Run("mode enforcement", func(t *testing.T) {
		r, err := NewMemory(8, ModeRead, make([]byte, 4))
		require.NoError(t, err)
		_, err = r.WriteBlocks(1)
		assert.ErrorIs(t, err, ErrModeNotSupported)

		w, err := NewMemory(8, ModeWrite, make([]byte, 4))
		require.NoError(t, err)
		_, err = w.ReadBlocks(1)
		assert.ErrorIs(t, err, ErrModeNotSupported)
		length, err := w.Length()
		require.NoError(t, err)
		assert.Zero(t, length)
	})
	t.Run("position out of range", func(t *testing.T) {
		m, err := NewMemory(8, ModeRead, make([]byte, 4))
		require.NoError(t, err)
		assert.ErrorIs(t, m.SetPosition(-1), ErrInvalidPosition)
		assert.ErrorIs(t, m.SetPosition(9), ErrInvalidPosition)
		assert.NoError(t, m.SetPosition(8))
	})
}

func TestMemoryStore_Closed(t *testing.T) {
	m, err := NewMemory(8, ModeReadWrite, make([]byte, 4))
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.ReadBlocks(1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.WriteBlocks(1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.Position()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.Length()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.SetPosition(0), ErrClosed)
}
