package blobstore

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	w, err := s.Create(ctx, "idx/pi.digits")
	require.NoError(t, err)
	_, err = w.Write([]byte{0x31, 0x41})
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	require.NoError(t, s.Put(ctx, "idx/pi.suffix", []byte{1, 0, 0, 0}))
	require.NoError(t, s.Put(ctx, "other", nil))

	names, err := s.List(ctx, "idx/")
	require.NoError(t, err)
	assert.Equal(t, []string{"idx/pi.digits", "idx/pi.suffix"}, names)

	b, err := s.Open(ctx, "idx/pi.digits")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int64(2), b.Size())

	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 1)
	assert.Equal(t, 1, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, byte(0x41), buf[0])

	m, ok := b.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x31, 0x41}, data)

	empty, err := ReadLimited(ctx, s, "other", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Delete(ctx, "other"))
	require.NoError(t, s.Delete(ctx, "other"))
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "pi.digits", []byte{0x31, 0x41, 0x59, 0x26}))

	b, err := s.Open(ctx, "pi.digits")
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	_, err = b.ReadAt(ctx, buf, 2)
	assert.Equal(t, io.EOF, err)

	assert.Equal(t, ReadStats{Reads: 2, BytesRead: 5}, s.Stats())
}

func TestMemoryStore_WritableClose(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	w, err := s.Create(ctx, "pi.suffix")
	require.NoError(t, err)
	_, err = w.Write([]byte{1})
	require.NoError(t, err)

	// Not visible until Close.
	_, err = s.Open(ctx, "pi.suffix")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), os.ErrClosed)
	_, err = w.Write([]byte{2})
	assert.ErrorIs(t, err, os.ErrClosed)
}
