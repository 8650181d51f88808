package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pisearch/blobstore"
)

func TestRangeStore(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "digits", []byte("hello world")))

	blob, err := bs.Open(ctx, "digits")
	require.NoError(t, err)

	buf := make([]byte, 4)
	s, err := OpenBlob(ctx, blob, ModeRead, buf)
	require.NoError(t, err)

	length, err := s.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(11), length)

	require.NoError(t, s.SetPosition(6))
	n, err := s.ReadBlocks(4)
	require.NoError(t, err)
	assert.Equal(t, "worl", string(buf[:n]))
	n, err = s.ReadBlocks(4)
	require.NoError(t, err)
	assert.Equal(t, "d", string(buf[:n]))
	n, err = s.ReadBlocks(4)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.WriteBlocks(1)
	assert.ErrorIs(t, err, ErrModeNotSupported)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Position()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRangeStore_RejectsWrite(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "b", []byte("x")))
	blob, err := bs.Open(ctx, "b")
	require.NoError(t, err)

	_, err = OpenBlob(ctx, blob, ModeReadWrite, make([]byte, 1))
	assert.ErrorIs(t, err, ErrModeNotSupported)
}
