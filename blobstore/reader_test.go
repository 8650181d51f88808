package blobstore

import (
	"context"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pisearch/resource"
)

func TestReader(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("31415926535897932384626433")
	require.NoError(t, s.Put(ctx, "pi", data))

	b, err := s.Open(ctx, "pi")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, iotest.TestReader(NewReader(ctx, b), data))

	got, err := io.ReadAll(NewReader(ctx, b))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReader_Empty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "empty", nil))

	b, err := s.Open(ctx, "empty")
	require.NoError(t, err)

	n, err := NewReader(ctx, b).Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestReadLimited(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("2718281828459045")
	require.NoError(t, s.Put(ctx, "e", data))

	got, err := ReadLimited(ctx, s, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	got, err = ReadLimited(ctx, s, "e", rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = ReadLimited(ctx, s, "missing", rc)
	assert.ErrorIs(t, err, ErrNotFound)

	// The limiter observes the context even though the memory store does not.
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ReadLimited(canceled, s, "e", rc)
	assert.ErrorIs(t, err, context.Canceled)
}
