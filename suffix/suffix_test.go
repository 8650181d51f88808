package suffix

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pisearch/store"
	"github.com/hupe1980/pisearch/stream"
)

func TestWidthFor(t *testing.T) {
	tests := []struct {
		max  int64
		want int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{3_000_000_000, 4},
		{1 << 32, 5},
		{1<<63 - 1, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WidthFor(tt.max), "max=%d", tt.max)
	}
}

func writeArray(t *testing.T, width int, offsets []int64) *Array {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, width)
	require.NoError(t, err)
	for _, off := range offsets {
		require.NoError(t, w.Write(off))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, int64(len(offsets)), w.Count())

	s, err := stream.NewMemory(0, store.ModeReadWrite)
	require.NoError(t, err)
	_, err = s.Write(buf.Bytes())
	require.NoError(t, err)

	a, err := Open(s, width)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArray_Widths(t *testing.T) {
	offsets := []int64{7, 0, 250, 3, 99}
	for width := 1; width <= MaxWidth; width++ {
		a := writeArray(t, width, offsets)
		assert.Equal(t, int64(len(offsets)), a.Len())
		assert.Equal(t, width, a.Width())
		for i, want := range offsets {
			got, err := a.At(int64(i))
			require.NoError(t, err)
			assert.Equal(t, want, got, "width=%d i=%d", width, i)
		}
	}
}

func TestArray_WideOffsets(t *testing.T) {
	big := int64(3_000_000_001)
	a := writeArray(t, WidthFor(big), []int64{big, 1})
	assert.Equal(t, 4, a.Width())

	got, err := a.At(0)
	require.NoError(t, err)
	assert.Equal(t, big, got)

	huge := int64(1)<<39 + 5
	b := writeArray(t, WidthFor(huge), []int64{1, huge})
	assert.Equal(t, 5, b.Width())
	got, err = b.At(1)
	require.NoError(t, err)
	assert.Equal(t, huge, got)
}

func TestArray_Set(t *testing.T) {
	a := writeArray(t, 2, []int64{1, 2, 3})
	require.NoError(t, a.Set(1, 60000))
	got, err := a.At(1)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), got)

	assert.ErrorIs(t, a.Set(0, 70000), ErrOffsetTooLarge)
	assert.ErrorIs(t, a.Set(0, -1), ErrOffsetTooLarge)
	assert.ErrorIs(t, a.Set(3, 1), ErrOutOfRange)
}

func TestArray_Errors(t *testing.T) {
	a := writeArray(t, 2, []int64{1, 2})
	_, err := a.At(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = a.At(2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	s, err := stream.NewMemory(5, store.ModeRead)
	require.NoError(t, err)
	_, err = Open(s, 2)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = Open(s, 9)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = NewWriter(&bytes.Buffer{}, 0)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	w, err := NewWriter(&bytes.Buffer{}, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, w.Write(256), ErrOffsetTooLarge)

	require.NoError(t, a.Close())
	_, err = a.At(0)
	assert.ErrorIs(t, err, stream.ErrDisposed)
}
