package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	name := "pi/digits.bin"
	data := []byte{0x31, 0x41, 0x59, 0x26, 0x53, 0x58, 0x97, 0x9F}

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, "pi", "digits.bin"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "pi", "digits.bin"), store.Path(name))
	assert.Equal(t, tmpDir, store.Root())

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 3)
	n, err = blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, data[2:5], buf)

	n, err = blob.ReadAt(ctx, make([]byte, 4), 6)
	assert.Equal(t, 2, n)
	assert.Equal(t, io.EOF, err)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	all, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, all)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put(ctx, "manifest.json", []byte("{}")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"manifest.json", "pi/digits.bin"}, names)

	names, err = store.List(ctx, "pi/")
	require.NoError(t, err)
	assert.Equal(t, []string{"pi/digits.bin"}, names)

	require.NoError(t, store.Delete(ctx, name))
	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
