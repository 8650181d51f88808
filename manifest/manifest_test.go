package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/codec"
	"github.com/hupe1980/pisearch/resource"
)

func validManifest() *Manifest {
	return &Manifest{
		Digits: DigitsInfo{Path: "digits.bin", Count: 7, Bytes: 4},
		Suffix: SuffixInfo{Path: "suffix.bin", Width: 1, Count: 7},
		Prefix: &PrefixInfo{Path: "prefix.bin", Depth: 2},
	}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		s := NewStore(bs, c)
		require.NoError(t, s.Save(ctx, validManifest()))

		// Either JSON codec reads the other's output.
		got, err := NewStore(bs, nil).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, c.Name(), got.Codec)
		assert.Equal(t, CurrentVersion, got.Version)
		assert.Equal(t, int64(7), got.Digits.Count)
		assert.Equal(t, 2, got.Prefix.Depth)
	}
}

func TestStore_LoadThrottled(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, NewStore(bs, nil).Save(ctx, validManifest()))

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	s := NewStore(bs, nil, WithResourceController(rc))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Digits.Count)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Load(canceled)
	assert.ErrorIs(t, err, context.Canceled)

	// Without a limiter the memory store ignores the context.
	_, err = NewStore(bs, nil).Load(canceled)
	assert.NoError(t, err)
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := NewStore(blobstore.NewMemoryStore(), nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadGarbage(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, FileName, []byte("{not json")))
	_, err := NewStore(bs, nil).Load(ctx)
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, bs.Put(ctx, FileName, []byte(`{"version":1,"codec":"xml"}`)))
	_, err = NewStore(bs, nil).Load(ctx)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Manifest)
	}{
		{"version", func(m *Manifest) { m.Version = 2 }},
		{"byte count", func(m *Manifest) { m.Digits.Bytes = 3 }},
		{"suffix count", func(m *Manifest) { m.Suffix.Count = 6 }},
		{"width", func(m *Manifest) { m.Suffix.Width = 9 }},
		{"missing path", func(m *Manifest) { m.Digits.Path = "" }},
		{"prefix path", func(m *Manifest) { m.Prefix.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			m.Version = CurrentVersion
			tt.mutate(m)
			assert.ErrorIs(t, m.Validate(), ErrInvalid)
		})
	}

	m := validManifest()
	m.Version = CurrentVersion
	assert.NoError(t, m.Validate())
}
