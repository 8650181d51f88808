package search

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pisearch/testutil"
)

func TestPrefixTable_Lookup(t *testing.T) {
	ctx := context.Background()
	seq := testutil.NewRNG(99).Digits(600)
	e, sa := newEngine(t, seq)

	table, err := BuildPrefixTable(ctx, e, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Depth())
	assert.Equal(t, e.Len(), table.Positions())
	assert.Equal(t, int64(1111*16), table.MemoryBytes())

	q := make([]byte, 3)
	for l := 0; l <= 3; l++ {
		for v := int64(0); v < levelBase(l+1)-levelBase(l); v++ {
			putDecimal(q[:l], v)
			got, ok := table.Lookup(q[:l])
			require.True(t, ok)
			lo, hi := testutil.PrefixRange(seq, sa, q[:l])
			require.Equal(t, Result{Min: lo, Max: hi}, got, "prefix %v", q[:l])
		}
	}

	_, ok := table.Lookup([]byte{1, 2, 3, 4})
	assert.False(t, ok)
	_, ok = table.Lookup([]byte{12})
	assert.False(t, ok)
}

func TestPrefixTable_SeedsEngine(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(5)
	seq := rng.SkewedDigits(1200, 4)
	plain, sa := newEngine(t, seq)

	table, err := BuildPrefixTable(ctx, plain, 2)
	require.NoError(t, err)
	seeded, _ := newEngine(t, seq, WithPrefixIndex(table))

	for i := 0; i < 200; i++ {
		q := rng.Substring(seq, 8)
		if i%4 == 0 {
			q = rng.Digits(1 + rng.Intn(3))
		}
		got, err := seeded.Search(ctx, q)
		require.NoError(t, err)
		lo, hi := testutil.PrefixRange(seq, sa, q)
		require.Equal(t, Result{Min: lo, Max: hi}, got, "query %v", q)
	}
}

func TestPrefixTable_EncodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, testutil.NewRNG(3).Digits(400))
	table, err := BuildPrefixTable(ctx, e, 2)
	require.NoError(t, err)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, table.Encode(&buf, c))

			got, err := ReadPrefixTable(&buf)
			require.NoError(t, err)
			assert.Equal(t, table, got)
		})
	}

	data, err := table.MarshalBinary()
	require.NoError(t, err)
	got, err := ReadPrefixTable(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, table.ranges, got.ranges)
}

func TestPrefixTable_Corrupt(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, testutil.NewRNG(3).Digits(100))
	table, err := BuildPrefixTable(ctx, e, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Encode(&buf, CompressionNone))
	data := buf.Bytes()

	t.Run("checksum", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[len(bad)-1] ^= 0xFF
		_, err := ReadPrefixTable(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrChecksum)
	})
	t.Run("magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] = 'X'
		_, err := ReadPrefixTable(bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrInvalidPrefixTable)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := ReadPrefixTable(bytes.NewReader(data[:len(data)-3]))
		assert.ErrorIs(t, err, ErrInvalidPrefixTable)
	})
}

func TestBuildPrefixTable_InvalidDepth(t *testing.T) {
	e, _ := newEngine(t, []byte{1})
	_, err := BuildPrefixTable(context.Background(), e, MaxPrefixDepth+1)
	assert.ErrorIs(t, err, ErrInvalidDepth)
	_, err = BuildPrefixTable(context.Background(), e, -1)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}
