package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)

	for _, typ := range []Type{LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			block, err := Encode(data, typ)
			require.NoError(t, err)
			assert.Less(t, len(block), len(data)/2)

			out, err := Decode(block, typ)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestEncode_StoresIncompressible(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i * 37)
	}

	block, err := Encode(data, None)
	require.NoError(t, err)
	assert.Len(t, block, headerSize+len(data))

	out, err := Decode(block, None)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte{1, 2}, LZ4)
	assert.ErrorIs(t, err, ErrCorrupt)

	block, err := Encode(bytes.Repeat([]byte{7}, 512), ZSTD)
	require.NoError(t, err)
	_, err = Decode(block[:len(block)-1], ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Encode(nil, Type(9))
	assert.ErrorIs(t, err, ErrUnknownType)
}
