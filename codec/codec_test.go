package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type layout struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
	Width int    `json:"width,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := layout{Path: "digits.bin", Count: 3_000_000_001, Width: 5}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			data, err := enc.Marshal(in)
			require.NoError(t, err)
			var out layout
			require.NoError(t, dec.Unmarshal(data, &out))
			assert.Equal(t, in, out, "%s -> %s", enc.Name(), dec.Name())
		}
	}
}

func TestJSON_MarshalError(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		_, err := c.Marshal(make(chan int))
		assert.Error(t, err, c.Name())
	}
}
