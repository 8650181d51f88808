package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a JSON codec backed by github.com/goccy/go-json. Its output is
// readable by JSON and the other way round.
type GoJSON struct{}

// Marshal encodes the value to indented JSON.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.MarshalIndent(v, "", "  ") }

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns the unique name of the codec ("go-json").
func (GoJSON) Name() string { return "go-json" }
