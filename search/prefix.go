package search

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/pisearch/internal/compress"
	"github.com/hupe1980/pisearch/internal/hash"
)

// MaxPrefixDepth bounds the table size: depth d holds (10^(d+1)-1)/9 ranges.
const MaxPrefixDepth = 6

// Compression selects how a PrefixTable is stored.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

var (
	// ErrInvalidDepth is returned for a depth outside [0, MaxPrefixDepth].
	ErrInvalidDepth = errors.New("search: invalid prefix depth")
	// ErrInvalidPrefixTable is returned when a persisted table is malformed.
	ErrInvalidPrefixTable = errors.New("search: invalid prefix table")
	// ErrChecksum is returned when a persisted table fails its checksum.
	ErrChecksum = errors.New("search: prefix table checksum mismatch")
)

// PrefixIndex returns precomputed ranges for short query prefixes.
type PrefixIndex interface {
	// Depth is the longest prefix the index can answer.
	Depth() int
	// Lookup returns the range for prefix, or false if it is not cached.
	Lookup(prefix []byte) (Result, bool)
}

// PrefixTable caches the range of every decimal prefix up to a fixed depth.
// It is immutable after construction and safe for concurrent use.
type PrefixTable struct {
	depth     int
	positions int64
	ranges    []Result
}

var _ PrefixIndex = (*PrefixTable)(nil)

// levelBase is the index of the first range of prefixes of length l.
func levelBase(l int) int64 {
	p := int64(1)
	for range l {
		p *= 10
	}
	return (p - 1) / 9
}

// BuildPrefixTable resolves every prefix of length 0..depth. Each child
// range is searched only inside its parent's range.
func BuildPrefixTable(ctx context.Context, e *Engine, depth int) (*PrefixTable, error) {
	if depth < 0 || depth > MaxPrefixDepth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}

	t := &PrefixTable{
		depth:     depth,
		positions: e.Len(),
		ranges:    make([]Result, levelBase(depth+1)),
	}
	t.ranges[0] = Result{Min: 0, Max: e.Len()}

	q := make([]byte, depth)
	for l := 1; l <= depth; l++ {
		parents := levelBase(l) - levelBase(l-1)
		for v := int64(0); v < parents; v++ {
			parent := t.ranges[levelBase(l-1)+v]
			putDecimal(q[:l-1], v)
			for c := byte(0); c < 10; c++ {
				idx := levelBase(l) + v*10 + int64(c)
				if parent.Empty() {
					t.ranges[idx] = Result{Min: parent.Min, Max: parent.Min}
					continue
				}
				q[l-1] = c
				r, err := e.narrow(ctx, q[:l], parent.Min, parent.Max, l-1)
				if err != nil {
					return nil, err
				}
				t.ranges[idx] = r
			}
		}
	}
	return t, nil
}

// putDecimal writes v as len(dst) zero-padded decimal digits.
func putDecimal(dst []byte, v int64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v % 10)
		v /= 10
	}
}

// Depth returns the longest cached prefix length.
func (t *PrefixTable) Depth() int { return t.depth }

// Positions returns the suffix-array length the table was built for.
func (t *PrefixTable) Positions() int64 { return t.positions }

// MemoryBytes returns the in-memory size of the cached ranges.
func (t *PrefixTable) MemoryBytes() int64 { return int64(len(t.ranges)) * 16 }

// Lookup returns the cached range for prefix.
func (t *PrefixTable) Lookup(prefix []byte) (Result, bool) {
	if len(prefix) > t.depth {
		return Result{}, false
	}
	var v int64
	for _, d := range prefix {
		if d > 9 {
			return Result{}, false
		}
		v = v*10 + int64(d)
	}
	return t.ranges[levelBase(len(prefix))+v], true
}

var prefixMagic = [4]byte{'P', 'S', 'P', 'X'}

const prefixVersion = 1

// prefixHeader precedes the compressed range block.
type prefixHeader struct {
	Magic       [4]byte
	Version     uint16
	Depth       uint8
	Compression uint8
	Positions   int64
	BlockLen    uint64
	Checksum    uint32
}

// Encode writes the table to w.
func (t *PrefixTable) Encode(w io.Writer, c Compression) error {
	payload := make([]byte, 16*len(t.ranges))
	for i, r := range t.ranges {
		binary.LittleEndian.PutUint64(payload[16*i:], uint64(r.Min))
		binary.LittleEndian.PutUint64(payload[16*i+8:], uint64(r.Max))
	}
	block, err := compress.Encode(payload, c)
	if err != nil {
		return err
	}

	h := prefixHeader{
		Magic:       prefixMagic,
		Version:     prefixVersion,
		Depth:       uint8(t.depth),
		Compression: uint8(c),
		Positions:   t.positions,
		BlockLen:    uint64(len(block)),
		Checksum:    hash.CRC32C(block),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// MarshalBinary encodes the table with ZSTD compression.
func (t *PrefixTable) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Encode(&buf, CompressionZSTD); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadPrefixTable decodes a table written by Encode.
func ReadPrefixTable(r io.Reader) (*PrefixTable, error) {
	var h prefixHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidPrefixTable, err)
	}
	switch {
	case h.Magic != prefixMagic:
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidPrefixTable)
	case h.Version != prefixVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidPrefixTable, h.Version)
	case int(h.Depth) > MaxPrefixDepth:
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidDepth, h.Depth)
	case !compress.Type(h.Compression).Valid():
		return nil, fmt.Errorf("%w: compression %d", ErrInvalidPrefixTable, h.Compression)
	case h.Positions < 0:
		return nil, fmt.Errorf("%w: negative length", ErrInvalidPrefixTable)
	}

	entries := levelBase(int(h.Depth) + 1)
	// The stored block can be at most the raw payload plus a header.
	if h.BlockLen > uint64(16*entries+64) {
		return nil, fmt.Errorf("%w: block length %d", ErrInvalidPrefixTable, h.BlockLen)
	}
	block := make([]byte, h.BlockLen)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("%w: block: %w", ErrInvalidPrefixTable, err)
	}
	if !hash.Verify(block, h.Checksum) {
		return nil, ErrChecksum
	}

	payload, err := compress.Decode(block, compress.Type(h.Compression))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrefixTable, err)
	}
	if int64(len(payload)) != 16*entries {
		return nil, fmt.Errorf("%w: payload size %d", ErrInvalidPrefixTable, len(payload))
	}

	t := &PrefixTable{
		depth:     int(h.Depth),
		positions: h.Positions,
		ranges:    make([]Result, entries),
	}
	for i := range t.ranges {
		r := Result{
			Min: int64(binary.LittleEndian.Uint64(payload[16*i:])),
			Max: int64(binary.LittleEndian.Uint64(payload[16*i+8:])),
		}
		if r.Min < 0 || r.Max < r.Min || r.Max > h.Positions {
			return nil, fmt.Errorf("%w: range %s", ErrInvalidPrefixTable, r)
		}
		t.ranges[i] = r
	}
	return t, nil
}
