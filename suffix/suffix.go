// Package suffix stores a suffix array as fixed-width little-endian offsets
// on top of a stream.Stream.
//
// The width is chosen per index (see WidthFor) so that a sequence of a few
// billion digits needs 5 bytes per entry instead of 8.
package suffix

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/hupe1980/pisearch/stream"
)

// MaxWidth is the widest supported offset encoding.
const MaxWidth = 8

var (
	// ErrInvalidWidth is returned for a width outside [1, MaxWidth].
	ErrInvalidWidth = errors.New("suffix: invalid offset width")
	// ErrCorrupt is returned when the stream length is not a multiple of the width.
	ErrCorrupt = errors.New("suffix: stream length is not a multiple of the offset width")
	// ErrOutOfRange is returned for a position outside [0, Len()).
	ErrOutOfRange = errors.New("suffix: position out of range")
	// ErrOffsetTooLarge is returned when an offset does not fit the width.
	ErrOffsetTooLarge = errors.New("suffix: offset does not fit width")
)

// WidthFor returns the narrowest width able to hold every offset in [0, maxOffset].
func WidthFor(maxOffset int64) int {
	if maxOffset <= 0 {
		return 1
	}
	return (bits.Len64(uint64(maxOffset)) + 7) / 8
}

func fits(off int64, width int) bool {
	return off >= 0 && (width == MaxWidth || off < int64(1)<<(8*width))
}

// Array is a read-mostly view of a persisted suffix array. It owns its
// stream and is not safe for concurrent use.
type Array struct {
	s      *stream.Stream
	width  int
	n      int64
	buf    [MaxWidth]byte
	closed bool
}

// Open opens a suffix array of the given width. The array takes ownership of s.
func Open(s *stream.Stream, width int) (*Array, error) {
	if width < 1 || width > MaxWidth {
		return nil, ErrInvalidWidth
	}
	length, err := s.Length()
	if err != nil {
		return nil, err
	}
	if length%int64(width) != 0 {
		return nil, fmt.Errorf("%w: length %d, width %d", ErrCorrupt, length, width)
	}
	return &Array{s: s, width: width, n: length / int64(width)}, nil
}

// Len returns the number of offsets.
func (a *Array) Len() int64 { return a.n }

// Width returns the byte width of each offset.
func (a *Array) Width() int { return a.width }

// At returns the offset stored at position i.
func (a *Array) At(i int64) (int64, error) {
	if err := a.check(i); err != nil {
		return 0, err
	}
	a.buf = [MaxWidth]byte{}
	n, err := a.s.ReadSpan(i*int64(a.width), a.buf[:a.width])
	if err != nil {
		return 0, err
	}
	if n < a.width {
		return 0, io.ErrUnexpectedEOF
	}
	return int64(binary.LittleEndian.Uint64(a.buf[:])), nil
}

// Set overwrites the offset at position i.
func (a *Array) Set(i, off int64) error {
	if err := a.check(i); err != nil {
		return err
	}
	if !fits(off, a.width) {
		return fmt.Errorf("%w: %d in %d bytes", ErrOffsetTooLarge, off, a.width)
	}
	binary.LittleEndian.PutUint64(a.buf[:], uint64(off))
	_, err := a.s.WriteSpan(i*int64(a.width), a.buf[:a.width])
	return err
}

// Close closes the underlying stream.
func (a *Array) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.s.Close()
}

func (a *Array) check(i int64) error {
	if a.closed {
		return stream.ErrDisposed
	}
	if i < 0 || i >= a.n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, a.n)
	}
	return nil
}

// Writer appends offsets in the persisted format.
type Writer struct {
	w     *bufio.Writer
	width int
	count int64
	buf   [MaxWidth]byte
}

// NewWriter returns a Writer encoding offsets with the given width.
func NewWriter(w io.Writer, width int) (*Writer, error) {
	if width < 1 || width > MaxWidth {
		return nil, ErrInvalidWidth
	}
	return &Writer{w: bufio.NewWriter(w), width: width}, nil
}

// Write appends one offset.
func (w *Writer) Write(off int64) error {
	if !fits(off, w.width) {
		return fmt.Errorf("%w: %d in %d bytes", ErrOffsetTooLarge, off, w.width)
	}
	binary.LittleEndian.PutUint64(w.buf[:], uint64(off))
	if _, err := w.w.Write(w.buf[:w.width]); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of offsets written.
func (w *Writer) Count() int64 { return w.count }

// Flush writes buffered offsets to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }
