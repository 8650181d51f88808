package digits

import (
	"fmt"
	"io"

	"github.com/hupe1980/pisearch/stream"
)

const (
	// Sentinel marks the missing last digit of an odd-length array.
	Sentinel byte = 15
	// MaxValue is the largest storable value.
	MaxValue byte = 14
)

// DefaultWindowSize is the number of bytes Get caches per refill.
const DefaultWindowSize = 64

// Options configures an Array.
type Options struct {
	// WindowSize is the read window in bytes. Values below 1 are treated as 1.
	WindowSize int
}

// DefaultOptions returns default array options.
var DefaultOptions = Options{
	WindowSize: DefaultWindowSize,
}

// extent is the byte length of the array tagged with whether the last
// byte is sentinel-padded.
type extent struct {
	bytes int64
	odd   bool
}

func (e extent) digits() int64 {
	if e.odd {
		return 2*e.bytes - 1
	}
	return 2 * e.bytes
}

// Array is a packed digit array. It owns its stream and is not safe for
// concurrent use.
type Array struct {
	s      *stream.Stream
	ext    extent
	closed bool

	window   []byte
	winStart int64
	winLen   int

	one [1]byte
}

// Open derives the digit count from the stream's length and last byte.
// The array takes ownership of s.
func Open(s *stream.Stream, optFns ...func(o *Options)) (*Array, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Array{
		s:      s,
		window: make([]byte, max(opts.WindowSize, 1)),
	}

	length, err := s.Length()
	if err != nil {
		return nil, err
	}
	a.ext.bytes = length
	if length > 0 {
		last, err := a.readByte(length - 1)
		if err != nil {
			return nil, fmt.Errorf("digits: read last byte: %w", err)
		}
		a.ext.odd = last&0x0F == Sentinel
	}
	return a, nil
}

// Len returns the number of digits.
func (a *Array) Len() int64 {
	return a.ext.digits()
}

// Get returns the digit at index i.
func (a *Array) Get(i int64) (byte, error) {
	if err := a.check(i); err != nil {
		return 0, err
	}
	b, err := a.byteAt(i / 2)
	if err != nil {
		return 0, err
	}
	if i%2 == 0 {
		return b >> 4, nil
	}
	return b & 0x0F, nil
}

// Set stores v at index i by rewriting the byte that holds it.
func (a *Array) Set(i int64, v byte) error {
	if err := a.check(i); err != nil {
		return err
	}
	if v > MaxValue {
		return fmt.Errorf("%w: %d", ErrOverflow, v)
	}

	bi := i / 2
	b, err := a.readByte(bi)
	if err != nil {
		return err
	}
	if i%2 == 0 {
		b = b&0x0F | v<<4
	} else {
		b = b&0xF0 | v
	}

	a.one[0] = b
	if _, err := a.s.WriteSpan(bi, a.one[:]); err != nil {
		return err
	}
	if bi >= a.winStart && bi < a.winStart+int64(a.winLen) {
		a.window[bi-a.winStart] = b
	}
	return nil
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
	if i < 0 || i >= a.ext.digits() {
		return &RangeError{Index: i, Length: a.ext.digits()}
	}
	return nil
}

// byteAt serves byte bi from the window, refilling it starting at bi on a
// miss. Forward scans therefore cost one stream read per window.
func (a *Array) byteAt(bi int64) (byte, error) {
	if bi >= a.winStart && bi < a.winStart+int64(a.winLen) {
		return a.window[bi-a.winStart], nil
	}
	n, err := a.s.ReadSpan(bi, a.window)
	if err != nil {
		a.winLen = 0
		return 0, err
	}
	a.winStart, a.winLen = bi, n
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return a.window[0], nil
}

func (a *Array) readByte(bi int64) (byte, error) {
	n, err := a.s.ReadSpan(bi, a.one[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return a.one[0], nil
}
