package digits

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hupe1980/pisearch/stream"
)

// Encoder packs digit values into the array byte format.
type Encoder struct {
	w       *bufio.Writer
	pending byte
	half    bool
	count   int64
	closed  bool
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteDigit appends one value in [0, MaxValue].
func (e *Encoder) WriteDigit(v byte) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if v > MaxValue {
		return fmt.Errorf("%w: %d", ErrOverflow, v)
	}
	e.count++
	if !e.half {
		e.pending = v << 4
		e.half = true
		return nil
	}
	e.half = false
	return e.w.WriteByte(e.pending | v)
}

// WriteDigits appends values.
func (e *Encoder) WriteDigits(values []byte) error {
	for _, v := range values {
		if err := e.WriteDigit(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteString appends the ASCII digits of s. Nothing is written if s
// contains a non-digit.
func (e *Encoder) WriteString(s string) error {
	values, err := Parse(s)
	if err != nil {
		return err
	}
	return e.WriteDigits(values)
}

// Count returns the number of digits written.
func (e *Encoder) Count() int64 { return e.count }

// Close pads an odd digit count with Sentinel and flushes. It does not
// close the underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.half {
		e.half = false
		if err := e.w.WriteByte(e.pending | Sentinel); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

// Parse converts ASCII digits to values.
func Parse(s string) ([]byte, error) {
	values := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidDigit, c, i)
		}
		values[i] = c - '0'
	}
	return values, nil
}

// Create encodes values at the current position of s and opens the result
// as an Array. s must be readable and writable and should be empty.
func Create(s *stream.Stream, values []byte, optFns ...func(o *Options)) (*Array, error) {
	enc := NewEncoder(s)
	if err := enc.WriteDigits(values); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return Open(s, optFns...)
}
