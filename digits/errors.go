package digits

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned for an index outside [0, Len()).
	ErrOutOfRange = errors.New("digits: index out of range")
	// ErrOverflow is returned when a value above MaxValue is stored.
	ErrOverflow = errors.New("digits: value overflows digit range")
	// ErrInvalidDigit is returned by Parse and Encoder.WriteString for
	// characters other than '0' to '9'.
	ErrInvalidDigit = errors.New("digits: invalid digit")
	// ErrEncoderClosed is returned when writing to a closed Encoder.
	ErrEncoderClosed = errors.New("digits: encoder closed")
)

// RangeError reports an index outside the array.
type RangeError struct {
	Index  int64
	Length int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("digits: index %d out of range [0, %d)", e.Index, e.Length)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
