package store

import (
	"errors"
	"os"
)

var (
	// ErrClosed is returned by every operation on a closed store.
	ErrClosed = errors.New("store: closed")
	// ErrModeNotSupported is returned when the store cannot serve the
	// requested access mode, at open time or per operation.
	ErrModeNotSupported = errors.New("store: mode not supported")
	// ErrInvalidMode is returned for a mode outside ModeRead/ModeWrite/ModeReadWrite.
	ErrInvalidMode = errors.New("store: invalid mode")
	// ErrInvalidBlockSize is returned when the scratch buffer is empty or
	// larger than the chunk size.
	ErrInvalidBlockSize = errors.New("store: invalid block size")
	// ErrInvalidCapacity is returned for a negative memory capacity.
	ErrInvalidCapacity = errors.New("store: invalid capacity")
	// ErrInvalidCount is returned when a transfer count is negative or exceeds the block size.
	ErrInvalidCount = errors.New("store: count out of range")
	// ErrInvalidPosition is returned when a position is outside [0, length].
	ErrInvalidPosition = errors.New("store: position out of range")
	// ErrNotImplemented is returned by operations that belong to a richer I/O layer.
	ErrNotImplemented = errors.New("store: not implemented")
	// ErrIsDirectory is returned when a file store is opened on a directory.
	ErrIsDirectory = errors.New("store: path is a directory")
	// ErrMemoryLimit is returned when the memory budget refuses a new chunk.
	ErrMemoryLimit = errors.New("store: memory limit exceeded")
)

// ErrNotFound is returned when a read-only file store targets a missing path.
// It satisfies errors.Is(err, os.ErrNotExist).
var ErrNotFound = os.ErrNotExist

// Mode is the access mode a store is opened with.
type Mode uint8

const (
	// ModeRead allows ReadBlocks.
	ModeRead Mode = 1 << iota
	// ModeWrite allows WriteBlocks.
	ModeWrite
	// ModeReadWrite allows both.
	ModeReadWrite = ModeRead | ModeWrite
)

// CanRead reports whether m permits reads.
func (m Mode) CanRead() bool { return m&ModeRead != 0 }

// CanWrite reports whether m permits writes.
func (m Mode) CanWrite() bool { return m&ModeWrite != 0 }

func (m Mode) valid() bool { return m != 0 && m&^ModeReadWrite == 0 }

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeReadWrite:
		return "read-write"
	default:
		return "invalid"
	}
}

// Store is a byte container with a 64-bit length and position whose
// transfers are bounded by the block size.
type Store interface {
	// Buffer returns the scratch buffer transfers go through.
	Buffer() []byte
	// BlockSize returns len(Buffer()), the most bytes one call moves.
	BlockSize() int
	// ReadBlocks reads up to count bytes at the current position into
	// Buffer()[:n]. At the end of the store it returns 0, nil.
	ReadBlocks(count int) (int, error)
	// WriteBlocks writes Buffer()[:count] at the current position.
	WriteBlocks(count int) (int, error)
	// Position returns the current position.
	Position() (int64, error)
	// SetPosition moves the cursor to pos in [0, length].
	SetPosition(pos int64) error
	// Length returns the store length in bytes.
	Length() (int64, error)
	// Close releases the store. It is idempotent.
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*RangeStore)(nil)
)

// base holds what every backend shares: the borrowed buffer, the mode and
// the closed flag.
type base struct {
	buf    []byte
	mode   Mode
	closed bool
}

func newBase(mode Mode, buf []byte) (base, error) {
	if !mode.valid() {
		return base{}, ErrInvalidMode
	}
	if len(buf) == 0 {
		return base{}, ErrInvalidBlockSize
	}
	return base{buf: buf, mode: mode}, nil
}

// Buffer returns the scratch buffer.
func (b *base) Buffer() []byte { return b.buf }

// BlockSize returns the scratch buffer length.
func (b *base) BlockSize() int { return len(b.buf) }

// Mode returns the mode the store was opened with.
func (b *base) Mode() Mode { return b.mode }

func (b *base) checkOpen() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}

func (b *base) checkRead(count int) error {
	if b.closed {
		return ErrClosed
	}
	if !b.mode.CanRead() {
		return ErrModeNotSupported
	}
	if count < 0 || count > len(b.buf) {
		return ErrInvalidCount
	}
	return nil
}

func (b *base) checkWrite(count int) error {
	if b.closed {
		return ErrClosed
	}
	if !b.mode.CanWrite() {
		return ErrModeNotSupported
	}
	if count < 0 || count > len(b.buf) {
		return ErrInvalidCount
	}
	return nil
}
