package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/store"
)

var (
	// ErrDisposed is returned by every operation on a closed stream.
	ErrDisposed = errors.New("stream: disposed")
	// ErrNilBuffer is returned when a transfer is given a nil buffer.
	ErrNilBuffer = errors.New("stream: nil buffer")
	// ErrNegativeArgument is returned for a negative offset or count.
	ErrNegativeArgument = errors.New("stream: negative offset or count")
	// ErrBufferTooSmall is returned when offset+count exceeds the buffer.
	ErrBufferTooSmall = errors.New("stream: buffer too small for offset and count")
	// ErrInvalidWhence is returned by Seek for an unknown whence.
	ErrInvalidWhence = errors.New("stream: invalid whence")
)

// DefaultBlockSize is the scratch buffer size used by the constructors.
const DefaultBlockSize = 64 << 10

// Options configures the stream constructors.
type Options struct {
	// BlockSize is the scratch buffer length handed to the store.
	BlockSize int
	// StoreOptions are passed to the store constructor.
	StoreOptions []store.Option
}

// DefaultOptions returns default stream options.
var DefaultOptions = Options{
	BlockSize: DefaultBlockSize,
}

// Stream exposes a store.Store as a seekable byte stream.
type Stream struct {
	st      store.Store
	closed  bool
	cleanup runtime.Cleanup
}

var (
	_ io.ReadWriteSeeker = (*Stream)(nil)
	_ io.Closer          = (*Stream)(nil)
)

// New wraps st. The stream takes ownership of st.
func New(st store.Store) *Stream {
	s := &Stream{st: st}
	s.cleanup = runtime.AddCleanup(s, func(st store.Store) { _ = st.Close() }, st)
	return s
}

// OpenFile opens a file-backed stream.
func OpenFile(path string, mode store.Mode, optFns ...func(o *Options)) (*Stream, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	st, err := store.OpenFile(path, mode, make([]byte, opts.BlockSize), opts.StoreOptions...)
	if err != nil {
		return nil, err
	}
	return New(st), nil
}

// NewMemory creates a memory-backed stream with the given capacity.
func NewMemory(capacity int64, mode store.Mode, optFns ...func(o *Options)) (*Stream, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	st, err := store.NewMemory(capacity, mode, make([]byte, opts.BlockSize), opts.StoreOptions...)
	if err != nil {
		return nil, err
	}
	return New(st), nil
}

// OpenBlob creates a read-only stream over blob.
func OpenBlob(ctx context.Context, blob blobstore.Blob, optFns ...func(o *Options)) (*Stream, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	st, err := store.OpenBlob(ctx, blob, store.ModeRead, make([]byte, opts.BlockSize), opts.StoreOptions...)
	if err != nil {
		return nil, err
	}
	return New(st), nil
}

func applyOptions(optFns []func(o *Options)) (Options, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		return opts, store.ErrInvalidBlockSize
	}
	return opts, nil
}

// Store returns the wrapped store.
func (s *Stream) Store() store.Store { return s.st }

// ReadInto reads up to count bytes into buf[offset:offset+count].
//
// It loops over block-sized store reads until count bytes are read or the
// store is exhausted. A short count at end of data is not an error.
func (s *Stream) ReadInto(buf []byte, offset, count int) (int, error) {
	if err := s.validate(buf, offset, count); err != nil {
		return 0, err
	}

	scratch := s.st.Buffer()
	total := 0
	for total < count {
		n, err := s.st.ReadBlocks(min(len(scratch), count-total))
		copy(buf[offset+total:], scratch[:n])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// WriteFrom writes buf[offset:offset+count] at the current position.
func (s *Stream) WriteFrom(buf []byte, offset, count int) (int, error) {
	if err := s.validate(buf, offset, count); err != nil {
		return 0, err
	}

	scratch := s.st.Buffer()
	total := 0
	for total < count {
		k := copy(scratch, buf[offset+total:offset+count])
		n, err := s.st.WriteBlocks(k)
		total += n
		if err != nil {
			return total, err
		}
		if n < k {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrDisposed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := s.ReadInto(p, 0, len(p))
	if err == nil && n == 0 {
		return 0, io.EOF
	}
	return n, err
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrDisposed
	}
	if len(p) == 0 {
		return 0, nil
	}
	return s.WriteFrom(p, 0, len(p))
}

// Seek implements io.Seeker. Seeking past the end of the store is not
// supported and returns store.ErrInvalidPosition.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, ErrDisposed
	}

	var origin int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		pos, err := s.st.Position()
		if err != nil {
			return 0, err
		}
		origin = pos
	case io.SeekEnd:
		length, err := s.st.Length()
		if err != nil {
			return 0, err
		}
		origin = length
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidWhence, whence)
	}

	abs := origin + offset
	if err := s.st.SetPosition(abs); err != nil {
		return 0, err
	}
	return abs, nil
}

// ReadSpan seeks to pos and reads up to len(p) bytes. It moves the cursor
// and is not safe for concurrent use.
func (s *Stream) ReadSpan(pos int64, p []byte) (int, error) {
	if s.closed {
		return 0, ErrDisposed
	}
	if err := s.st.SetPosition(pos); err != nil {
		return 0, err
	}
	return s.ReadInto(p, 0, len(p))
}

// WriteSpan seeks to pos and writes p.
func (s *Stream) WriteSpan(pos int64, p []byte) (int, error) {
	if s.closed {
		return 0, ErrDisposed
	}
	if err := s.st.SetPosition(pos); err != nil {
		return 0, err
	}
	return s.WriteFrom(p, 0, len(p))
}

// Length returns the store length in bytes.
func (s *Stream) Length() (int64, error) {
	if s.closed {
		return 0, ErrDisposed
	}
	return s.st.Length()
}

// Position returns the cursor position.
func (s *Stream) Position() (int64, error) {
	if s.closed {
		return 0, ErrDisposed
	}
	return s.st.Position()
}

// Close closes the underlying store. Subsequent calls return nil.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cleanup.Stop()
	return s.st.Close()
}

func (s *Stream) validate(buf []byte, offset, count int) error {
	switch {
	case s.closed:
		return ErrDisposed
	case buf == nil:
		return ErrNilBuffer
	case offset < 0 || count < 0:
		return ErrNegativeArgument
	case offset > len(buf) || count > len(buf)-offset:
		return ErrBufferTooSmall
	}
	return nil
}
