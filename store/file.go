package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/pisearch/internal/fs"
)

// FileStore is a Store over a raw file handle.
//
// Position and length are taken from the operating system on every call, so
// they are never truncated to 32 bits. Each ReadBlocks or WriteBlocks call
// issues exactly one native read or write. There is no user-space buffering
// beyond the scratch buffer.
type FileStore struct {
	base

	path string
	f    fs.File
}

// OpenFile opens path in the given mode.
//
// ModeRead requires an existing file; ModeWrite and ModeReadWrite create it
// when missing. ModeWrite truncates an existing file, ModeReadWrite keeps its
// contents. Opening a directory fails with ErrIsDirectory.
func OpenFile(path string, mode Mode, buf []byte, optFns ...Option) (*FileStore, error) {
	b, err := newBase(mode, buf)
	if err != nil {
		return nil, err
	}
	o := applyOptions(optFns)

	info, err := o.fsys.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	case errors.Is(err, os.ErrNotExist):
		if !mode.CanWrite() {
			return nil, fmt.Errorf("store: open %s: %w", path, ErrNotFound)
		}
	case err != nil:
		return nil, fmt.Errorf("store: stat %s: %w", path, err)
	}

	f, err := o.fsys.OpenFile(path, modeFlags(mode)|o.flags, o.perm)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	return &FileStore{base: b, path: path, f: f}, nil
}

func modeFlags(mode Mode) int {
	switch mode {
	case ModeRead:
		return os.O_RDONLY
	case ModeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		return os.O_RDWR | os.O_CREATE
	}
}

// Path returns the file path.
func (s *FileStore) Path() string { return s.path }

// ReadBlocks reads up to count bytes at the current position.
func (s *FileStore) ReadBlocks(count int) (int, error) {
	if err := s.checkRead(count); err != nil {
		return 0, err
	}
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	length, err := s.fileLength()
	if err != nil {
		return 0, err
	}

	n := min(int64(count), length-pos)
	if n <= 0 {
		return 0, nil
	}
	got, err := s.f.Read(s.buf[:n])
	if err == io.EOF {
		// File shrank between Stat and Read.
		err = nil
	}
	return got, err
}

// WriteBlocks writes buf[:count] at the current position.
func (s *FileStore) WriteBlocks(count int) (int, error) {
	if err := s.checkWrite(count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return s.f.Write(s.buf[:count])
}

// Position returns the file offset.
func (s *FileStore) Position() (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.f.Seek(0, io.SeekCurrent)
}

// SetPosition seeks to pos, which must lie in [0, length].
func (s *FileStore) SetPosition(pos int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	length, err := s.fileLength()
	if err != nil {
		return err
	}
	if pos < 0 || pos > length {
		return ErrInvalidPosition
	}
	_, err = s.f.Seek(pos, io.SeekStart)
	return err
}

// Length returns the file size.
func (s *FileStore) Length() (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.fileLength()
}

// Flush is not provided by the raw file layer.
func (s *FileStore) Flush() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return ErrNotImplemented
}

// Truncate is not provided by the raw file layer.
func (s *FileStore) Truncate(int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return ErrNotImplemented
}

// Sync commits the file contents to stable storage.
func (s *FileStore) Sync() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.f.Sync()
}

// Close closes the file handle. Only the first call reaches the OS.
func (s *FileStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

func (s *FileStore) fileLength() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
