package store

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/resource"
)

// RangeStore is a read-only Store over a blobstore.Blob. Every block is one
// ranged read, throttled by the resource controller's IO limit.
type RangeStore struct {
	base

	ctx  context.Context
	blob blobstore.Blob
	size int64
	pos  int64
	rc   *resource.Controller
}

// OpenBlob wraps blob. The mode must be ModeRead. The store takes ownership
// of blob and closes it on Close. ctx bounds every read the store issues.
func OpenBlob(ctx context.Context, blob blobstore.Blob, mode Mode, buf []byte, optFns ...Option) (*RangeStore, error) {
	b, err := newBase(mode, buf)
	if err != nil {
		return nil, err
	}
	if mode.CanWrite() {
		return nil, ErrModeNotSupported
	}
	o := applyOptions(optFns)

	return &RangeStore{
		base: b,
		ctx:  ctx,
		blob: blob,
		size: blob.Size(),
		rc:   o.rc,
	}, nil
}

// ReadBlocks reads up to count bytes at the current position.
func (s *RangeStore) ReadBlocks(count int) (int, error) {
	if err := s.checkRead(count); err != nil {
		return 0, err
	}
	n := min(int64(count), s.size-s.pos)
	if n <= 0 {
		return 0, nil
	}
	if err := s.rc.AcquireIO(s.ctx, int(n)); err != nil {
		return 0, err
	}
	got, err := s.blob.ReadAt(s.ctx, s.buf[:n], s.pos)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	s.pos += int64(got)
	return got, err
}

// WriteBlocks always fails: blobs are immutable once published.
func (s *RangeStore) WriteBlocks(int) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return 0, ErrModeNotSupported
}

// Position returns the current position.
func (s *RangeStore) Position() (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.pos, nil
}

// SetPosition moves the cursor.
func (s *RangeStore) SetPosition(pos int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if pos < 0 || pos > s.size {
		return ErrInvalidPosition
	}
	s.pos = pos
	return nil
}

// Length returns the blob size.
func (s *RangeStore) Length() (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.size, nil
}

// Close closes the underlying blob.
func (s *RangeStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.blob.Close()
}
