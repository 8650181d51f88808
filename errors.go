package pisearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pisearch/digits"
	"github.com/hupe1980/pisearch/internal/compress"
	"github.com/hupe1980/pisearch/manifest"
	"github.com/hupe1980/pisearch/search"
	"github.com/hupe1980/pisearch/stream"
	"github.com/hupe1980/pisearch/suffix"
)

var (
	// ErrClosed is returned by every operation on a closed Index.
	ErrClosed = errors.New("pisearch: index closed")
	// ErrIndexNotFound is returned when the source holds no index.
	ErrIndexNotFound = errors.New("pisearch: index not found")
	// ErrCorrupt is returned when index files disagree with the manifest or
	// with each other.
	ErrCorrupt = errors.New("pisearch: index corrupt")
	// ErrInvalidQuery is returned for queries containing non-digits.
	ErrInvalidQuery = errors.New("pisearch: invalid query")
	// ErrInvalidArgument is returned for out-of-range offsets and counts.
	ErrInvalidArgument = errors.New("pisearch: invalid argument")
)

// ErrSizeMismatch indicates an index file whose size does not match the
// manifest.
//
// It matches ErrCorrupt under errors.Is.
type ErrSizeMismatch struct {
	File     string
	Expected int64
	Actual   int64
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("pisearch: %s: expected %d bytes, got %d", e.File, e.Expected, e.Actual)
}

func (e *ErrSizeMismatch) Unwrap() error { return ErrCorrupt }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, stream.ErrDisposed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, manifest.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrIndexNotFound, err)
	}
	if errors.Is(err, search.ErrInvalidQuery) {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if errors.Is(err, search.ErrInvalidResult) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	// Anything that means the persisted bytes are inconsistent.
	for _, target := range []error{
		manifest.ErrInvalid,
		suffix.ErrCorrupt,
		suffix.ErrInvalidWidth,
		search.ErrInvalidPrefixTable,
		search.ErrChecksum,
		search.ErrInvalidDepth,
		compress.ErrCorrupt,
		digits.ErrOutOfRange,
		suffix.ErrOutOfRange,
	} {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	return err
}
