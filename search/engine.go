package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/pisearch/digits"
	"github.com/hupe1980/pisearch/suffix"
)

var (
	// ErrInvalidQuery is returned for query values outside 0-9.
	ErrInvalidQuery = errors.New("search: invalid query")
	// ErrInvalidResult is returned when a Result does not fit the suffix array.
	ErrInvalidResult = errors.New("search: invalid result range")
)

// Digits is random access to the searched digit sequence.
type Digits interface {
	Len() int64
	Get(i int64) (byte, error)
}

// Offsets is random access to the suffix array.
type Offsets interface {
	Len() int64
	At(i int64) (int64, error)
}

var (
	_ Digits  = (*digits.Array)(nil)
	_ Offsets = (*suffix.Array)(nil)
)

type options struct {
	prefix PrefixIndex
}

// Option configures an Engine.
type Option func(*options)

// WithPrefixIndex seeds searches from precomputed prefix ranges.
func WithPrefixIndex(pi PrefixIndex) Option {
	return func(o *options) {
		o.prefix = pi
	}
}

// Engine answers prefix queries over one digit sequence and its suffix
// array. It inherits the thread-safety of its inputs, which for the
// stream-backed arrays means one Engine per goroutine.
type Engine struct {
	digits  Digits
	offsets Offsets
	prefix  PrefixIndex
}

// New creates an Engine.
func New(d Digits, sa Offsets, optFns ...Option) *Engine {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	return &Engine{digits: d, offsets: sa, prefix: o.prefix}
}

// Len returns the number of suffix-array positions.
func (e *Engine) Len() int64 { return e.offsets.Len() }

// Search returns the range of positions whose suffix starts with query.
// Query values are digits 0-9. The empty query matches every position.
func (e *Engine) Search(ctx context.Context, query []byte) (Result, error) {
	if err := validateQuery(query); err != nil {
		return Result{}, err
	}

	lo, hi, depth := int64(0), e.offsets.Len(), 0
	if e.prefix != nil {
		for l := min(len(query), e.prefix.Depth()); l > 0; l-- {
			if r, ok := e.prefix.Lookup(query[:l]); ok {
				lo, hi, depth = r.Min, r.Max, l
				break
			}
		}
	}
	if depth == len(query) || lo == hi {
		return Result{Min: lo, Max: hi}, nil
	}
	return e.narrow(ctx, query, lo, hi, depth)
}

// SearchString is Search for an ASCII digit string.
func (e *Engine) SearchString(ctx context.Context, query string) (Result, error) {
	q, err := digits.Parse(query)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return e.Search(ctx, q)
}

// Occurrences returns the digit offsets of every position in r.
func (e *Engine) Occurrences(ctx context.Context, r Result) (*roaring64.Bitmap, error) {
	if r.Min < 0 || r.Max < r.Min || r.Max > e.offsets.Len() {
		return nil, fmt.Errorf("%w: %s of %d", ErrInvalidResult, r, e.offsets.Len())
	}
	bm := roaring64.New()
	for p := r.Min; p < r.Max; p++ {
		if (p-r.Min)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		off, err := e.offsets.At(p)
		if err != nil {
			return nil, err
		}
		bm.Add(uint64(off))
	}
	return bm, nil
}

// narrow searches [lo, hi), in which every suffix is known to start with
// query[:skip].
func (e *Engine) narrow(ctx context.Context, query []byte, lo, hi int64, skip int) (Result, error) {
	first, err := e.bound(ctx, query, lo, hi, skip, false)
	if err != nil {
		return Result{}, err
	}
	last, err := e.bound(ctx, query, first, hi, skip, true)
	if err != nil {
		return Result{}, err
	}
	return Result{Min: first, Max: last}, nil
}

// bound returns the first position in [lo, hi) whose comparison is >= 0,
// or > 0 when upper is set.
func (e *Engine) bound(ctx context.Context, query []byte, lo, hi int64, skip int, upper bool) (int64, error) {
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mid := lo + (hi-lo)/2
		c, err := e.compare(mid, query, skip)
		if err != nil {
			return 0, err
		}
		if c < 0 || (upper && c == 0) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// compare orders the suffix at position p against query: -1 if it sorts
// before, 0 if it starts with query, +1 if it sorts after.
func (e *Engine) compare(p int64, query []byte, skip int) (int, error) {
	off, err := e.offsets.At(p)
	if err != nil {
		return 0, err
	}
	n := e.digits.Len()
	for j := skip; j < len(query); j++ {
		idx := off + int64(j)
		if idx >= n {
			return -1, nil
		}
		d, err := e.digits.Get(idx)
		if err != nil {
			return 0, err
		}
		switch {
		case d < query[j]:
			return -1, nil
		case d > query[j]:
			return 1, nil
		}
	}
	return 0, nil
}

func validateQuery(query []byte) error {
	for i, v := range query {
		if v > 9 {
			return fmt.Errorf("%w: value %d at position %d", ErrInvalidQuery, v, i)
		}
	}
	return nil
}
