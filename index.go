package pisearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/digits"
	"github.com/hupe1980/pisearch/manifest"
	"github.com/hupe1980/pisearch/search"
	"github.com/hupe1980/pisearch/store"
	"github.com/hupe1980/pisearch/stream"
	"github.com/hupe1980/pisearch/suffix"
)

// Index is an opened, read-only index. It is safe for concurrent use.
//
// Every query borrows a reader: a digit array, a suffix array and an
// engine with their own streams, buffers and cursors. Readers are opened
// lazily, reused across queries and bounded by WithMaxReaders.
type Index struct {
	opts   options
	be     *backend
	m      *manifest.Manifest
	prefix *search.PrefixTable
	logger *Logger

	// prefixBytes is reserved on opts.rc while the prefix table is loaded.
	prefixBytes int64

	// ctx outlives the Open call; readers use it for every store read.
	ctx context.Context

	mu     sync.Mutex
	idle   []*reader
	closed bool
}

type reader struct {
	digits *digits.Array
	sa     *suffix.Array
	engine *search.Engine
}

func (r *reader) Close() error {
	return errors.Join(r.digits.Close(), r.sa.Close())
}

// Open opens the index at src.
func Open(ctx context.Context, src Source, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	be, err := src.backend(&o)
	if err != nil {
		o.logger.LogOpen(ctx, 0, 0, err)
		return nil, err
	}

	ix := &Index{
		opts:   o,
		be:     be,
		logger: o.logger.WithIndex(be.location),
		ctx:    context.WithoutCancel(ctx),
	}
	if err := ix.load(ctx); err != nil {
		err = translateError(err)
		ix.logger.LogOpen(ctx, 0, 0, err)
		ix.releasePrefix()
		if be.cache != nil {
			_ = be.cache.Close()
		}
		return nil, err
	}

	ix.logger.LogOpen(ctx, ix.m.Digits.Count, ix.PrefixDepth(), nil)
	return ix, nil
}

func (ix *Index) load(ctx context.Context) error {
	m, err := manifest.NewStore(ix.be.bs, ix.opts.codec, manifest.WithResourceController(ix.opts.rc)).Load(ctx)
	if err != nil {
		return err
	}
	ix.m = m

	if err := ix.checkSize(ctx, m.Digits.Path, m.Digits.Bytes); err != nil {
		return err
	}
	if err := ix.checkSize(ctx, m.Suffix.Path, m.Suffix.Count*int64(m.Suffix.Width)); err != nil {
		return err
	}

	if m.Prefix != nil && ix.opts.prefix {
		data, err := blobstore.ReadLimited(ctx, ix.be.bs, m.Prefix.Path, ix.opts.rc)
		if err != nil {
			return fmt.Errorf("read prefix table: %w", err)
		}
		t, err := search.ReadPrefixTable(bytes.NewReader(data))
		if err != nil {
			return err
		}
		if t.Positions() != m.Suffix.Count || t.Depth() != m.Prefix.Depth {
			return fmt.Errorf("%w: prefix table built for %d positions at depth %d",
				ErrCorrupt, t.Positions(), t.Depth())
		}
		if err := ix.opts.rc.AcquireMemory(ctx, t.MemoryBytes()); err != nil {
			return fmt.Errorf("reserve prefix table: %w", err)
		}
		ix.prefix = t
		ix.prefixBytes = t.MemoryBytes()
	}

	// Open one reader eagerly so a broken index fails here, not on first query.
	r, err := ix.openReader()
	if err != nil {
		return err
	}
	ix.idle = append(ix.idle, r)
	return nil
}

func (ix *Index) checkSize(ctx context.Context, name string, want int64) error {
	b, err := ix.be.bs.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer b.Close()
	if b.Size() != want {
		return &ErrSizeMismatch{File: name, Expected: want, Actual: b.Size()}
	}
	return nil
}

func (ix *Index) openStream(name string) (*stream.Stream, error) {
	so := func(o *stream.Options) {
		o.BlockSize = ix.opts.blockSize
		o.StoreOptions = []store.Option{store.WithResourceController(ix.opts.rc)}
	}
	if ix.be.local != nil && !ix.opts.mmap {
		return stream.OpenFile(ix.be.local.Path(name), store.ModeRead, so)
	}

	blob, err := ix.be.bs.Open(ix.ctx, name)
	if err != nil {
		return nil, err
	}
	s, err := stream.OpenBlob(ix.ctx, blob, so)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return s, nil
}

func (ix *Index) openReader() (r *reader, err error) {
	start := time.Now()
	defer func() {
		ix.opts.metricsCollector.RecordReaderOpen(time.Since(start), err)
	}()

	ds, err := ix.openStream(ix.m.Digits.Path)
	if err != nil {
		return nil, err
	}
	da, err := digits.Open(ds, func(o *digits.Options) {
		if ix.opts.windowSize > 0 {
			o.WindowSize = ix.opts.windowSize
		}
	})
	if err != nil {
		_ = ds.Close()
		return nil, err
	}
	if da.Len() != ix.m.Digits.Count {
		_ = da.Close()
		return nil, fmt.Errorf("%w: %s holds %d digits, manifest says %d",
			ErrCorrupt, ix.m.Digits.Path, da.Len(), ix.m.Digits.Count)
	}

	ss, err := ix.openStream(ix.m.Suffix.Path)
	if err != nil {
		_ = da.Close()
		return nil, err
	}
	sa, err := suffix.Open(ss, ix.m.Suffix.Width)
	if err != nil {
		_ = da.Close()
		_ = ss.Close()
		return nil, err
	}

	var engineOpts []search.Option
	if ix.prefix != nil {
		engineOpts = append(engineOpts, search.WithPrefixIndex(ix.prefix))
	}
	return &reader{
		digits: da,
		sa:     sa,
		engine: search.New(da, sa, engineOpts...),
	}, nil
}

func (ix *Index) acquire(ctx context.Context) (*reader, error) {
	if err := ix.opts.rc.AcquireSearch(ctx); err != nil {
		return nil, err
	}

	ix.mu.Lock()
	if ix.closed {
		ix.mu.Unlock()
		ix.opts.rc.ReleaseSearch()
		return nil, ErrClosed
	}
	if n := len(ix.idle); n > 0 {
		r := ix.idle[n-1]
		ix.idle = ix.idle[:n-1]
		ix.mu.Unlock()
		return r, nil
	}
	ix.mu.Unlock()

	r, err := ix.openReader()
	if err != nil {
		ix.opts.rc.ReleaseSearch()
		return nil, translateError(err)
	}
	return r, nil
}

func (ix *Index) release(r *reader) {
	ix.mu.Lock()
	keep := !ix.closed
	if keep {
		ix.idle = append(ix.idle, r)
	}
	ix.mu.Unlock()

	if !keep {
		_ = r.Close()
	}
	ix.opts.rc.ReleaseSearch()
}

func (ix *Index) withReader(ctx context.Context, fn func(r *reader) error) error {
	r, err := ix.acquire(ctx)
	if err != nil {
		return err
	}
	defer ix.release(r)
	return translateError(fn(r))
}

// Len returns the number of indexed digits.
func (ix *Index) Len() int64 { return ix.m.Digits.Count }

// PrefixDepth returns the depth of the loaded prefix table, or 0.
func (ix *Index) PrefixDepth() int {
	if ix.prefix == nil {
		return 0
	}
	return ix.prefix.Depth()
}

// Manifest returns a copy of the index manifest.
func (ix *Index) Manifest() manifest.Manifest { return *ix.m }

// Search returns the suffix-array range of every occurrence of query,
// given as digit values 0-9.
func (ix *Index) Search(ctx context.Context, query []byte) (search.Result, error) {
	start := time.Now()
	var res search.Result
	err := ix.withReader(ctx, func(r *reader) error {
		var err error
		res, err = r.engine.Search(ctx, query)
		return err
	})

	elapsed := time.Since(start)
	ix.opts.metricsCollector.RecordSearch(len(query), res.Len(), elapsed, err)
	ix.logger.LogSearch(ctx, len(query), res.Len(), elapsed, err)
	return res, err
}

// SearchString is Search for an ASCII digit string such as "14159".
func (ix *Index) SearchString(ctx context.Context, query string) (search.Result, error) {
	q, err := digits.Parse(query)
	if err != nil {
		return search.Result{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return ix.Search(ctx, q)
}

// SearchBatch runs the queries concurrently, at most one per reader.
// It returns the first error encountered.
func (ix *Index) SearchBatch(ctx context.Context, queries []string) ([]search.Result, error) {
	start := time.Now()
	results := make([]search.Result, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.maxReaders)
	for i, q := range queries {
		g.Go(func() error {
			r, err := ix.SearchString(gctx, q)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	err := g.Wait()

	ix.opts.metricsCollector.RecordBatchSearch(len(queries), time.Since(start), err)
	ix.logger.LogBatchSearch(ctx, len(queries), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Occurrences resolves a result to the digit offsets it covers.
func (ix *Index) Occurrences(ctx context.Context, res search.Result) (*roaring64.Bitmap, error) {
	start := time.Now()
	var bm *roaring64.Bitmap
	err := ix.withReader(ctx, func(r *reader) error {
		var err error
		bm, err = r.engine.Occurrences(ctx, res)
		return err
	})

	var n int64
	if bm != nil {
		n = int64(bm.GetCardinality())
	}
	ix.opts.metricsCollector.RecordOccurrences(n, time.Since(start), err)
	return bm, err
}

// Digits returns up to n digit values starting at offset. Reads past the
// end are clipped.
func (ix *Index) Digits(ctx context.Context, offset, n int64) ([]byte, error) {
	if offset < 0 || n < 0 || offset > ix.Len() {
		return nil, fmt.Errorf("%w: offset %d, count %d, length %d", ErrInvalidArgument, offset, n, ix.Len())
	}
	n = min(n, ix.Len()-offset)

	out := make([]byte, n)
	err := ix.withReader(ctx, func(r *reader) error {
		for i := range out {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			v, err := r.digits.Get(offset + int64(i))
			if err != nil {
				return err
			}
			out[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes all idle readers. Readers in use are closed when their
// query finishes. Close is idempotent.
func (ix *Index) Close() error {
	ix.mu.Lock()
	if ix.closed {
		ix.mu.Unlock()
		return nil
	}
	ix.closed = true
	idle := ix.idle
	ix.idle = nil
	ix.mu.Unlock()

	var errs []error
	for _, r := range idle {
		errs = append(errs, r.Close())
	}
	ix.releasePrefix()
	if ix.be.cache != nil {
		errs = append(errs, ix.be.cache.Close())
	}
	err := errors.Join(errs...)
	ix.logger.LogClose(ix.ctx, len(idle), err)
	return err
}

func (ix *Index) releasePrefix() {
	ix.opts.rc.ReleaseMemory(ix.prefixBytes)
	ix.prefixBytes = 0
}
