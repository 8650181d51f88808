package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/pisearch/internal/cache"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheBlockSize is the block size used by CachingStore when none is given.
const DefaultCacheBlockSize = 64 << 10

// CachingStore wraps a BlobStore and caches aligned blocks of every blob it
// opens. Binary search over a remote suffix array revisits the same upper
// levels of the search tree on every query; those blocks stay hot.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultCacheBlockSize if <= 0.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultCacheBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Path == name
	})
}

// CachingBlob wraps a Blob and serves reads from the block cache.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	size := b.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	want := p
	if rem := size - off; int64(len(want)) > rem {
		want = want[:rem]
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(want)) - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		lo := max(blkStart, off)
		hi := min(blkStart+b.blockSize, off+int64(len(want)))
		if hi <= lo {
			continue
		}

		data, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return total, err
		}

		src := lo - blkStart
		if src >= int64(len(data)) {
			break
		}
		total += copy(want[lo-off:hi-off], data[src:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache loads the blocks in [startBlock, endBlock], fetching each
// contiguous run of missing blocks with a single backend request.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct{ start, count int64 }

	var missing []run
	cur := run{start: -1}

	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, cache.CacheKey{Path: b.name, Block: blk}); ok {
			if cur.start != -1 {
				missing = append(missing, cur)
				cur = run{start: -1}
			}
			continue
		}
		if cur.start == -1 {
			cur = run{start: blk}
		}
		cur.count++
	}
	if cur.start != -1 {
		missing = append(missing, cur)
	}
	if len(missing) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	size := b.Size()
	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			if byteStart >= size {
				return nil
			}
			byteSize := min(r.count*b.blockSize, size-byteStart)

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Copy so a single block does not pin the whole run.
				block := make([]byte, hi-lo)
				copy(block, buf[lo:hi])
				b.cache.Set(gctx, cache.CacheKey{Path: b.name, Block: r.start + i}, block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	key := cache.CacheKey{Path: b.name, Block: blk}
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	// Evicted between fill and use, or refused by the memory budget.
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, buf)
	}
	return buf, nil
}
