package pisearch

import (
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/internal/cache"
)

// Source locates a persisted index.
type Source interface {
	backend(o *options) (*backend, error)
}

type backend struct {
	bs       blobstore.BlobStore
	local    *blobstore.LocalStore // nil for remote sources
	cache    cache.BlockCache      // nil unless WithBlockCache
	location string
}

type localSource struct {
	dir string
}

// Local opens the index stored in dir.
func Local(dir string) Source {
	return localSource{dir: dir}
}

func (s localSource) backend(*options) (*backend, error) {
	info, err := os.Stat(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, s.dir)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIndexNotFound, s.dir)
	}

	ls := blobstore.NewLocalStore(s.dir)
	return &backend{bs: ls, local: ls, location: s.dir}, nil
}

type remoteSource struct {
	bs blobstore.BlobStore
}

// Remote opens the index stored in bs, e.g. an S3 or MinIO bucket prefix.
func Remote(bs blobstore.BlobStore) Source {
	return remoteSource{bs: bs}
}

func (s remoteSource) backend(o *options) (*backend, error) {
	be := &backend{bs: s.bs, location: fmt.Sprintf("%T", s.bs)}
	if o.cacheBytes > 0 {
		c := cache.NewLRUBlockCache(o.cacheBytes, o.rc)
		be.cache = c
		be.bs = blobstore.NewCachingStore(s.bs, c, o.cacheBlockSize)
	}
	return be, nil
}
