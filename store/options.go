package store

import (
	"os"

	"github.com/hupe1980/pisearch/internal/fs"
	"github.com/hupe1980/pisearch/resource"
)

// DefaultChunkSize is the memory store chunk size. It keeps every single
// allocation far below 32-bit array limits.
const DefaultChunkSize = 32 << 20

type options struct {
	chunkSize int64
	rc        *resource.Controller
	fsys      fs.FileSystem
	flags     int
	perm      os.FileMode
}

// Option configures a store at open time.
type Option func(*options)

// WithChunkSize sets the memory store chunk size. It must be at least the block size.
func WithChunkSize(size int64) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithResourceController charges memory chunks and remote reads against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithFileSystem replaces the filesystem used by file stores.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}

// WithFileFlags adds platform-specific open flags (e.g. os.O_SYNC) to the
// flags derived from the mode.
func WithFileFlags(flags int) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// WithFilePerm sets the permission bits for files created by write modes.
func WithFilePerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		chunkSize: DefaultChunkSize,
		fsys:      fs.Default,
		perm:      0o644,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
