package pisearch

import (
	"log/slog"

	"github.com/hupe1980/pisearch/codec"
	"github.com/hupe1980/pisearch/resource"
	"github.com/hupe1980/pisearch/stream"
)

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	maxReaders       int
	rc               *resource.Controller
	blockSize        int
	windowSize       int
	cacheBytes       int64
	cacheBlockSize   int64
	mmap             bool
	prefix           bool
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used to decode the manifest.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMaxReaders bounds the number of concurrently active readers, and
// with it the number of searches served at the same time. Each reader owns
// its own streams and buffers. Defaults to 4.
func WithMaxReaders(n int) Option {
	return func(o *options) {
		o.maxReaders = n
	}
}

// WithResourceController shares memory, IO and concurrency limits across
// indexes. It overrides WithMaxReaders with the controller's
// MaxConcurrentSearches.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithBlockSize sets the scratch buffer size of every store a reader opens.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithWindowSize sets the digit read window of every reader.
func WithWindowSize(n int) Option {
	return func(o *options) {
		o.windowSize = n
	}
}

// WithBlockCache caches remote blob reads in an LRU of the given size.
// blockSize 0 selects blobstore.DefaultCacheBlockSize. Ignored for local
// sources.
//
// Example:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("pi/"))
//	idx, _ := pisearch.Open(ctx, pisearch.Remote(s3Store), pisearch.WithBlockCache(256<<20, 0))
func WithBlockCache(bytes, blockSize int64) Option {
	return func(o *options) {
		o.cacheBytes = bytes
		o.cacheBlockSize = blockSize
	}
}

// WithMmap makes local readers go through memory-mapped blobs instead of
// plain file handles.
func WithMmap() Option {
	return func(o *options) {
		o.mmap = true
	}
}

// WithoutPrefixTable ignores a persisted prefix table.
func WithoutPrefixTable() Option {
	return func(o *options) {
		o.prefix = false
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pisearch.BasicMetricsCollector{}
//	idx, _ := pisearch.Open(ctx, pisearch.Local("./pi"), pisearch.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pisearch.NewJSONLogger(slog.LevelInfo)
//	idx, _ := pisearch.Open(ctx, pisearch.Local("./pi"), pisearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:      codec.Default,
		maxReaders: 4,
		blockSize:  stream.DefaultBlockSize,
		prefix:     true,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.maxReaders < 1 {
		o.maxReaders = 1
	}
	if o.rc == nil {
		o.rc = resource.NewController(resource.Config{
			MaxConcurrentSearches: int64(o.maxReaders),
		})
	} else {
		o.maxReaders = int(o.rc.Config().MaxConcurrentSearches)
	}
	return o
}
