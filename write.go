package pisearch

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/codec"
	"github.com/hupe1980/pisearch/digits"
	"github.com/hupe1980/pisearch/manifest"
	"github.com/hupe1980/pisearch/resource"
	"github.com/hupe1980/pisearch/search"
	"github.com/hupe1980/pisearch/stream"
	"github.com/hupe1980/pisearch/suffix"
)

// WriteOptions configures WriteIndex.
type WriteOptions struct {
	// PrefixDepth is the depth of the prefix table. 0 writes no table.
	PrefixDepth int
	// Compression is used for the prefix table.
	Compression search.Compression
	// Codec encodes the manifest. If nil, codec.Default is used.
	Codec codec.Codec
	// Logger receives a record of the write. If nil, nothing is logged.
	Logger *Logger
	// Resource throttles uploads with its IO limit. May be nil.
	Resource *resource.Controller

	DigitsFile string
	SuffixFile string
	PrefixFile string
}

// DefaultWriteOptions returns default write options.
var DefaultWriteOptions = WriteOptions{
	PrefixDepth: 3,
	Compression: search.CompressionZSTD,
	DigitsFile:  "digits.bin",
	SuffixFile:  "suffix.bin",
	PrefixFile:  "prefix.bin",
}

// WriteIndex persists a digit sequence and its suffix array to bs.
//
// seq holds digit values 0-9 and sa the suffix array of seq as produced by
// an external builder; WriteIndex checks offsets are in range but not that
// they are sorted. The manifest is written last, so a partially written
// index is never opened.
func WriteIndex(ctx context.Context, bs blobstore.BlobStore, seq []byte, sa []int64, optFns ...func(o *WriteOptions)) (*manifest.Manifest, error) {
	opts := DefaultWriteOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}

	m, err := writeIndex(ctx, bs, seq, sa, opts)
	width := 0
	if m != nil {
		width = m.Suffix.Width
	}
	opts.Logger.LogWrite(ctx, int64(len(seq)), width, err)
	return m, err
}

func writeIndex(ctx context.Context, bs blobstore.BlobStore, seq []byte, sa []int64, opts WriteOptions) (*manifest.Manifest, error) {
	n := int64(len(seq))
	if int64(len(sa)) != n {
		return nil, fmt.Errorf("%w: %d suffixes for %d digits", ErrInvalidArgument, len(sa), n)
	}
	for i, v := range seq {
		if v > 9 {
			return nil, fmt.Errorf("%w: digit %d at offset %d", ErrInvalidArgument, v, i)
		}
	}
	for i, off := range sa {
		if off < 0 || off >= n {
			return nil, fmt.Errorf("%w: suffix %d points at %d", ErrInvalidArgument, i, off)
		}
	}
	if opts.PrefixDepth < 0 || opts.PrefixDepth > search.MaxPrefixDepth {
		return nil, fmt.Errorf("%w: %d", search.ErrInvalidDepth, opts.PrefixDepth)
	}

	width := suffix.WidthFor(max(n-1, 0))
	m := &manifest.Manifest{
		Digits: manifest.DigitsInfo{Path: opts.DigitsFile, Count: n, Bytes: (n + 1) / 2},
		Suffix: manifest.SuffixInfo{Path: opts.SuffixFile, Width: width, Count: n},
	}

	err := writeBlob(ctx, bs, opts.DigitsFile, opts.Resource, func(w io.Writer) error {
		enc := digits.NewEncoder(w)
		if err := enc.WriteDigits(seq); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return nil, err
	}

	err = writeBlob(ctx, bs, opts.SuffixFile, opts.Resource, func(w io.Writer) error {
		sw, err := suffix.NewWriter(w, width)
		if err != nil {
			return err
		}
		for _, off := range sa {
			if err := sw.Write(off); err != nil {
				return err
			}
		}
		return sw.Flush()
	})
	if err != nil {
		return nil, err
	}

	if opts.PrefixDepth > 0 {
		t, err := buildPrefixTable(ctx, bs, m, opts.PrefixDepth)
		if err != nil {
			return nil, err
		}
		err = writeBlob(ctx, bs, opts.PrefixFile, opts.Resource, func(w io.Writer) error {
			return t.Encode(w, opts.Compression)
		})
		if err != nil {
			return nil, err
		}
		m.Prefix = &manifest.PrefixInfo{Path: opts.PrefixFile, Depth: opts.PrefixDepth}
	}

	if err := manifest.NewStore(bs, opts.Codec).Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// writeBlob streams fn's output into a new blob and removes it on failure.
func writeBlob(ctx context.Context, bs blobstore.BlobStore, name string, rc *resource.Controller, fn func(w io.Writer) error) error {
	wb, err := bs.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := fn(resource.NewRateLimitedWriter(ctx, wb, rc)); err != nil {
		_ = wb.Close()
		_ = bs.Delete(ctx, name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := wb.Sync(); err != nil {
		_ = wb.Close()
		_ = bs.Delete(ctx, name)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	return wb.Close()
}

// buildPrefixTable reads the freshly written files back and resolves the
// prefix ranges against them.
func buildPrefixTable(ctx context.Context, bs blobstore.BlobStore, m *manifest.Manifest, depth int) (*search.PrefixTable, error) {
	open := func(name string) (*stream.Stream, error) {
		blob, err := bs.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		s, err := stream.OpenBlob(ctx, blob)
		if err != nil {
			_ = blob.Close()
			return nil, err
		}
		return s, nil
	}

	ds, err := open(m.Digits.Path)
	if err != nil {
		return nil, err
	}
	da, err := digits.Open(ds)
	if err != nil {
		_ = ds.Close()
		return nil, err
	}
	defer da.Close()

	ss, err := open(m.Suffix.Path)
	if err != nil {
		return nil, err
	}
	sa, err := suffix.Open(ss, m.Suffix.Width)
	if err != nil {
		_ = ss.Close()
		return nil, err
	}
	defer sa.Close()

	t, err := search.BuildPrefixTable(ctx, search.New(da, sa), depth)
	if err != nil {
		return nil, fmt.Errorf("build prefix table: %w", err)
	}
	return t, nil
}
