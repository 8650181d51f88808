package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/hupe1980/pisearch/resource"
)

// Reader reads a Blob sequentially from offset 0.
type Reader struct {
	ctx  context.Context
	blob Blob
	off  int64
}

// NewReader returns an io.Reader over b. Every Read is one ReadAt.
func NewReader(ctx context.Context, b Blob) *Reader {
	return &Reader{ctx: ctx, blob: b}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}

// ReadLimited reads a whole blob into memory through the IO limit of rc. It
// is meant for small blobs such as manifests and prefix tables. A nil rc
// reads without limit.
func ReadLimited(ctx context.Context, s BlobStore, name string, rc *resource.Controller) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	buf := bytes.NewBuffer(make([]byte, 0, b.Size()))
	if _, err := buf.ReadFrom(resource.NewRateLimitedReader(ctx, NewReader(ctx, b), rc)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
