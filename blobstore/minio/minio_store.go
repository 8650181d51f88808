package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/pisearch/blobstore"
)

// ErrBlobClosed is returned when a writable blob is closed twice.
var ErrBlobClosed = errors.New("minio: blob already closed")

// Options configures a Store.
type Options struct {
	// Prefix is prepended to every object key, e.g. "pi/".
	Prefix string
	// PartSize is the multipart chunk size for streaming uploads. Digit and
	// suffix files run to many gigabytes; 0 lets the client choose.
	PartSize uint64
	// StorageClass for uploaded objects, e.g. "REDUCED_REDUNDANCY".
	StorageClass string
}

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	opts   Options

	reads atomic.Int64
	bytes atomic.Int64
}

// NewStore creates a new MinIO blob store.
func NewStore(client *minio.Client, bucket string, optFns ...func(o *Options)) *Store {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client: client,
		bucket: bucket,
		opts:   opts,
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) func(o *Options) {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.opts.Prefix, name)
}

func (s *Store) putOptions() minio.PutObjectOptions {
	return minio.PutObjectOptions{
		PartSize:     s.opts.PartSize,
		StorageClass: s.opts.StorageClass,
		ContentType:  "application/octet-stream",
	}
}

// Stats returns the ranged GETs issued by blobs of this store.
func (s *Store) Stats() blobstore.ReadStats {
	return blobstore.ReadStats{Reads: s.reads.Load(), BytesRead: s.bytes.Load()}
}

// Open stats an object and returns a handle for range reads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &minioBlob{
		store: s,
		key:   key,
		size:  info.Size,
		etag:  info.ETag,
	}, nil
}

// Put uploads an object in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), s.putOptions())
	return err
}

// Create starts a streaming upload. The object appears on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	key := s.key(name)
	pr, pw := io.Pipe()

	blob := &minioWritableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, key, pr, -1, s.putOptions())
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob, nil
}

// Delete removes an object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns all object names with the given prefix, relative to the
// store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := s.relative(obj.Key); name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

func (s *Store) relative(key string) string {
	name := strings.TrimPrefix(key, s.opts.Prefix)
	return strings.TrimPrefix(name, "/")
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

type minioBlob struct {
	store *Store
	key   string
	size  int64
	etag  string
}

func (b *minioBlob) Size() int64 { return b.size }

func (b *minioBlob) Close() error { return nil }

// ReadAt issues one ranged GET pinned to the ETag seen at Open, so an
// object replaced underneath an open index fails instead of mixing versions.
func (b *minioBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), b.size) - 1

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}
	if b.etag != "" {
		if err := opts.SetMatchETag(b.etag); err != nil {
			return 0, err
		}
	}

	obj, err := b.store.client.GetObject(ctx, b.store.bucket, b.key, opts)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	want := int(end - off + 1)
	n, err := io.ReadFull(obj, p[:want])
	b.store.reads.Add(1)
	b.store.bytes.Add(int64(n))
	if err != nil {
		return n, err
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type minioWritableBlob struct {
	pw       *io.PipeWriter
	done     chan error
	finished atomic.Bool
}

func (b *minioWritableBlob) Write(p []byte) (int, error) {
	return b.pw.Write(p)
}

func (b *minioWritableBlob) Close() error {
	if !b.finished.CompareAndSwap(false, true) {
		return ErrBlobClosed
	}
	if err := b.pw.Close(); err != nil {
		return err
	}
	return <-b.done
}

func (b *minioWritableBlob) Sync() error { return nil }
