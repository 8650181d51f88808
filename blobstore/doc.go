// Package blobstore provides the storage abstraction for persisted index files
// (packed digits, suffix offsets, prefix tables, manifests).
//
// Index files are immutable once written: they are produced by an external
// builder and then only read. BlobStore implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local directory, reads through read-only mmap
//   - CachingStore: block-level LRU cache in front of any BlobStore
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// A Blob is turned into a 64-bit addressable byte stream by store.OpenBlob.
package blobstore
