// Package store provides 64-bit addressable, block-bounded byte containers.
//
// A Store owns a position cursor and borrows a caller-supplied scratch buffer
// whose length is the block size B. ReadBlocks and WriteBlocks move at most B
// bytes between the buffer and the store per call; callers loop for larger
// transfers (see package stream).
//
// # Backends
//
//   - MemoryStore: a table of fixed-size chunks, so no single allocation has
//     to hold the whole capacity. Chunks are allocated on first write.
//   - FileStore: a raw file handle. Position and length come from the
//     operating system as 64-bit values; every block is one read or write call.
//   - RangeStore: read-only view of a blobstore.Blob (mmap, S3, MinIO).
//
// Stores are not safe for concurrent use. Open one store per goroutine.
package store
