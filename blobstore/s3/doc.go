// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("pi/"), s3.WithRegion("eu-central-1"))
//
//	idx, err := pisearch.Open(ctx, pisearch.Remote(store))
//
// # Features
//
//   - Range reads, so a suffix-array comparison fetches a few bytes, not the object
//   - Multipart uploads for multi-gigabyte digit files
//   - Automatic pagination for listing
//   - Configurable prefix for several indexes in one bucket
package s3
