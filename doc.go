// Package pisearch finds every occurrence of a digit string in a digit
// sequence too large to hold in memory, such as billions of digits of pi.
//
// An index is three files next to a manifest: the digits packed two per
// byte, the suffix array of the digits as fixed-width offsets, and an
// optional prefix table that resolves short queries without touching the
// suffix array. The digits and the suffix array are read through a
// block-addressable stream, so an index may live on a local disk or in an
// object store.
//
// # Quick Start
//
// Write an index from digits and a suffix array built elsewhere:
//
//	bs := blobstore.NewLocalStore("./pi")
//	m, _ := pisearch.WriteIndex(ctx, bs, seq, sa)
//
// Open it locally or from a bucket:
//
//	ix, _ := pisearch.Open(ctx, pisearch.Local("./pi"))
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("pi/"))
//	ix, _ := pisearch.Open(ctx, pisearch.Remote(s3Store), pisearch.WithBlockCache(256<<20, 0))
//
// # Searching
//
// Search returns a half-open range [Min, Max) of suffix-array positions.
// Its length is the number of occurrences:
//
//	res, _ := ix.SearchString(ctx, "14159")
//	fmt.Println(res.Len())
//
//	offsets, _ := ix.Occurrences(ctx, res) // digit offsets, as a bitmap
//
// An empty query matches every suffix. A query that does not occur returns
// an empty range at its insertion point.
//
// # Concurrency
//
// An Index is safe for concurrent use. Each query borrows a reader with its
// own streams and buffers; WithMaxReaders bounds how many exist at once.
package pisearch
