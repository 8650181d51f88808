package pisearch_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hupe1980/pisearch"
	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/digits"
	"github.com/hupe1980/pisearch/testutil"
)

// Example writes a small index to disk and searches it.
func Example() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "pisearch-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	seq, _ := digits.Parse("31415926535897932384")
	if _, err := pisearch.WriteIndex(ctx, blobstore.NewLocalStore(dir), seq, testutil.SuffixArray(seq)); err != nil {
		log.Fatal(err)
	}

	ix, err := pisearch.Open(ctx, pisearch.Local(dir))
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()

	res, err := ix.SearchString(ctx, "9")
	if err != nil {
		log.Fatal(err)
	}
	offsets, err := ix.Occurrences(ctx, res)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("matches:", res.Len())
	fmt.Println("offsets:", offsets.ToArray())
	// Output:
	// matches: 3
	// offsets: [5 12 14]
}

// Example_remote opens an index held in a blob store through a block cache.
func Example_remote() {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	seq, _ := digits.Parse("2718281828459045")
	if _, err := pisearch.WriteIndex(ctx, bs, seq, testutil.SuffixArray(seq)); err != nil {
		log.Fatal(err)
	}

	metrics := &pisearch.BasicMetricsCollector{}
	ix, err := pisearch.Open(ctx, pisearch.Remote(bs),
		pisearch.WithBlockCache(1<<20, 4096),
		pisearch.WithMetricsCollector(metrics),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()

	results, err := ix.SearchBatch(ctx, []string{"1828", "18", "7"})
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Println(r.Len())
	}
	fmt.Println("searches:", metrics.GetStats().SearchCount)
	// Output:
	// 2
	// 2
	// 1
	// searches: 3
}
