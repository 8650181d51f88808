package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hupe1980/pisearch"
	"github.com/hupe1980/pisearch/blobstore"
	"github.com/hupe1980/pisearch/search"
	"github.com/hupe1980/pisearch/testutil"
)

func main() {
	seed := int64(4711)
	size := 20000
	queryLen := 4

	ctx := context.Background()
	rng := testutil.NewRNG(seed)
	seq := rng.Digits(size)
	query := rng.Substring(seq, queryLen)

	dir, err := os.MkdirTemp("", "pisearch")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fmt.Println("--- Write ---")
	fmt.Println("Digits:", size)

	start := time.Now()

	m, err := pisearch.WriteIndex(ctx, blobstore.NewLocalStore(dir), seq, testutil.SuffixArray(seq))
	if err != nil {
		log.Fatal(err)
	}

	end := time.Since(start)

	fmt.Println("Suffix width:", m.Suffix.Width)
	fmt.Printf("Seconds: %.2f\n\n", end.Seconds())

	metrics := &pisearch.BasicMetricsCollector{}
	ix, err := pisearch.Open(ctx, pisearch.Local(dir), pisearch.WithMetricsCollector(metrics))
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()

	fmt.Println("--- Search ---")

	start = time.Now()

	res, err := ix.Search(ctx, query)
	if err != nil {
		log.Fatal(err)
	}

	end = time.Since(start)

	printResult(ctx, ix, query, res)

	fmt.Printf("Seconds: %.8f\n\n", end.Seconds())

	fmt.Println("--- Brute ---")

	start = time.Now()

	offsets := testutil.Occurrences(seq, query)

	end = time.Since(start)

	fmt.Println("Offsets:", offsets)
	fmt.Printf("Seconds: %.8f\n\n", end.Seconds())

	fmt.Printf("%+v\n", metrics.GetStats())
}

func printResult(ctx context.Context, ix *pisearch.Index, query []byte, res search.Result) {
	fmt.Printf("Query: %v, Range: %s, Matches: %d\n", query, res, res.Len())

	bm, err := ix.Occurrences(ctx, res)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Offsets:", bm.ToArray())
}
