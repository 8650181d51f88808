// Package testutil provides testing utilities for pisearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random digit sequences, building
// suffix arrays naively, and computing brute-force match ranges.
//
// # Random Digits
//
//	rng := testutil.NewRNG(seed)
//	seq := rng.Digits(10_000)
//
// # Ground Truth
//
//	sa := testutil.SuffixArray(seq)
//	lo, hi := testutil.PrefixRange(seq, sa, query)
//
// # In-Memory Arrays
//
//	d, s, err := testutil.MemoryArrays(seq, sa)
package testutil
