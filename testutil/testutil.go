package testutil

import (
	"bytes"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/pisearch/digits"
	"github.com/hupe1980/pisearch/store"
	"github.com/hupe1980/pisearch/stream"
	"github.com/hupe1980/pisearch/suffix"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Digits returns n random digit values in [0, 9].
func (r *RNG) Digits(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.rand.Intn(10))
	}
	return out
}

// SkewedDigits returns n digit values drawn from only the first k digits,
// producing long repeated runs.
func (r *RNG) SkewedDigits(n, k int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.rand.Intn(k))
	}
	return out
}

// Substring returns a random substring of seq with length in [1, maxLen].
func (r *RNG) Substring(seq []byte, maxLen int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := r.rand.Intn(len(seq))
	n := 1 + r.rand.Intn(maxLen)
	end := min(start+n, len(seq))
	return append([]byte(nil), seq[start:end]...)
}

// SuffixArray sorts every suffix of seq. It is O(n^2 log n) and meant for
// small inputs only.
func SuffixArray(seq []byte) []int64 {
	sa := make([]int64, len(seq))
	for i := range sa {
		sa[i] = int64(i)
	}
	sort.Slice(sa, func(i, j int) bool {
		return bytes.Compare(seq[sa[i]:], seq[sa[j]:]) < 0
	})
	return sa
}

// PrefixRange returns the positions [lo, hi) of sa whose suffix starts
// with query, by scanning every position.
func PrefixRange(seq []byte, sa []int64, query []byte) (lo, hi int64) {
	lo, hi = -1, -1
	for p, off := range sa {
		if bytes.HasPrefix(seq[off:], query) {
			if lo < 0 {
				lo = int64(p)
			}
			hi = int64(p) + 1
		}
	}
	if lo < 0 {
		// Insertion point: first suffix sorting after query.
		for p, off := range sa {
			if bytes.Compare(seq[off:], query) > 0 {
				return int64(p), int64(p)
			}
		}
		return int64(len(sa)), int64(len(sa))
	}
	return lo, hi
}

// Occurrences returns every offset at which query occurs in seq, ascending.
func Occurrences(seq, query []byte) []int64 {
	var out []int64
	for i := 0; i+len(query) <= len(seq); i++ {
		if bytes.Equal(seq[i:i+len(query)], query) {
			out = append(out, int64(i))
		}
	}
	return out
}

// MemoryArrays packs seq and sa into memory-backed arrays.
func MemoryArrays(seq []byte, sa []int64) (*digits.Array, *suffix.Array, error) {
	ds, err := stream.NewMemory(0, store.ModeReadWrite)
	if err != nil {
		return nil, nil, err
	}
	d, err := digits.Create(ds, seq)
	if err != nil {
		return nil, nil, err
	}

	ss, err := stream.NewMemory(0, store.ModeReadWrite)
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	w, err := suffix.NewWriter(ss, suffix.WidthFor(int64(len(seq))))
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	for _, off := range sa {
		if err := w.Write(off); err != nil {
			_ = d.Close()
			return nil, nil, err
		}
	}
	if err := w.Flush(); err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	s, err := suffix.Open(ss, suffix.WidthFor(int64(len(seq))))
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	return d, s, nil
}
