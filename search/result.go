package search

import "fmt"

// Result is a half-open range [Min, Max) of suffix-array positions.
type Result struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Len returns the number of matching positions.
func (r Result) Len() int64 { return r.Max - r.Min }

// Empty reports whether the range holds no position.
func (r Result) Empty() bool { return r.Max <= r.Min }

// Contains reports whether position p lies in the range.
func (r Result) Contains(p int64) bool { return p >= r.Min && p < r.Max }

func (r Result) String() string { return fmt.Sprintf("[%d, %d)", r.Min, r.Max) }
