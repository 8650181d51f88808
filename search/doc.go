// Package search finds the suffix-array range of every suffix that starts
// with a query.
//
// The Engine runs two binary searches over suffix-array positions with a
// three-way starts-with comparator that reads one digit at a time:
//
//	lower bound: first position whose suffix compares >= query
//	upper bound: first position whose suffix compares >  query
//
// where a suffix that starts with the query compares equal, and a suffix
// that ends before the query does compares less. The result is the
// half-open range [Min, Max); Min == Max means no match.
//
// A PrefixIndex seeds both searches with the precomputed range of the
// longest cached query prefix and lets the comparator skip the digits that
// prefix already resolved.
package search
