// Package stream adapts a store.Store to the io.Reader, io.Writer and
// io.Seeker interfaces.
//
// A Stream validates its arguments before touching the store and splits
// arbitrarily large transfers into block-bounded store calls. A read that
// runs into the end of the store returns the short count without error.
//
// Close releases the store exactly once. A runtime cleanup closes the store
// if a Stream becomes unreachable without being closed; it is a safety net,
// callers should still defer Close.
package stream
