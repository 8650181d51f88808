// Package cache provides a byte-bounded LRU cache for immutable blob blocks.
//
// Digit and suffix files never change once written, so a cached block stays
// valid until the blob is replaced or deleted; callers invalidate by path.
package cache
