package blobstore

import "sync/atomic"

// ReadStats counts ranged reads issued against a backend. A suffix-array
// search issues O(log n) small reads per query, so the request count
// dominates remote latency and cost.
type ReadStats struct {
	Reads     int64
	BytesRead int64
}

// readCounter is embedded by stores that report ReadStats.
type readCounter struct {
	reads atomic.Int64
	bytes atomic.Int64
}

func (c *readCounter) record(n int) {
	c.reads.Add(1)
	c.bytes.Add(int64(n))
}

func (c *readCounter) snapshot() ReadStats {
	return ReadStats{Reads: c.reads.Load(), BytesRead: c.bytes.Load()}
}
