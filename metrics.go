package pisearch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// See package prommetrics for a Prometheus implementation.
type MetricsCollector interface {
	// RecordSearch is called after each search.
	// matches is the length of the result range, err is nil if successful.
	RecordSearch(queryLen int, matches int64, duration time.Duration, err error)

	// RecordBatchSearch is called after each batch search.
	RecordBatchSearch(count int, duration time.Duration, err error)

	// RecordOccurrences is called after resolving a result to digit offsets.
	RecordOccurrences(count int64, duration time.Duration, err error)

	// RecordReaderOpen is called whenever the index opens a new reader.
	RecordReaderOpen(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, int64, time.Duration, error)  {}
func (NoopMetricsCollector) RecordBatchSearch(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordOccurrences(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordReaderOpen(time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchMatches     atomic.Int64
	SearchTotalNanos  atomic.Int64
	BatchCount        atomic.Int64
	BatchQueries      atomic.Int64
	BatchErrors       atomic.Int64
	OccurrenceCount   atomic.Int64
	OccurrenceOffsets atomic.Int64
	OccurrenceErrors  atomic.Int64
	ReadersOpened     atomic.Int64
	ReaderErrors      atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, matches int64, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchMatches.Add(matches)
}

// RecordBatchSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchSearch(count int, _ time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchQueries.Add(int64(count))
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// RecordOccurrences implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOccurrences(count int64, _ time.Duration, err error) {
	b.OccurrenceCount.Add(1)
	if err != nil {
		b.OccurrenceErrors.Add(1)
		return
	}
	b.OccurrenceOffsets.Add(count)
}

// RecordReaderOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReaderOpen(_ time.Duration, err error) {
	b.ReadersOpened.Add(1)
	if err != nil {
		b.ReaderErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchMatches:     b.SearchMatches.Load(),
		SearchAvgNanos:    b.getAvgSearchNanos(),
		BatchCount:        b.BatchCount.Load(),
		BatchQueries:      b.BatchQueries.Load(),
		BatchErrors:       b.BatchErrors.Load(),
		OccurrenceCount:   b.OccurrenceCount.Load(),
		OccurrenceOffsets: b.OccurrenceOffsets.Load(),
		OccurrenceErrors:  b.OccurrenceErrors.Load(),
		ReadersOpened:     b.ReadersOpened.Load(),
		ReaderErrors:      b.ReaderErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount       int64
	SearchErrors      int64
	SearchMatches     int64
	SearchAvgNanos    int64
	BatchCount        int64
	BatchQueries      int64
	BatchErrors       int64
	OccurrenceCount   int64
	OccurrenceOffsets int64
	OccurrenceErrors  int64
	ReadersOpened     int64
	ReaderErrors      int64
}
