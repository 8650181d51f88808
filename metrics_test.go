package pisearch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}
	boom := errors.New("boom")

	m.RecordSearch(3, 10, 2*time.Millisecond, nil)
	m.RecordSearch(4, 0, 4*time.Millisecond, boom)
	m.RecordBatchSearch(5, time.Millisecond, nil)
	m.RecordBatchSearch(2, time.Millisecond, boom)
	m.RecordOccurrences(10, time.Millisecond, nil)
	m.RecordOccurrences(0, time.Millisecond, boom)
	m.RecordReaderOpen(time.Millisecond, nil)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.SearchCount)
	assert.Equal(t, int64(1), stats.SearchErrors)
	assert.Equal(t, int64(10), stats.SearchMatches)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.SearchAvgNanos)
	assert.Equal(t, int64(2), stats.BatchCount)
	assert.Equal(t, int64(7), stats.BatchQueries)
	assert.Equal(t, int64(1), stats.BatchErrors)
	assert.Equal(t, int64(2), stats.OccurrenceCount)
	assert.Equal(t, int64(10), stats.OccurrenceOffsets)
	assert.Equal(t, int64(1), stats.OccurrenceErrors)
	assert.Equal(t, int64(1), stats.ReadersOpened)
	assert.Zero(t, stats.ReaderErrors)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	m := &BasicMetricsCollector{}
	assert.Zero(t, m.GetStats().SearchAvgNanos)
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}
	mc.RecordSearch(1, 1, time.Second, nil)
	mc.RecordReaderOpen(time.Second, errors.New("ignored"))
}
