// Package prommetrics exports index metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, _ := prommetrics.New(reg)
//	ix, _ := pisearch.Open(ctx, pisearch.Local("./pi"), pisearch.WithMetricsCollector(mc))
package prommetrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/pisearch"
)

var _ pisearch.MetricsCollector = (*Collector)(nil)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "pisearch"

// Options configures a Collector.
type Options struct {
	Namespace string
	// Buckets are the latency histogram buckets in seconds.
	Buckets []float64
	// ConstLabels are attached to every metric, e.g. the index name.
	ConstLabels prometheus.Labels
}

// DefaultOptions returns default collector options.
var DefaultOptions = Options{
	Namespace: DefaultNamespace,
	Buckets:   prometheus.ExponentialBuckets(50e-6, 4, 10),
}

// Collector implements pisearch.MetricsCollector on Prometheus metrics.
type Collector struct {
	latency   *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	matches   prometheus.Histogram
	queryLen  prometheus.Histogram
	offsets   prometheus.Counter
	batchSize prometheus.Histogram
	readers   *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer, optFns ...func(o *Options)) (*Collector, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "operation_duration_seconds",
			Help:        "Latency of index operations.",
			Buckets:     opts.Buckets,
			ConstLabels: opts.ConstLabels,
		}, []string{"op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "operations_total",
			Help:        "Index operations by outcome.",
			ConstLabels: opts.ConstLabels,
		}, []string{"op", "status"}),
		matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "search_matches",
			Help:        "Number of occurrences per successful search.",
			Buckets:     prometheus.ExponentialBuckets(1, 10, 10),
			ConstLabels: opts.ConstLabels,
		}),
		queryLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "search_query_digits",
			Help:        "Query length in digits.",
			Buckets:     prometheus.LinearBuckets(0, 4, 8),
			ConstLabels: opts.ConstLabels,
		}),
		offsets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "occurrence_offsets_total",
			Help:        "Digit offsets resolved from search results.",
			ConstLabels: opts.ConstLabels,
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "batch_queries",
			Help:        "Queries per batch search.",
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
			ConstLabels: opts.ConstLabels,
		}),
		readers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "readers_opened_total",
			Help:        "Readers opened by status.",
			ConstLabels: opts.ConstLabels,
		}, []string{"status"}),
	}

	var errs []error
	for _, m := range []prometheus.Collector{
		c.latency, c.ops, c.matches, c.queryLen, c.offsets, c.batchSize, c.readers,
	} {
		errs = append(errs, reg.Register(m))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.ops.WithLabelValues(op, s).Inc()
	c.latency.WithLabelValues(op, s).Observe(d.Seconds())
}

// RecordSearch implements pisearch.MetricsCollector.
func (c *Collector) RecordSearch(queryLen int, matches int64, d time.Duration, err error) {
	c.observe("search", d, err)
	c.queryLen.Observe(float64(queryLen))
	if err == nil {
		c.matches.Observe(float64(matches))
	}
}

// RecordBatchSearch implements pisearch.MetricsCollector.
func (c *Collector) RecordBatchSearch(count int, d time.Duration, err error) {
	c.observe("batch_search", d, err)
	c.batchSize.Observe(float64(count))
}

// RecordOccurrences implements pisearch.MetricsCollector.
func (c *Collector) RecordOccurrences(count int64, d time.Duration, err error) {
	c.observe("occurrences", d, err)
	if err == nil {
		c.offsets.Add(float64(count))
	}
}

// RecordReaderOpen implements pisearch.MetricsCollector.
func (c *Collector) RecordReaderOpen(d time.Duration, err error) {
	c.observe("reader_open", d, err)
	c.readers.WithLabelValues(status(err)).Inc()
}
