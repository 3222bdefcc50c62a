// Package metrics collects server counters and exports them in the
// Prometheus text exposition format.
//
// Counters are plain atomics; the exporter writes the text format by hand
// (https://prometheus.io/docs/instrumenting/exposition_formats/), which
// keeps the server free of a client-library dependency for a handful of
// counters.
package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

const namespace = "flint"

// Collector accumulates server-level counters.
//
// All record methods are safe for concurrent use.
type Collector struct {
	startTime time.Time

	httpRequests      atomic.Uint64
	documentsIngested atomic.Uint64
	ingestFailures    atomic.Uint64
	searches          atomic.Uint64
	searchTimeNanos   atomic.Uint64
	rateLimited       atomic.Uint64
}

// NewCollector creates a collector with the uptime clock started.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordRequest counts one handled HTTP request.
func (c *Collector) RecordRequest() {
	c.httpRequests.Add(1)
}

// RecordIngest counts documents accepted and rejected by one bulk ingest.
func (c *Collector) RecordIngest(ingested, failed int) {
	c.documentsIngested.Add(uint64(ingested))
	c.ingestFailures.Add(uint64(failed))
}

// RecordSearch counts one search and its engine-side duration.
func (c *Collector) RecordSearch(d time.Duration) {
	c.searches.Add(1)
	c.searchTimeNanos.Add(uint64(d.Nanoseconds()))
}

// RecordRateLimited counts one request rejected by the rate limiter.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Add(1)
}

// WriteMetrics writes every metric in Prometheus text format.
func (c *Collector) WriteMetrics(w io.Writer) error {
	uptime := time.Since(c.startTime).Seconds()
	if err := writeGauge(w, "uptime_seconds", "Server uptime in seconds", uptime); err != nil {
		return err
	}

	counters := []struct {
		name  string
		help  string
		value uint64
	}{
		{"http_requests_total", "Total number of HTTP requests handled", c.httpRequests.Load()},
		{"documents_ingested_total", "Total number of documents indexed", c.documentsIngested.Load()},
		{"document_failures_total", "Total number of documents rejected during ingest", c.ingestFailures.Load()},
		{"searches_total", "Total number of search queries executed", c.searches.Load()},
		{"search_duration_nanoseconds_total", "Total engine time spent searching in nanoseconds", c.searchTimeNanos.Load()},
		{"rate_limited_total", "Total number of requests rejected by the rate limiter", c.rateLimited.Load()},
	}
	for _, counter := range counters {
		if err := writeCounter(w, counter.name, counter.help, counter.value); err != nil {
			return err
		}
	}
	return nil
}

func writeCounter(w io.Writer, name, help string, value uint64) error {
	_, err := fmt.Fprintf(w, "# HELP %s_%s %s\n# TYPE %s_%s counter\n%s_%s %d\n",
		namespace, name, help, namespace, name, namespace, name, value)
	return err
}

func writeGauge(w io.Writer, name, help string, value float64) error {
	_, err := fmt.Fprintf(w, "# HELP %s_%s %s\n# TYPE %s_%s gauge\n%s_%s %f\n",
		namespace, name, help, namespace, name, namespace, name, value)
	return err
}
