package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestCollector_WriteMetrics(t *testing.T) {
	c := NewCollector()
	c.RecordRequest()
	c.RecordRequest()
	c.RecordIngest(5, 2)
	c.RecordSearch(3 * time.Millisecond)
	c.RecordRateLimited()

	var sb strings.Builder
	if err := c.WriteMetrics(&sb); err != nil {
		t.Fatalf("WriteMetrics() error = %v", err)
	}
	out := sb.String()

	want := []string{
		"flint_http_requests_total 2",
		"flint_documents_ingested_total 5",
		"flint_document_failures_total 2",
		"flint_searches_total 1",
		"flint_search_duration_nanoseconds_total 3000000",
		"flint_rate_limited_total 1",
		"# TYPE flint_uptime_seconds gauge",
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}

	// Every counter carries HELP and TYPE lines.
	if !strings.Contains(out, "# HELP flint_searches_total") {
		t.Error("missing HELP line for flint_searches_total")
	}
	if !strings.Contains(out, "# TYPE flint_searches_total counter") {
		t.Error("missing TYPE line for flint_searches_total")
	}
}

func TestCollector_ZeroState(t *testing.T) {
	var sb strings.Builder
	if err := NewCollector().WriteMetrics(&sb); err != nil {
		t.Fatalf("WriteMetrics() error = %v", err)
	}
	if !strings.Contains(sb.String(), "flint_searches_total 0") {
		t.Errorf("fresh collector output:\n%s", sb.String())
	}
}
