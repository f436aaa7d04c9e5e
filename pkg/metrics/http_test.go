package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPMetricsRecordsRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("POST", "/api/v1/checkout", 201, 120*time.Millisecond)
	metrics.Observe("POST", "/api/v1/checkout", 429, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "201"); err != nil {
		t.Fatalf("fetch created count: %v", err)
	} else if got != 1 {
		t.Fatalf("expected one 201, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "429"); err != nil {
		t.Fatalf("fetch throttled count: %v", err)
	} else if got != 1 {
		t.Fatalf("expected one 429, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/v1/checkout"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestHTTPMetricsWithoutRegistererIsNoOp(t *testing.T) {
	metrics := NewHTTPMetrics(nil)
	metrics.Observe("GET", "/healthz", 200, time.Millisecond)
}
