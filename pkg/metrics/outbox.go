package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxPublishMetrics records outcomes of the outbox publish loop.
type OutboxPublishMetrics struct {
	duration     *prometheus.HistogramVec
	published    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	deadLettered *prometheus.CounterVec
}

// NewOutboxPublishMetrics registers the publish metrics on the provided
// registerer.
func NewOutboxPublishMetrics(reg prometheus.Registerer) *OutboxPublishMetrics {
	if reg == nil {
		return &OutboxPublishMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of individual outbox publishes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events delivered to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Retryable outbox publish failures.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_dead_lettered_total",
		Help: "Outbox events parked in the DLQ.",
	}, []string{"event_type", "reason"})
	reg.MustRegister(duration, published, failed, deadLettered)
	return &OutboxPublishMetrics{
		duration:     duration,
		published:    published,
		failed:       failed,
		deadLettered: deadLettered,
	}
}

// ObservePublish records one successful publish and its latency.
func (m *OutboxPublishMetrics) ObservePublish(eventType string, elapsed time.Duration) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(elapsed.Seconds())
}

// IncFailure increments the retryable failure counter.
func (m *OutboxPublishMetrics) IncFailure(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered increments the DLQ counter for the given reason.
func (m *OutboxPublishMetrics) IncDeadLettered(eventType, reason string) {
	if m == nil || m.deadLettered == nil {
		return
	}
	m.deadLettered.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}
