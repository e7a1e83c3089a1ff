package enrichment

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ideaflow"

// Outcome is how one dispatched task ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeRetry     Outcome = "retry"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"

	// The attempt ended but writing its status did not; the idea is still
	// in processing and the write has to be repeated.
	OutcomeRetryUnsettled  Outcome = "retry_unsettled"
	OutcomeFailedUnsettled Outcome = "failed_unsettled"
)

// Metrics holds the Prometheus instruments of the enrichment pipeline.
type Metrics struct {
	QueueLength     prometheus.Gauge
	Attempts        *prometheus.CounterVec
	AnalysisSeconds prometheus.Histogram
	BacklogQueued   prometheus.Counter
	TagsAttached    prometheus.Counter
	LinksCreated    prometheus.Counter
}

// NewMetrics creates the enrichment instruments and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "queue_length",
			Help:      "Number of analysis tasks waiting in memory",
		}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "attempts_total",
			Help:      "Dispatched enrichment attempts by outcome",
		}, []string{"outcome"}),
		AnalysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "analysis_duration_seconds",
			Help:      "Latency of analysis service calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
		BacklogQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "backlog_enqueued_total",
			Help:      "Tasks rebuilt from durable pending ideas",
		}),
		TagsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "tags_attached_total",
			Help:      "Tag associations written by the applier",
		}),
		LinksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "links_created_total",
			Help:      "New idea links written by the applier",
		}),
	}

	reg.MustRegister(
		m.QueueLength,
		m.Attempts,
		m.AnalysisSeconds,
		m.BacklogQueued,
		m.TagsAttached,
		m.LinksCreated,
	)
	return m
}
