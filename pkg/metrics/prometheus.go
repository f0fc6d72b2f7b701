package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	leadRate       *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpulse_events_ingested_total",
				Help: "Total number of lead events routed to a backend",
			},
			[]string{"backend", "campaign"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		leadRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leadpulse_lead_rate_hourly",
				Help: "Leads observed in the current hour per campaign",
			},
			[]string{"campaign"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEventIngested records a lead event routed to a backend.
func (r *Recorder) RecordEventIngested(backend, campaign string) {
	r.eventsIngested.WithLabelValues(backend, campaign).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLeadRate records the current-hour lead count for a campaign.
func (r *Recorder) RecordLeadRate(campaign string, perHour float64) {
	r.leadRate.WithLabelValues(campaign).Set(perHour)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
