package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    InsightsLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "leadpulse",
            Subsystem: "insights",
            Name:      "latency_seconds",
            Help:      "Latency of insights endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    InsightsErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "leadpulse",
            Subsystem: "insights",
            Name:      "errors_total",
            Help:      "Errors by insights endpoint",
        },
        []string{"endpoint"},
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(InsightsLatency, InsightsErrors)
    })
}
