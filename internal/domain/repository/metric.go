package repository

import "fmt"

// Metric identifies one of the hourly dashboard series.
type Metric string

const (
	MetricCPL   Metric = "cpl"
	MetricROI   Metric = "roi"
	MetricLeads Metric = "leads"
)

// IsValidMetric returns true if m is a supported metric.
func IsValidMetric(m Metric) bool {
	switch m {
	case MetricCPL, MetricROI, MetricLeads:
		return true
	default:
		return false
	}
}

// ParseMetric converts a raw string to a Metric or fails. Unknown
// metrics are a validation error, never silently defaulted.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !IsValidMetric(m) {
		return "", fmt.Errorf("metric must be one of: cpl, roi, leads; got %q", s)
	}
	return m, nil
}

// AllMetrics enumerates the supported metrics in stable order.
func AllMetrics() []Metric {
	return []Metric{MetricCPL, MetricROI, MetricLeads}
}
