package models

import "time"

// Observation is one hourly point of a metric series.
// Buckets are strictly increasing with nominal one-hour spacing;
// hours without events are simply absent (gaps tolerated, never filled).
type Observation struct {
	Bucket time.Time `json:"datetime"`
	Value  float64   `json:"value"`
}

// FeatureRow maps feature name to numeric value for one target
// timestamp (calendar, lag and rolling features).
type FeatureRow map[string]float64

// LeadEvent is a raw lead captured from the tracker stream.
type LeadEvent struct {
	Campaign  string
	Timestamp int64 // unix seconds
	Cost      float64
	Revenue   float64
}
