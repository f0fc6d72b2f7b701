package models

import "time"

// ForecastPoint is one predicted hour. Leads are counts: always
// non-negative integers (the simulator clamps and rounds).
type ForecastPoint struct {
	Bucket time.Time `json:"datetime"`
	Leads  int64     `json:"leads"`
}

// MonthlyForecast sums forecast leads per calendar month ("2026-01").
type MonthlyForecast struct {
	Month string `json:"month"`
	Leads int64  `json:"leads"`
}

// ForecastResult bundles the hourly forecast with the actual tail and
// the monthly rollup the dashboard charts against.
type ForecastResult struct {
	ModelFamily  string            `json:"model_family"`
	HorizonHours int               `json:"horizon_hours"`
	HistoryHours int               `json:"history_hours"`
	Actual       []Observation     `json:"actual"`
	Hourly       []ForecastPoint   `json:"hourly"`
	Monthly      []MonthlyForecast `json:"monthly"`
}

// AnomalyRecord is one flagged hour: |ZScore| exceeded the configured
// threshold against the trailing baseline.
type AnomalyRecord struct {
	Bucket time.Time `json:"datetime"`
	Metric string    `json:"metric"`
	Value  float64   `json:"value"`
	ZScore float64   `json:"z_score"`
}

// KPISnapshot holds trailing-window KPIs computed from actuals only.
type KPISnapshot struct {
	WindowHours int     `json:"window_hours"`
	Leads       int64   `json:"leads"`
	CPL         float64 `json:"cpl"`
	ROI         float64 `json:"roi"`
}

// AggregateInsights is a consolidated view for the dashboard.
type AggregateInsights struct {
	Timestamp time.Time                  `json:"timestamp"`
	Forecast  *ForecastResult            `json:"forecast,omitempty"`
	Anomalies map[string][]AnomalyRecord `json:"anomalies,omitempty"`
	KPI       *KPISnapshot               `json:"kpi,omitempty"`
	Errors    map[string]string          `json:"errors,omitempty"`
}
