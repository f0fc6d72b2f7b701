package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	domsvc "LeadPulse/internal/domain/service"
)

const (
	DefaultHorizonHours = 168
	DefaultHistoryHours = 336
	MaxHorizonHours     = 2160
	DefaultKPIWindow    = 24
)

// InsightAggregator wires the hourly series store to the forecasting
// and anomaly cores.
type InsightAggregator struct {
	store      domrepo.ObservationStore
	forecaster domsvc.LeadForecaster
	detector   domsvc.AnomalyDetector
	metrics    domrepo.Metrics
}

func NewInsightAggregator(store domrepo.ObservationStore, forecaster domsvc.LeadForecaster, detector domsvc.AnomalyDetector, metrics domrepo.Metrics) *InsightAggregator {
	return &InsightAggregator{store: store, forecaster: forecaster, detector: detector, metrics: metrics}
}

type ForecastParams struct {
	HorizonHours int
	HistoryHours int
}

// Forecast loads the trailing leads history and runs the configured
// forecaster over it. The horizon is capped so a bad request cannot
// spin the recursive simulator for months of hours.
func (a *InsightAggregator) Forecast(ctx context.Context, p ForecastParams) (*models.ForecastResult, error) {
	if p.HorizonHours <= 0 {
		p.HorizonHours = DefaultHorizonHours
	}
	if p.HorizonHours > MaxHorizonHours {
		return nil, fmt.Errorf("horizon_hours %d exceeds maximum %d", p.HorizonHours, MaxHorizonHours)
	}
	if p.HistoryHours <= 0 {
		p.HistoryHours = DefaultHistoryHours
	}

	start := time.Now()
	history, err := a.store.GetLatestN(ctx, domrepo.MetricLeads, p.HistoryHours)
	if err != nil {
		a.metrics.RecordError("forecast_history")
		return nil, fmt.Errorf("load leads history: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no leads history available")
	}

	pts, err := a.forecaster.Forecast(ctx, history, p.HorizonHours)
	if err != nil {
		a.metrics.RecordError("forecast")
		return nil, fmt.Errorf("forecast: %w", err)
	}
	a.metrics.RecordLatency("forecast", time.Since(start).Seconds())

	return &models.ForecastResult{
		ModelFamily:  a.forecaster.Family(),
		HorizonHours: p.HorizonHours,
		HistoryHours: len(history),
		Actual:       history,
		Hourly:       pts,
		Monthly:      monthlyTotals(pts),
	}, nil
}

// Anomalies loads just enough trailing history to fill every baseline
// window inside the lookback and runs the detector on it.
func (a *InsightAggregator) Anomalies(ctx context.Context, p domsvc.AnomalyParams) ([]models.AnomalyRecord, error) {
	if _, err := domrepo.ParseMetric(string(p.Metric)); err != nil {
		return nil, err
	}
	n := p.WindowHours + p.LookbackHours + 1

	start := time.Now()
	series, err := a.store.GetLatestN(ctx, p.Metric, n)
	if err != nil {
		a.metrics.RecordError("anomaly_history")
		return nil, fmt.Errorf("load %s history: %w", p.Metric, err)
	}

	recs, err := a.detector.Detect(series, p)
	if err != nil {
		a.metrics.RecordError("anomaly")
		return nil, fmt.Errorf("detect: %w", err)
	}
	a.metrics.RecordLatency("anomaly", time.Since(start).Seconds())
	return recs, nil
}

// KPI summarizes the trailing window: total leads plus average cost
// per lead and return on investment over the hourly buckets.
func (a *InsightAggregator) KPI(ctx context.Context, windowHours int) (*models.KPISnapshot, error) {
	if windowHours <= 0 {
		windowHours = DefaultKPIWindow
	}

	leads, err := a.store.GetLatestN(ctx, domrepo.MetricLeads, windowHours)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	cpl, err := a.store.GetLatestN(ctx, domrepo.MetricCPL, windowHours)
	if err != nil {
		return nil, fmt.Errorf("load cpl: %w", err)
	}
	roi, err := a.store.GetLatestN(ctx, domrepo.MetricROI, windowHours)
	if err != nil {
		return nil, fmt.Errorf("load roi: %w", err)
	}

	var total float64
	for _, o := range leads {
		total += o.Value
	}
	return &models.KPISnapshot{
		WindowHours: windowHours,
		Leads:       int64(total),
		CPL:         meanOf(cpl),
		ROI:         meanOf(roi),
	}, nil
}

func meanOf(obs []models.Observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	var sum float64
	for _, o := range obs {
		sum += o.Value
	}
	return sum / float64(len(obs))
}

// monthlyTotals folds hourly predictions into calendar-month sums,
// keyed "2006-01", in chronological order.
func monthlyTotals(pts []models.ForecastPoint) []models.MonthlyForecast {
	if len(pts) == 0 {
		return nil
	}
	byMonth := make(map[string]int64)
	for _, p := range pts {
		byMonth[p.Bucket.Format("2006-01")] += p.Leads
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]models.MonthlyForecast, 0, len(months))
	for _, m := range months {
		out = append(out, models.MonthlyForecast{Month: m, Leads: byMonth[m]})
	}
	return out
}
