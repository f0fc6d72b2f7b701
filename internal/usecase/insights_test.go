package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	domsvc "LeadPulse/internal/domain/service"
)

type fakeStore struct {
	series map[domrepo.Metric][]models.Observation
	lastN  map[domrepo.Metric]int
	err    error
}

func (s *fakeStore) GetHourly(_ context.Context, metric domrepo.Metric, from, to time.Time) ([]models.Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Observation
	for _, o := range s.series[metric] {
		if !o.Bucket.Before(from) && !o.Bucket.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) GetLatestN(_ context.Context, metric domrepo.Metric, n int) ([]models.Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.lastN == nil {
		s.lastN = map[domrepo.Metric]int{}
	}
	s.lastN[metric] = n
	all := s.series[metric]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

type fakeForecaster struct {
	leads int64
	err   error
}

func (f *fakeForecaster) Family() string { return domsvc.FamilyRecursive }

func (f *fakeForecaster) Forecast(_ context.Context, history []models.Observation, horizonHours int) ([]models.ForecastPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	start := history[len(history)-1].Bucket
	out := make([]models.ForecastPoint, 0, horizonHours)
	for i := 1; i <= horizonHours; i++ {
		out = append(out, models.ForecastPoint{Bucket: start.Add(time.Duration(i) * time.Hour), Leads: f.leads})
	}
	return out, nil
}

type fakeDetector struct {
	recs []models.AnomalyRecord
	err  error
}

func (d *fakeDetector) Detect(series []models.Observation, p domsvc.AnomalyParams) ([]models.AnomalyRecord, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.recs, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordEventIngested(string, string) {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordLeadRate(string, float64)     {}
func (nopMetrics) RecordLatency(string, float64)      {}

func hourly(metric domrepo.Metric, start time.Time, values ...float64) []models.Observation {
	out := make([]models.Observation, len(values))
	for i, v := range values {
		out[i] = models.Observation{Bucket: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return out
}

func newStore(end time.Time, n int) *fakeStore {
	start := end.Add(-time.Duration(n-1) * time.Hour)
	leads := make([]float64, n)
	cpl := make([]float64, n)
	roi := make([]float64, n)
	for i := range leads {
		leads[i] = 10
		cpl[i] = 2
		roi[i] = 0.5
	}
	return &fakeStore{series: map[domrepo.Metric][]models.Observation{
		domrepo.MetricLeads: hourly(domrepo.MetricLeads, start, leads...),
		domrepo.MetricCPL:   hourly(domrepo.MetricCPL, start, cpl...),
		domrepo.MetricROI:   hourly(domrepo.MetricROI, start, roi...),
	}}
}

func TestForecastDefaultsAndMonthlyRollup(t *testing.T) {
	// history ends Jan 31 12:00 so a week-long horizon straddles the
	// month boundary
	end := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	store := newStore(end, 400)
	agg := NewInsightAggregator(store, &fakeForecaster{leads: 2}, &fakeDetector{}, nopMetrics{})

	res, err := agg.Forecast(context.Background(), ForecastParams{})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if res.HorizonHours != DefaultHorizonHours {
		t.Fatalf("horizon = %d, want default %d", res.HorizonHours, DefaultHorizonHours)
	}
	if len(res.Hourly) != DefaultHorizonHours {
		t.Fatalf("got %d points, want %d", len(res.Hourly), DefaultHorizonHours)
	}
	if store.lastN[domrepo.MetricLeads] != DefaultHistoryHours {
		t.Fatalf("history fetch = %d, want %d", store.lastN[domrepo.MetricLeads], DefaultHistoryHours)
	}
	if res.ModelFamily != domsvc.FamilyRecursive {
		t.Fatalf("family = %q", res.ModelFamily)
	}

	// 11 hours left in January (13:00..23:00), the rest in February
	if len(res.Monthly) != 2 {
		t.Fatalf("monthly buckets = %d, want 2", len(res.Monthly))
	}
	if res.Monthly[0].Month != "2025-01" || res.Monthly[0].Leads != 22 {
		t.Fatalf("january rollup = %+v", res.Monthly[0])
	}
	if res.Monthly[1].Month != "2025-02" || res.Monthly[1].Leads != (168-11)*2 {
		t.Fatalf("february rollup = %+v", res.Monthly[1])
	}
}

func TestForecastHorizonCap(t *testing.T) {
	store := newStore(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), 400)
	agg := NewInsightAggregator(store, &fakeForecaster{leads: 2}, &fakeDetector{}, nopMetrics{})

	_, err := agg.Forecast(context.Background(), ForecastParams{HorizonHours: MaxHorizonHours + 1})
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("error = %v, want horizon cap", err)
	}
}

func TestForecastNoHistory(t *testing.T) {
	store := &fakeStore{series: map[domrepo.Metric][]models.Observation{}}
	agg := NewInsightAggregator(store, &fakeForecaster{leads: 2}, &fakeDetector{}, nopMetrics{})

	if _, err := agg.Forecast(context.Background(), ForecastParams{}); err == nil {
		t.Fatalf("expected error for empty history")
	}
}

func TestAnomaliesFetchesWindowPlusLookback(t *testing.T) {
	store := newStore(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), 600)
	agg := NewInsightAggregator(store, &fakeForecaster{}, &fakeDetector{}, nopMetrics{})

	p := domsvc.AnomalyParams{Metric: domrepo.MetricCPL, K: 2.5, WindowHours: 168, LookbackHours: 336}
	if _, err := agg.Anomalies(context.Background(), p); err != nil {
		t.Fatalf("anomalies: %v", err)
	}
	if got := store.lastN[domrepo.MetricCPL]; got != 168+336+1 {
		t.Fatalf("fetched %d rows, want %d", got, 168+336+1)
	}
}

func TestAnomaliesUnknownMetric(t *testing.T) {
	store := newStore(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), 100)
	agg := NewInsightAggregator(store, &fakeForecaster{}, &fakeDetector{}, nopMetrics{})

	p := domsvc.AnomalyParams{Metric: domrepo.Metric("ctr"), K: 2.5, WindowHours: 168, LookbackHours: 336}
	if _, err := agg.Anomalies(context.Background(), p); err == nil {
		t.Fatalf("expected validation error for unknown metric")
	}
	if store.lastN[domrepo.Metric("ctr")] != 0 {
		t.Fatalf("store queried for invalid metric")
	}
}

func TestKPISnapshot(t *testing.T) {
	store := newStore(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), 100)
	agg := NewInsightAggregator(store, &fakeForecaster{}, &fakeDetector{}, nopMetrics{})

	kpi, err := agg.KPI(context.Background(), 24)
	if err != nil {
		t.Fatalf("kpi: %v", err)
	}
	if kpi.WindowHours != 24 {
		t.Fatalf("window = %d", kpi.WindowHours)
	}
	if kpi.Leads != 240 {
		t.Fatalf("leads = %d, want 240", kpi.Leads)
	}
	if kpi.CPL != 2 || kpi.ROI != 0.5 {
		t.Fatalf("cpl = %v roi = %v", kpi.CPL, kpi.ROI)
	}
}

func TestGetInsightsPartialFailure(t *testing.T) {
	store := newStore(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), 600)
	agg := NewInsightAggregator(store, &fakeForecaster{err: errors.New("model down")}, &fakeDetector{}, nopMetrics{})
	uc := NewInsightsAggregateUseCase(agg)

	res, err := uc.GetInsights(context.Background(), GetInsightsParams{})
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if res.Forecast != nil {
		t.Fatalf("forecast should be absent on failure")
	}
	if res.Errors["forecast"] == "" {
		t.Fatalf("missing forecast error, got %+v", res.Errors)
	}
	if res.KPI == nil {
		t.Fatalf("kpi missing despite forecast failure")
	}
	if len(res.Anomalies) != 3 {
		t.Fatalf("anomalies for %d metrics, want 3", len(res.Anomalies))
	}
}

func TestGetSeriesValidation(t *testing.T) {
	store := newStore(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), 48)
	uc := NewObservationsUseCase(store)

	from := time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	if _, err := uc.GetSeries(context.Background(), GetSeriesParams{Metric: "ctr", From: from, To: to}); err == nil {
		t.Fatalf("expected unknown metric error")
	}
	if _, err := uc.GetSeries(context.Background(), GetSeriesParams{Metric: domrepo.MetricLeads, From: to, To: from}); err == nil {
		t.Fatalf("expected range error")
	}

	res, err := uc.GetSeries(context.Background(), GetSeriesParams{Metric: domrepo.MetricLeads, From: from, To: to})
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if res.Count != 25 {
		t.Fatalf("count = %d, want 25", res.Count)
	}
}
