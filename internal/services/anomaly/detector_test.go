package anomaly

import (
	"errors"
	"math"
	"testing"
	"time"

	"LeadPulse/internal/domain/models"
	"LeadPulse/internal/domain/repository"
	domsvc "LeadPulse/internal/domain/service"
)

var testBase = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

// alternating builds n hours of 10,12,10,12,... (mean 11, population
// std exactly 1 over any even-length window).
func alternating(n int) []models.Observation {
	out := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		v := 10.0
		if i%2 == 1 {
			v = 12.0
		}
		out[i] = models.Observation{Bucket: testBase.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return out
}

func params(metric repository.Metric, k float64, window, lookback int) domsvc.AnomalyParams {
	return domsvc.AnomalyParams{Metric: metric, K: k, WindowHours: window, LookbackHours: lookback}
}

func TestDetectSpike(t *testing.T) {
	series := alternating(200)
	spikeAt := testBase.Add(200 * time.Hour)
	series = append(series, models.Observation{Bucket: spikeAt, Value: 50})

	recs, err := NewDetector().Detect(series, params(repository.MetricCPL, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(recs))
	}
	r := recs[0]
	if !r.Bucket.Equal(spikeAt) {
		t.Fatalf("flagged %v, want %v", r.Bucket, spikeAt)
	}
	// trailing baseline: mean 11, population std 1 -> z = 39. Any
	// leakage of the spike into its own window would shrink this.
	if math.Abs(r.ZScore-39) > 1e-9 {
		t.Fatalf("z = %v, want 39", r.ZScore)
	}
	if r.Metric != "cpl" || r.Value != 50 {
		t.Fatalf("record = %+v", r)
	}
}

func TestDetectZeroVarianceExcluded(t *testing.T) {
	series := make([]models.Observation, 0, 101)
	for i := 0; i < 100; i++ {
		series = append(series, models.Observation{Bucket: testBase.Add(time.Duration(i) * time.Hour), Value: 5})
	}
	series = append(series, models.Observation{Bucket: testBase.Add(100 * time.Hour), Value: 50})

	recs, err := NewDetector().Detect(series, params(repository.MetricLeads, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	// constant baseline has sigma 0: z undefined, row excluded
	if len(recs) != 0 {
		t.Fatalf("got %d anomalies, want 0", len(recs))
	}
}

func TestDetectUnknownMetric(t *testing.T) {
	_, err := NewDetector().Detect(alternating(10), params(repository.Metric("ctr"), 2.5, 24, 336))
	if !errors.Is(err, ErrUnknownMetric) {
		t.Fatalf("error = %v, want ErrUnknownMetric", err)
	}
}

func TestDetectInvalidParams(t *testing.T) {
	d := NewDetector()
	series := alternating(10)

	cases := []domsvc.AnomalyParams{
		params(repository.MetricROI, 0, 24, 336),
		params(repository.MetricROI, -1, 24, 336),
		params(repository.MetricROI, 2.5, 0, 336),
		params(repository.MetricROI, 2.5, 24, 0),
	}
	for i, p := range cases {
		if _, err := d.Detect(series, p); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestDetectLookbackFilter(t *testing.T) {
	series := alternating(600)
	series[100].Value = 50 // old spike, outside the lookback horizon
	series[590].Value = 50 // recent spike

	recs, err := NewDetector().Detect(series, params(repository.MetricLeads, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d anomalies, want 1 (old spike filtered)", len(recs))
	}
	if !recs[0].Bucket.Equal(series[590].Bucket) {
		t.Fatalf("flagged %v, want %v", recs[0].Bucket, series[590].Bucket)
	}
}

func TestDetectOrderedBySeverity(t *testing.T) {
	series := alternating(300)
	series[250].Value = 30 // z = 19
	series[280].Value = 50 // z = 39

	recs, err := NewDetector().Detect(series, params(repository.MetricCPL, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d anomalies, want 2", len(recs))
	}
	if !recs[0].Bucket.Equal(series[280].Bucket) || !recs[1].Bucket.Equal(series[250].Bucket) {
		t.Fatalf("order = [%v, %v], want most severe first", recs[0].Bucket, recs[1].Bucket)
	}
	if math.Abs(recs[0].ZScore) <= math.Abs(recs[1].ZScore) {
		t.Fatalf("|z| not descending: %v then %v", recs[0].ZScore, recs[1].ZScore)
	}
}

func TestDetectNegativeDeviation(t *testing.T) {
	series := alternating(100)
	series[90].Value = -30 // drop far below baseline

	recs, err := NewDetector().Detect(series, params(repository.MetricROI, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(recs))
	}
	if recs[0].ZScore >= 0 {
		t.Fatalf("z = %v, want negative", recs[0].ZScore)
	}
}

func TestDetectEmptySeries(t *testing.T) {
	recs, err := NewDetector().Detect(nil, params(repository.MetricLeads, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d anomalies, want 0", len(recs))
	}
}

func TestDetectRequiresFullWindow(t *testing.T) {
	// 23 hours of history then a spike: window of 24 never fills, so
	// nothing is scored
	series := alternating(23)
	series = append(series, models.Observation{Bucket: testBase.Add(23 * time.Hour), Value: 500})

	recs, err := NewDetector().Detect(series, params(repository.MetricLeads, 2.5, 24, 336))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d anomalies, want 0 without a full baseline", len(recs))
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(repository.MetricCPL)
	if p.K != 2.5 || p.WindowHours != 168 || p.LookbackHours != 336 {
		t.Fatalf("defaults = %+v", p)
	}
}
