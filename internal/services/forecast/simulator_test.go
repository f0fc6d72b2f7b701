package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"LeadPulse/internal/domain/models"
	"LeadPulse/internal/services/features"
)

var testBase = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func seedHistory(n int, value float64) []models.Observation {
	out := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		out[i] = models.Observation{Bucket: testBase.Add(time.Duration(i) * time.Hour), Value: value}
	}
	return out
}

// spyModel records every feature row it is asked to score.
type spyModel struct {
	rows    []models.FeatureRow
	predict func(step int, row models.FeatureRow) (float64, error)
}

func (m *spyModel) Predict(_ context.Context, row models.FeatureRow) (float64, error) {
	m.rows = append(m.rows, row)
	return m.predict(len(m.rows), row)
}

func constModel(v float64) *spyModel {
	return &spyModel{predict: func(int, models.FeatureRow) (float64, error) { return v, nil }}
}

func TestForecastLengthAndTimestamps(t *testing.T) {
	hist := seedHistory(336, 10)
	sim := NewSimulator(constModel(10), features.DefaultConfig())

	pts, err := sim.Forecast(context.Background(), hist, 48)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(pts) != 48 {
		t.Fatalf("got %d points, want 48", len(pts))
	}
	next := hist[len(hist)-1].Bucket.Add(time.Hour)
	for i, p := range pts {
		if !p.Bucket.Equal(next) {
			t.Fatalf("point %d bucket = %v, want %v (contiguous hourly)", i, p.Bucket, next)
		}
		next = next.Add(time.Hour)
	}
}

func TestForecastNonNegativeIntegerCounts(t *testing.T) {
	hist := seedHistory(48, 10)

	neg := NewSimulator(constModel(-3.7), features.DefaultConfig())
	pts, err := neg.Forecast(context.Background(), hist, 5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for _, p := range pts {
		if p.Leads != 0 {
			t.Fatalf("negative prediction not clamped: %d", p.Leads)
		}
	}

	frac := NewSimulator(constModel(41.4), features.DefaultConfig())
	pts, err = frac.Forecast(context.Background(), hist, 3)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for _, p := range pts {
		if p.Leads != 41 {
			t.Fatalf("leads = %d, want rounded 41", p.Leads)
		}
	}
}

// A model trained on lags is only valid if lag features at later steps
// come from earlier predictions, not from frozen ground truth.
func TestForecastRecursiveFeedback(t *testing.T) {
	const v = 123.0
	hist := seedHistory(336, 7) // every historical value distinct from v
	model := constModel(v)
	sim := NewSimulator(model, features.DefaultConfig())

	if _, err := sim.Forecast(context.Background(), hist, 30); err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(model.rows) != 30 {
		t.Fatalf("model saw %d rows, want 30", len(model.rows))
	}
	// at step 25 the 24h lag must be the step-1 prediction
	got := model.rows[24][features.LagName(24)]
	if got != v {
		t.Fatalf("lag24 at step 25 = %v, want simulated prediction %v", got, v)
	}
	// and at step 1 it is still genuine history
	if got := model.rows[0][features.LagName(24)]; got != 7 {
		t.Fatalf("lag24 at step 1 = %v, want historical 7", got)
	}
}

func TestForecastStepFailure(t *testing.T) {
	hist := seedHistory(48, 10)
	model := &spyModel{predict: func(step int, _ models.FeatureRow) (float64, error) {
		if step == 5 {
			return 0, fmt.Errorf("model service unavailable")
		}
		return 10, nil
	}}
	sim := NewSimulator(model, features.DefaultConfig())

	pts, err := sim.Forecast(context.Background(), hist, 10)
	if pts != nil {
		t.Fatalf("partial forecast returned alongside failure: %d points", len(pts))
	}
	var perr *PredictionError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want PredictionError", err)
	}
	if perr.Step != 5 {
		t.Fatalf("failed step = %d, want 5", perr.Step)
	}
}

func TestForecastNonFinitePrediction(t *testing.T) {
	hist := seedHistory(48, 10)
	sim := NewSimulator(constModel(math.NaN()), features.DefaultConfig())

	_, err := sim.Forecast(context.Background(), hist, 3)
	var perr *PredictionError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want PredictionError", err)
	}
	if perr.Step != 1 {
		t.Fatalf("failed step = %d, want 1", perr.Step)
	}
}

func TestForecastInvalidHorizon(t *testing.T) {
	hist := seedHistory(48, 10)
	sim := NewSimulator(constModel(10), features.DefaultConfig())

	for _, h := range []int{0, -1} {
		if _, err := sim.Forecast(context.Background(), hist, h); !errors.Is(err, ErrInvalidHorizon) {
			t.Fatalf("horizon %d: error = %v, want ErrInvalidHorizon", h, err)
		}
	}
}

func TestForecastEmptyHistory(t *testing.T) {
	sim := NewSimulator(constModel(10), features.DefaultConfig())
	if _, err := sim.Forecast(context.Background(), nil, 10); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("error = %v, want ErrEmptyHistory", err)
	}
}

// The incremental accumulator path must stay behavior-identical to the
// pure BuildRow over the same evolving buffer.
func TestForecastRowsMatchBuildRow(t *testing.T) {
	cfg := features.Config{Lags: []int{1, 2, 6, 12, 24}, Windows: []int{24, 168}}
	hist := make([]models.Observation, 200)
	for i := range hist {
		hist[i] = models.Observation{
			Bucket: testBase.Add(time.Duration(i) * time.Hour),
			Value:  float64(10 + (i*7)%13),
		}
	}

	model := &spyModel{predict: func(step int, _ models.FeatureRow) (float64, error) {
		return float64(20 + step%5), nil
	}}
	sim := NewSimulator(model, cfg)

	const horizon = 40
	pts, err := sim.Forecast(context.Background(), hist, horizon)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	buf := append([]models.Observation(nil), hist...)
	for step := 0; step < horizon; step++ {
		ts := buf[len(buf)-1].Bucket.Add(time.Hour)
		want := features.BuildRow(ts, buf, cfg)
		got := model.rows[step]
		if len(got) != len(want) {
			t.Fatalf("step %d: row has %d features, want %d", step+1, len(got), len(want))
		}
		for k, w := range want {
			if math.Abs(got[k]-w) > 1e-9 {
				t.Fatalf("step %d: %s = %v, want %v", step+1, k, got[k], w)
			}
		}
		buf = append(buf, models.Observation{Bucket: ts, Value: float64(pts[step].Leads)})
	}
}

func TestForecastShortHistoryWarmStart(t *testing.T) {
	// shorter than every lag and window: fallbacks apply, no rejection
	hist := seedHistory(3, 5)
	sim := NewSimulator(constModel(8), features.DefaultConfig())

	pts, err := sim.Forecast(context.Background(), hist, 12)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(pts) != 12 {
		t.Fatalf("got %d points, want 12", len(pts))
	}
}
