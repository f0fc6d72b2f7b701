package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"LeadPulse/internal/domain/models"
)

type fakeDirectModel struct {
	leads []int64
	err   error
}

func (m *fakeDirectModel) PredictRange(_ context.Context, start time.Time, horizonHours int) ([]models.ForecastPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.ForecastPoint, 0, len(m.leads))
	for i, v := range m.leads {
		out = append(out, models.ForecastPoint{Bucket: start.Add(time.Duration(i) * time.Hour), Leads: v})
	}
	return out, nil
}

func TestDirectForecastClampsAndAligns(t *testing.T) {
	hist := seedHistory(24, 10)
	f := NewDirectForecaster(&fakeDirectModel{leads: []int64{5, -2, 7}})

	pts, err := f.Forecast(context.Background(), hist, 3)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	want := hist[len(hist)-1].Bucket.Add(time.Hour)
	for i, p := range pts {
		if !p.Bucket.Equal(want.Add(time.Duration(i) * time.Hour)) {
			t.Fatalf("point %d bucket = %v", i, p.Bucket)
		}
		if p.Leads < 0 {
			t.Fatalf("point %d leads = %d, want clamped", i, p.Leads)
		}
	}
	if pts[1].Leads != 0 {
		t.Fatalf("negative direct prediction not clamped: %d", pts[1].Leads)
	}
}

func TestDirectForecastLengthMismatch(t *testing.T) {
	hist := seedHistory(24, 10)
	f := NewDirectForecaster(&fakeDirectModel{leads: []int64{5, 6}})

	if _, err := f.Forecast(context.Background(), hist, 3); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestDirectForecastModelError(t *testing.T) {
	hist := seedHistory(24, 10)
	wantErr := errors.New("upstream down")
	f := NewDirectForecaster(&fakeDirectModel{err: wantErr})

	if _, err := f.Forecast(context.Background(), hist, 3); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped model error", err)
	}
}
