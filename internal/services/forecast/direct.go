package forecast

import (
	"context"
	"fmt"
	"time"

	"LeadPulse/internal/domain/models"
	domsvc "LeadPulse/internal/domain/service"
)

// DirectForecaster adapts a future-range model (one that predicts all
// future points from timestamps alone, without recursive feedback) to
// the LeadForecaster capability. The variant in use is picked at model
// registration time; nothing here inspects the model's type.
type DirectForecaster struct {
	model domsvc.DirectModel
}

func NewDirectForecaster(model domsvc.DirectModel) *DirectForecaster {
	return &DirectForecaster{model: model}
}

// Family implements LeadForecaster.
func (f *DirectForecaster) Family() string { return domsvc.FamilyDirect }

// Forecast asks the model for the full range starting one hour after
// the last observation, then normalizes buckets to contiguous hourly
// spacing and clamps counts at zero so both forecaster variants honor
// the same output invariants.
func (f *DirectForecaster) Forecast(ctx context.Context, history []models.Observation, horizonHours int) ([]models.ForecastPoint, error) {
	if horizonHours <= 0 {
		return nil, ErrInvalidHorizon
	}
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	start := history[len(history)-1].Bucket.Add(time.Hour)
	pts, err := f.model.PredictRange(ctx, start, horizonHours)
	if err != nil {
		return nil, fmt.Errorf("direct forecast: %w", err)
	}
	if len(pts) != horizonHours {
		return nil, fmt.Errorf("direct model returned %d points, want %d", len(pts), horizonHours)
	}

	out := make([]models.ForecastPoint, horizonHours)
	for i, p := range pts {
		leads := p.Leads
		if leads < 0 {
			leads = 0
		}
		out[i] = models.ForecastPoint{Bucket: start.Add(time.Duration(i) * time.Hour), Leads: leads}
	}
	return out, nil
}

var _ domsvc.LeadForecaster = (*DirectForecaster)(nil)
