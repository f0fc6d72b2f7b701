package service

import (
	"context"
	"time"

	"LeadPulse/internal/domain/models"
	"LeadPulse/internal/domain/repository"
)

// Forecaster families. The variant is chosen explicitly when the model
// is registered (config), never by inspecting a live model's type.
const (
	FamilyRecursive = "recursive"
	FamilyDirect    = "direct"
)

// LeadForecaster produces an hourly leads forecast seeded from history.
type LeadForecaster interface {
	Family() string
	Forecast(ctx context.Context, history []models.Observation, horizonHours int) ([]models.ForecastPoint, error)
}

// StepModel is the opaque single-step predictive capability consumed
// by the recursive simulator: one feature row in, one scalar out.
type StepModel interface {
	Predict(ctx context.Context, row models.FeatureRow) (float64, error)
}

// DirectModel predicts a whole future range from timestamps alone,
// without recursive feedback (e.g. Prophet-style models).
type DirectModel interface {
	PredictRange(ctx context.Context, start time.Time, horizonHours int) ([]models.ForecastPoint, error)
}

// AnomalyParams configure one detection pass.
type AnomalyParams struct {
	Metric        repository.Metric
	K             float64
	WindowHours   int
	LookbackHours int
}

// AnomalyDetector flags hours deviating from their trailing baseline.
type AnomalyDetector interface {
	Detect(series []models.Observation, p AnomalyParams) ([]models.AnomalyRecord, error)
}
