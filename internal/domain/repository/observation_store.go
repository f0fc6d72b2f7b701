package repository

import (
	"context"
	"time"

	"LeadPulse/internal/domain/models"
)

// ObservationStore provides read-only access to hourly metric series
// for the forecasting and anomaly cores. Series come back ordered by
// bucket ascending with unique timestamps.
type ObservationStore interface {
	GetHourly(ctx context.Context, metric Metric, from, to time.Time) ([]models.Observation, error)
	GetLatestN(ctx context.Context, metric Metric, n int) ([]models.Observation, error)
}
