package usecase

import (
	"context"
	"fmt"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
)

// ObservationsUseCase provides business logic for retrieving hourly series.
type ObservationsUseCase struct {
	store domrepo.ObservationStore
}

func NewObservationsUseCase(store domrepo.ObservationStore) *ObservationsUseCase {
	return &ObservationsUseCase{store: store}
}

type GetSeriesParams struct {
	Metric domrepo.Metric
	From   time.Time
	To     time.Time
	Limit  int
}

type GetSeriesResult struct {
	Metric string               `json:"metric"`
	From   time.Time            `json:"from"`
	To     time.Time            `json:"to"`
	Count  int                  `json:"count"`
	Series []models.Observation `json:"series"`
}

func (uc *ObservationsUseCase) GetSeries(ctx context.Context, p GetSeriesParams) (*GetSeriesResult, error) {
	if _, err := domrepo.ParseMetric(string(p.Metric)); err != nil {
		return nil, err
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	series, err := uc.store.GetHourly(ctx, p.Metric, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	if len(series) > p.Limit {
		series = series[:p.Limit]
	}

	return &GetSeriesResult{
		Metric: string(p.Metric),
		From:   p.From,
		To:     p.To,
		Count:  len(series),
		Series: series,
	}, nil
}
