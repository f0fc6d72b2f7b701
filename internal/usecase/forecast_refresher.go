package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	icache "LeadPulse/internal/service/cache"
	xhttp "LeadPulse/pkg/http"
	"LeadPulse/pkg/logger"
	"LeadPulse/pkg/queue"
)

// ForecastRefreshJobType identifies forecast refresh messages on the queue.
const ForecastRefreshJobType = "forecast_refresh"

// ForecastRefreshPayload selects which forecast variant to recompute.
type ForecastRefreshPayload struct {
	HorizonHours int `json:"horizon_hours"`
	HistoryHours int `json:"history_hours"`
}

// ForecastRefresher is a queue job that recomputes the hourly forecast
// off the request path. It renders the same response envelope the API
// writes and stores it under the same cache key, so a refreshed
// forecast is served without ever running the simulator inline.
type ForecastRefresher struct {
	agg   *InsightAggregator
	cache icache.BytesCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewForecastRefresher(agg *InsightAggregator, c icache.BytesCache, ttl time.Duration, log *logger.Logger) *ForecastRefresher {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ForecastRefresher{agg: agg, cache: c, ttl: ttl, log: log}
}

func (r *ForecastRefresher) Name() string { return "forecast_refresher" }

func (r *ForecastRefresher) Type() string { return ForecastRefreshJobType }

func (r *ForecastRefresher) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ForecastRefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	horizon := p.HorizonHours
	if horizon <= 0 {
		horizon = DefaultHorizonHours
	}
	history := p.HistoryHours
	if history <= 0 {
		history = DefaultHistoryHours
	}

	res, err := r.agg.Forecast(ctx, ForecastParams{HorizonHours: horizon, HistoryHours: history})
	if err != nil {
		return fmt.Errorf("refresh forecast: %w", err)
	}

	body, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    res,
	})
	if err != nil {
		return fmt.Errorf("render forecast: %w", err)
	}
	key := ForecastCacheKey(horizon, history)
	if err := r.cache.SetBytes(key, body, r.ttl); err != nil {
		return fmt.Errorf("warm cache %s: %w", key, err)
	}
	r.log.Info("forecast refreshed",
		logger.Int("horizon_hours", horizon),
		logger.Int("history_hours", history),
		logger.Int("points", len(res.Hourly)))
	return nil
}

// ForecastCacheKey names the cached forecast response for one
// horizon/history pair. Must match the key the API handler uses.
func ForecastCacheKey(horizonHours, historyHours int) string {
	return icache.Key("forecast", horizonHours, historyHours)
}

var _ queue.Job = (*ForecastRefresher)(nil)
