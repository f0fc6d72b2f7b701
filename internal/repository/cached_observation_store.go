package repository

import (
	"context"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	"LeadPulse/pkg/cache"
)

// CachedObservationStore decorates an ObservationStore with a
// read-through cache. Hourly aggregates only change when the bucket
// rolls over, so even a short TTL absorbs most of the dashboard's
// repeated reads.
type CachedObservationStore struct {
	inner domrepo.ObservationStore
	cache cache.Service
	ttl   time.Duration
}

func NewCachedObservationStore(inner domrepo.ObservationStore, c cache.Service, ttl time.Duration) *CachedObservationStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedObservationStore{inner: inner, cache: c, ttl: ttl}
}

func (s *CachedObservationStore) GetHourly(ctx context.Context, metric domrepo.Metric, from, to time.Time) ([]models.Observation, error) {
	key := cache.GenerateKeyWithParams("series:hourly", string(metric), from.Unix(), to.Unix())
	var cached []models.Observation
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	out, err := s.inner.GetHourly(ctx, metric, from, to)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttl)
	return out, nil
}

func (s *CachedObservationStore) GetLatestN(ctx context.Context, metric domrepo.Metric, n int) ([]models.Observation, error) {
	key := cache.GenerateKeyWithParams("series:latest", string(metric), n)
	var cached []models.Observation
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	out, err := s.inner.GetLatestN(ctx, metric, n)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttl)
	return out, nil
}

var _ domrepo.ObservationStore = (*CachedObservationStore)(nil)
