package repository

import (
	"context"
	"time"

	"LeadPulse/internal/domain/models"
)

type LeadStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.LeadEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, ev *models.LeadEvent) error
	PublishBatch(ctx context.Context, evs []*models.LeadEvent) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, ev *models.LeadEvent) error
	StoreBatch(ctx context.Context, evs []*models.LeadEvent) error
	Query(ctx context.Context, campaign string, from, to time.Time, limit int) ([]*models.LeadEvent, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordEventIngested(backend, campaign string)
	RecordError(kind string)
	RecordLeadRate(campaign string, perHour float64)
	RecordLatency(op string, seconds float64)
}
