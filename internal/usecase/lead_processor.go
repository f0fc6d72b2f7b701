package usecase

import (
	"context"
	"fmt"
	"time"

	"LeadPulse/internal/domain/models"
	drepo "LeadPulse/internal/domain/repository"
)

// LeadProcessor routes captured lead events to the configured backend.
type LeadProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewLeadProcessor creates a new LeadProcessor instance.
func NewLeadProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *LeadProcessor {
	return &LeadProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single lead event to the configured backend.
func (p *LeadProcessor) Process(ctx context.Context, ev *models.LeadEvent) error {
	if ev == nil {
		return fmt.Errorf("lead event is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, ev)
	case "clickhouse":
		err = p.store.Store(ctx, ev)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process lead: %w", err)
	}

	p.metrics.RecordEventIngested(p.backend, ev.Campaign)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple lead events in a batch.
func (p *LeadProcessor) ProcessBatch(ctx context.Context, evs []*models.LeadEvent) error {
	if len(evs) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, evs)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, evs)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, ev := range evs {
		p.metrics.RecordEventIngested(p.backend, ev.Campaign)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *LeadProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
