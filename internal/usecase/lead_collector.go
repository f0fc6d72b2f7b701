package usecase

import (
	"context"
	"time"

	"LeadPulse/internal/domain/models"
	drepo "LeadPulse/internal/domain/repository"
	mid "LeadPulse/internal/middleware"
)

// LeadCollector collects lead events from the tracker stream and
// pushes them through the realtime pipeline.
type LeadCollector struct {
	stream  drepo.LeadStream
	proc    *LeadProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline

	// per-campaign counters for the current hour, used to expose an
	// hourly lead rate gauge
	hourStart time.Time
	counts    map[string]int
}

// NewLeadCollector creates a new LeadCollector instance.
func NewLeadCollector(stream drepo.LeadStream, proc *LeadProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *LeadCollector {
	return &LeadCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe, counts: map[string]int{}}
}

// IsConnected returns true if the tracker stream is connected.
func (c *LeadCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *LeadCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	evCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, evCh, errCh)
	return nil
}

func (c *LeadCollector) consume(ctx context.Context, evCh <-chan *models.LeadEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case ev := <-evCh:
			if ev == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, ev)
			} else {
				_ = c.proc.Process(ctx, ev)
			}
			c.recordRate(ev.Campaign)
		}
	}
}

func (c *LeadCollector) recordRate(campaign string) {
	hour := time.Now().Truncate(time.Hour)
	if !hour.Equal(c.hourStart) {
		c.hourStart = hour
		c.counts = map[string]int{}
	}
	c.counts[campaign]++
	c.metrics.RecordLeadRate(campaign, float64(c.counts[campaign]))
}

func (c *LeadCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying LeadProcessor for lifecycle management.
func (c *LeadCollector) Processor() *LeadProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *LeadCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
