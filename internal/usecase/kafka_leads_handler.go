package usecase

import (
	"context"
	"encoding/json"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	pkgkafka "LeadPulse/pkg/kafka"
)

// KafkaLeadsHandler consumes lead events from Kafka and writes them to storage.
type KafkaLeadsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaLeadsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaLeadsHandler {
	return &KafkaLeadsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaLeadsHandler) Topic() string { return h.topic }

// incoming message schema: {campaign, t, cost, revenue}
func (h *KafkaLeadsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Campaign string  `json:"campaign"`
		T        int64   `json:"t"`
		Cost     float64 `json:"cost"`
		Revenue  float64 `json:"revenue"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.LeadEvent{
		Campaign:  m.Campaign,
		Timestamp: m.T,
		Cost:      m.Cost,
		Revenue:   m.Revenue,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventIngested("clickhouse", m.Campaign)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaLeadsHandler)(nil)
