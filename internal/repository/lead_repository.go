package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"LeadPulse/internal/domain/models"
	"LeadPulse/internal/domain/repository"
	pkgkafka "LeadPulse/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, ev *models.LeadEvent) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, campaign, cost, revenue, source, event_id, seq) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	// Simple idempotency placeholders: event_id and seq derived from campaign+timestamp
	eventID := fmt.Sprintf("%s-%d", ev.Campaign, ev.Timestamp)
	seq := uint64(ev.Timestamp)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(ev.Timestamp, 0),
		ev.Campaign,
		ev.Cost,
		ev.Revenue,
		"tracker",
		eventID,
		seq,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, evs []*models.LeadEvent) error {
	if len(evs) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(evs); start += chunkSize {
		end := start + chunkSize
		if end > len(evs) {
			end = len(evs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, ev := range evs[start:end] {
			if ev == nil || ev.Campaign == "" || ev.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", ev.Campaign, ev.Timestamp)
			seq := uint64(ev.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(ev.Timestamp, 0),
				ev.Campaign,
				ev.Cost,
				ev.Revenue,
				"tracker",
				eventID,
				seq,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, campaign, cost, revenue, source, event_id, seq) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, campaign string, from, to time.Time, limit int) ([]*models.LeadEvent, error) {
	q := fmt.Sprintf("SELECT campaign, ts, cost, revenue FROM %s WHERE campaign = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, campaign, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evs []*models.LeadEvent
	for rows.Next() {
		var ev models.LeadEvent
		var ts time.Time
		if err := rows.Scan(&ev.Campaign, &ts, &ev.Cost, &ev.Revenue); err != nil {
			return nil, err
		}
		ev.Timestamp = ts.Unix()
		evs = append(evs, &ev)
	}
	return evs, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev *models.LeadEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Campaign), map[string]interface{}{
		"campaign": ev.Campaign,
		"t":        ev.Timestamp,
		"cost":     ev.Cost,
		"revenue":  ev.Revenue,
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, evs []*models.LeadEvent) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(evs))
	for i, ev := range evs {
		msgs[i] = pkgkafka.Message{
			Key: []byte(ev.Campaign),
			Value: map[string]interface{}{
				"campaign": ev.Campaign,
				"t":        ev.Timestamp,
				"cost":     ev.Cost,
				"revenue":  ev.Revenue,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
