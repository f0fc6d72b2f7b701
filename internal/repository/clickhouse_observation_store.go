package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"LeadPulse/internal/domain/models"
	domrepo "LeadPulse/internal/domain/repository"
	pkgch "LeadPulse/pkg/clickhouse"
	applogger "LeadPulse/pkg/logger"
)

const leadEventsTable = "leadpulse.lead_events_raw"

// CHObservationStore implements ObservationStore backed by ClickHouse.
// Hourly series are aggregated from raw lead events at query time, so
// the API always reflects the latest writes without a materialized
// view in the path.
type CHObservationStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHObservationStore(ch *pkgch.Client) *CHObservationStore {
	return &CHObservationStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHObservationStore) GetHourly(ctx context.Context, metric domrepo.Metric, from, to time.Time) ([]models.Observation, error) {
	start := time.Now()
	expr, err := exprForMetric(metric)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT toStartOfHour(ts) AS bucket, %s AS value
        FROM %s
        WHERE ts >= ? AND ts <= ?
        GROUP BY bucket
        ORDER BY bucket ASC
    `
	q := fmt.Sprintf(qtpl, expr, leadEventsTable)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_hourly query error",
				applogger.String("metric", string(metric)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get hourly %s: %w", metric, err)
	}
	defer rows.Close()

	out := make([]models.Observation, 0, 1024)
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Bucket, &o.Value); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_hourly scan error",
					applogger.String("metric", string(metric)),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_hourly rows error",
				applogger.String("metric", string(metric)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_hourly ok",
			applogger.String("metric", string(metric)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationStore) GetLatestN(ctx context.Context, metric domrepo.Metric, n int) ([]models.Observation, error) {
	start := time.Now()
	expr, err := exprForMetric(metric)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT toStartOfHour(ts) AS bucket, %s AS value
        FROM %s
        GROUP BY bucket
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, expr, leadEventsTable)
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_hourly query error",
				applogger.String("metric", string(metric)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest hourly %s: %w", metric, err)
	}
	defer rows.Close()

	tmp := make([]models.Observation, 0, n)
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Bucket, &o.Value); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse latest_hourly scan error",
					applogger.String("metric", string(metric)),
					applogger.Int("limit", n),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		tmp = append(tmp, o)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_hourly rows error",
				applogger.String("metric", string(metric)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_hourly ok",
			applogger.String("metric", string(metric)),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

// exprForMetric maps a metric to its hourly aggregate over raw events.
// cpl and roi guard their denominators so empty-cost hours come back
// as 0 instead of a division error.
func exprForMetric(metric domrepo.Metric) (string, error) {
	switch metric {
	case domrepo.MetricLeads:
		return "toFloat64(count())", nil
	case domrepo.MetricCPL:
		return "sum(cost) / toFloat64(count())", nil
	case domrepo.MetricROI:
		return "if(sum(cost) > 0, (sum(revenue) - sum(cost)) / sum(cost), 0)", nil
	default:
		return "", fmt.Errorf("unsupported metric: %s", metric)
	}
}

var _ domrepo.ObservationStore = (*CHObservationStore)(nil)
