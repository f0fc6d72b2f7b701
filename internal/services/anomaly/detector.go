package anomaly

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"LeadPulse/internal/domain/models"
	"LeadPulse/internal/domain/repository"
	domsvc "LeadPulse/internal/domain/service"
	"LeadPulse/internal/services/features"
)

// Default detection parameters for the hourly dashboard.
const (
	DefaultK             = 2.5
	DefaultWindowHours   = 168 // one week baseline
	DefaultLookbackHours = 336 // report the last two weeks
)

// ErrUnknownMetric rejects metrics outside the enumerated set.
var ErrUnknownMetric = errors.New("unknown metric")

// DefaultParams returns detection parameters for metric with the
// dashboard defaults filled in.
func DefaultParams(metric repository.Metric) domsvc.AnomalyParams {
	return domsvc.AnomalyParams{
		Metric:        metric,
		K:             DefaultK,
		WindowHours:   DefaultWindowHours,
		LookbackHours: DefaultLookbackHours,
	}
}

// Detector flags hours whose value deviates from a trailing, never
// peeking baseline by more than k standard deviations:
//
//	z(t) = (x(t) - mean(window before t)) / std(window before t)
//
// The evaluated hour is excluded from its own baseline, so a single
// extreme spike cannot inflate the statistics used to judge it.
type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

// Detect runs one pass over an ascending hourly series. Only hours with
// a full baseline window strictly before them are scored; a
// zero-variance baseline yields no defined z-score and the hour is
// silently excluded. Retained rows are limited to the lookback horizon
// from the latest timestamp and sorted most severe first (|z|
// descending, ties in original series order).
func (d *Detector) Detect(series []models.Observation, p domsvc.AnomalyParams) ([]models.AnomalyRecord, error) {
	if !repository.IsValidMetric(p.Metric) {
		return nil, fmt.Errorf("%w: %q (want cpl, roi or leads)", ErrUnknownMetric, p.Metric)
	}
	if p.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %v", p.K)
	}
	if p.WindowHours <= 0 {
		return nil, fmt.Errorf("window_hours must be positive, got %d", p.WindowHours)
	}
	if p.LookbackHours <= 0 {
		return nil, fmt.Errorf("lookback_hours must be positive, got %d", p.LookbackHours)
	}
	if len(series) == 0 {
		return nil, nil
	}

	cutoff := series[len(series)-1].Bucket.Add(-time.Duration(p.LookbackHours) * time.Hour)

	baseline := features.NewAccumulator(p.WindowHours)
	out := make([]models.AnomalyRecord, 0)
	for _, o := range series {
		if baseline.Full() {
			sigma := baseline.Std()
			if sigma != 0 {
				z := (o.Value - baseline.Mean()) / sigma
				if math.Abs(z) > p.K && !o.Bucket.Before(cutoff) {
					out = append(out, models.AnomalyRecord{
						Bucket: o.Bucket,
						Metric: string(p.Metric),
						Value:  o.Value,
						ZScore: z,
					})
				}
			}
		}
		// the evaluated hour enters the baseline only for later hours
		baseline.Push(o.Value)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ZScore) > math.Abs(out[j].ZScore)
	})
	return out, nil
}

var _ domsvc.AnomalyDetector = (*Detector)(nil)
