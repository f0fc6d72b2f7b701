package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"LeadPulse/internal/domain/models"
	domsvc "LeadPulse/internal/domain/service"
	"LeadPulse/internal/services/features"
)

var (
	// ErrInvalidHorizon rejects non-positive horizons before simulation starts.
	ErrInvalidHorizon = errors.New("horizon_hours must be positive")

	// ErrEmptyHistory rejects a seed with no observations: there is no
	// last timestamp to extend from.
	ErrEmptyHistory = errors.New("history is empty")
)

// PredictionError reports a model failure at a specific simulation
// step. The simulator aborts immediately and returns no partial
// forecast alongside it.
type PredictionError struct {
	Step int // 1-based simulation step
	Err  error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("model prediction failed at step %d: %v", e.Step, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Simulator is the recursive multi-step forecaster. Each predicted hour
// is appended to a run-local history buffer, so lag and rolling
// features for later steps are recomputed from genuinely evolving
// history instead of being frozen at forecast start. A model trained on
// lag/rolling features is only valid under this feedback.
type Simulator struct {
	model domsvc.StepModel
	cfg   features.Config
}

// NewSimulator wraps a single-step model into a recursive forecaster.
func NewSimulator(model domsvc.StepModel, cfg features.Config) *Simulator {
	if len(cfg.Lags) == 0 {
		cfg.Lags = features.DefaultLags
	}
	if len(cfg.Windows) == 0 {
		cfg.Windows = features.DefaultWindows
	}
	return &Simulator{model: model, cfg: cfg}
}

// Family implements LeadForecaster.
func (s *Simulator) Family() string { return domsvc.FamilyRecursive }

// Forecast emits exactly horizonHours points with strictly increasing,
// contiguous one-hour timestamps. Predictions are clamped at zero and
// rounded to integers (leads are counts) before being fed back.
//
// Short seed histories are not rejected: the feature fallbacks handle
// warm starts. Given a deterministic model the output is deterministic;
// the simulator introduces no randomness and never retries.
func (s *Simulator) Forecast(ctx context.Context, history []models.Observation, horizonHours int) ([]models.ForecastPoint, error) {
	if horizonHours <= 0 {
		return nil, ErrInvalidHorizon
	}
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	// Run-local simulated buffer; buckets stay hourly so only values
	// need to be kept alongside the last timestamp.
	buf := make([]float64, len(history), len(history)+horizonHours)
	for i, o := range history {
		buf[i] = o.Value
	}
	last := history[len(history)-1].Bucket

	// Rolling accumulators primed from the seed tail: O(1) per-step
	// updates instead of per-window rescans. Means stay identical to
	// BuildRow, including the shorter-than-window fallback.
	accs := make([]*features.Accumulator, len(s.cfg.Windows))
	for i, w := range s.cfg.Windows {
		acc := features.NewAccumulator(w)
		start := len(buf) - w
		if start < 0 {
			start = 0
		}
		for _, v := range buf[start:] {
			acc.Push(v)
		}
		accs[i] = acc
	}

	out := make([]models.ForecastPoint, 0, horizonHours)
	for step := 1; step <= horizonHours; step++ {
		next := last.Add(time.Hour)

		row := features.Calendar(next)
		for _, lag := range s.cfg.Lags {
			if len(buf) >= lag {
				row[features.LagName(lag)] = buf[len(buf)-lag]
			} else {
				row[features.LagName(lag)] = buf[0]
			}
		}
		for i, w := range s.cfg.Windows {
			row[features.RollName(w)] = accs[i].Mean()
		}

		yhat, err := s.model.Predict(ctx, row)
		if err != nil {
			return nil, &PredictionError{Step: step, Err: err}
		}
		if math.IsNaN(yhat) || math.IsInf(yhat, 0) {
			return nil, &PredictionError{Step: step, Err: fmt.Errorf("non-finite prediction %v", yhat)}
		}
		y := math.Round(math.Max(0, yhat))

		// Feedback: later steps' lags and rolling means see this
		// prediction, not only the original ground truth.
		buf = append(buf, y)
		for _, acc := range accs {
			acc.Push(y)
		}

		out = append(out, models.ForecastPoint{Bucket: next, Leads: int64(y)})
		last = next
	}

	return out, nil
}

var _ domsvc.LeadForecaster = (*Simulator)(nil)
