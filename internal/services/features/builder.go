package features

import (
	"math"
	"strconv"
	"time"

	"LeadPulse/internal/domain/models"
)

// Default lag offsets and rolling-window lengths (hours) the production
// leads model is trained with.
var (
	DefaultLags    = []int{1, 2, 6, 12, 24}
	DefaultWindows = []int{24, 168}
)

// Config selects lag offsets and rolling-window lengths, in hours.
type Config struct {
	Lags    []int
	Windows []int
}

// DefaultConfig returns the default lag/window sets.
func DefaultConfig() Config {
	return Config{Lags: DefaultLags, Windows: DefaultWindows}
}

// LagName returns the feature key for lag L.
func LagName(lag int) string { return "lag" + strconv.Itoa(lag) }

// RollName returns the feature key for rolling window W.
func RollName(window int) string { return "rollmean" + strconv.Itoa(window) }

// Calendar extracts hour/day-of-week/month features for ts with cyclic
// sine/cosine encodings. Day of week is Monday=0..Sunday=6, matching
// the convention the model was trained with.
func Calendar(ts time.Time) models.FeatureRow {
	hour := float64(ts.Hour())
	dow := float64((int(ts.Weekday()) + 6) % 7)
	month := float64(ts.Month())

	return models.FeatureRow{
		"hour":      hour,
		"dayofweek": dow,
		"month":     month,
		"hour_sin":  math.Sin(2 * math.Pi * hour / 24),
		"hour_cos":  math.Cos(2 * math.Pi * hour / 24),
		"dow_sin":   math.Sin(2 * math.Pi * dow / 7),
		"dow_cos":   math.Cos(2 * math.Pi * dow / 7),
		"month_sin": math.Sin(2 * math.Pi * month / 12),
		"month_cos": math.Cos(2 * math.Pi * month / 12),
	}
}

// BuildRow computes the feature vector for target timestamp ts from the
// trailing history. Pure: identical inputs always yield identical rows.
// History must be ordered by bucket ascending and never contains ts.
//
// Warm-start fallbacks (modeling choices, not errors): a lag reaching
// before the first observation reuses the earliest available value; a
// rolling window longer than the history averages whatever precedes ts.
// An empty history yields zero-valued lag/rolling features.
func BuildRow(ts time.Time, history []models.Observation, cfg Config) models.FeatureRow {
	row := Calendar(ts)
	n := len(history)

	for _, lag := range cfg.Lags {
		switch {
		case n >= lag:
			row[LagName(lag)] = history[n-lag].Value
		case n > 0:
			row[LagName(lag)] = history[0].Value
		default:
			row[LagName(lag)] = 0
		}
	}

	for _, w := range cfg.Windows {
		start := n - w
		if start < 0 {
			start = 0
		}
		if n == start {
			row[RollName(w)] = 0
			continue
		}
		sum := 0.0
		for i := start; i < n; i++ {
			sum += history[i].Value
		}
		row[RollName(w)] = sum / float64(n-start)
	}

	return row
}
