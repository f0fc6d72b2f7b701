package features

import (
	"math"
	"reflect"
	"testing"
	"time"

	"LeadPulse/internal/domain/models"
)

var testBase = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func hourlySeries(n int) []models.Observation {
	out := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		out[i] = models.Observation{Bucket: testBase.Add(time.Duration(i) * time.Hour), Value: float64(i)}
	}
	return out
}

func TestBuildRowDeterministic(t *testing.T) {
	hist := hourlySeries(100)
	ts := testBase.Add(100 * time.Hour)
	cfg := DefaultConfig()

	a := BuildRow(ts, hist, cfg)
	b := BuildRow(ts, hist, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("rows differ for identical inputs:\n%v\n%v", a, b)
	}
}

func TestBuildRowLagsAndRolling(t *testing.T) {
	hist := hourlySeries(200) // values 0..199
	ts := testBase.Add(200 * time.Hour)
	cfg := Config{Lags: []int{1, 2, 6, 12, 24}, Windows: []int{24}}

	row := BuildRow(ts, hist, cfg)

	want := map[string]float64{
		"lag1":       199,
		"lag2":       198,
		"lag6":       194,
		"lag12":      188,
		"lag24":      176,
		"rollmean24": 187.5, // mean(176..199)
	}
	for k, v := range want {
		if got := row[k]; got != v {
			t.Fatalf("%s = %v, want %v", k, got, v)
		}
	}
}

func TestBuildRowShortHistoryFallbacks(t *testing.T) {
	hist := []models.Observation{
		{Bucket: testBase, Value: 5},
		{Bucket: testBase.Add(time.Hour), Value: 7},
		{Bucket: testBase.Add(2 * time.Hour), Value: 9},
	}
	ts := testBase.Add(3 * time.Hour)
	cfg := Config{Lags: []int{1, 24}, Windows: []int{24}}

	row := BuildRow(ts, hist, cfg)

	if row["lag1"] != 9 {
		t.Fatalf("lag1 = %v, want 9", row["lag1"])
	}
	// lag deeper than history reuses the earliest available value
	if row["lag24"] != 5 {
		t.Fatalf("lag24 = %v, want 5 (earliest fallback)", row["lag24"])
	}
	// rolling window longer than history averages all available values
	if row["rollmean24"] != 7 {
		t.Fatalf("rollmean24 = %v, want 7", row["rollmean24"])
	}
}

func TestBuildRowEmptyHistory(t *testing.T) {
	ts := testBase
	row := BuildRow(ts, nil, DefaultConfig())
	for _, lag := range DefaultLags {
		if row[LagName(lag)] != 0 {
			t.Fatalf("%s = %v, want 0 for empty history", LagName(lag), row[LagName(lag)])
		}
	}
	for _, w := range DefaultWindows {
		if row[RollName(w)] != 0 {
			t.Fatalf("%s = %v, want 0 for empty history", RollName(w), row[RollName(w)])
		}
	}
}

func TestCalendarEncodings(t *testing.T) {
	// 2025-01-06 is a Monday
	ts := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC)
	row := Calendar(ts)

	if row["hour"] != 18 || row["dayofweek"] != 0 || row["month"] != 1 {
		t.Fatalf("calendar = hour %v dow %v month %v", row["hour"], row["dayofweek"], row["month"])
	}

	const eps = 1e-12
	if math.Abs(row["hour_sin"]-math.Sin(2*math.Pi*18/24)) > eps {
		t.Fatalf("hour_sin = %v", row["hour_sin"])
	}
	if math.Abs(row["dow_cos"]-1) > eps {
		t.Fatalf("dow_cos = %v, want 1 on Monday", row["dow_cos"])
	}
	if math.Abs(row["month_cos"]-math.Cos(2*math.Pi/12)) > eps {
		t.Fatalf("month_cos = %v", row["month_cos"])
	}
}

func TestCalendarSundayMapsToSix(t *testing.T) {
	// 2025-01-05 is a Sunday; trained convention is Monday=0..Sunday=6
	ts := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	if row := Calendar(ts); row["dayofweek"] != 6 {
		t.Fatalf("dayofweek = %v, want 6", row["dayofweek"])
	}
}
