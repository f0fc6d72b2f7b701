package features

import (
	"math"
	"testing"
)

func TestAccumulatorMeanStd(t *testing.T) {
	acc := NewAccumulator(24)
	for i := 0; i < 24; i++ {
		if i%2 == 0 {
			acc.Push(10)
		} else {
			acc.Push(12)
		}
	}
	if !acc.Full() {
		t.Fatalf("expected full window")
	}
	if acc.Mean() != 11 {
		t.Fatalf("mean = %v, want 11", acc.Mean())
	}
	if acc.Std() != 1 {
		t.Fatalf("std = %v, want 1 (population)", acc.Std())
	}
}

func TestAccumulatorEviction(t *testing.T) {
	acc := NewAccumulator(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		acc.Push(v)
	}
	if acc.Count() != 3 {
		t.Fatalf("count = %d, want 3", acc.Count())
	}
	if acc.Mean() != 4 {
		t.Fatalf("mean = %v, want 4 (window {3,4,5})", acc.Mean())
	}
}

func TestAccumulatorPartialWindow(t *testing.T) {
	acc := NewAccumulator(5)
	acc.Push(2)
	acc.Push(4)
	if acc.Full() {
		t.Fatalf("window should not be full")
	}
	if acc.Count() != 2 || acc.Mean() != 3 {
		t.Fatalf("count = %d mean = %v", acc.Count(), acc.Mean())
	}
}

func TestAccumulatorMatchesNaive(t *testing.T) {
	const window = 7
	acc := NewAccumulator(window)

	// deterministic pseudo-random values
	vals := make([]float64, 50)
	seed := uint64(42)
	for i := range vals {
		seed = seed*6364136223846793005 + 1442695040888963407
		vals[i] = float64(seed%1000) / 10
	}

	for i, v := range vals {
		acc.Push(v)

		start := i + 1 - window
		if start < 0 {
			start = 0
		}
		sum, sumsq := 0.0, 0.0
		for _, w := range vals[start : i+1] {
			sum += w
			sumsq += w * w
		}
		n := float64(i + 1 - start)
		mean := sum / n
		variance := sumsq/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		std := math.Sqrt(variance)

		if math.Abs(acc.Mean()-mean) > 1e-9 {
			t.Fatalf("i=%d mean = %v, want %v", i, acc.Mean(), mean)
		}
		if math.Abs(acc.Std()-std) > 1e-9 {
			t.Fatalf("i=%d std = %v, want %v", i, acc.Std(), std)
		}
	}
}

func TestAccumulatorEmpty(t *testing.T) {
	acc := NewAccumulator(10)
	if acc.Mean() != 0 || acc.Std() != 0 {
		t.Fatalf("empty accumulator mean=%v std=%v", acc.Mean(), acc.Std())
	}
}
