package features

import "math"

// Accumulator maintains running sum and sum of squares over a trailing
// window of at most size values, evicting the oldest on overflow.
// Push is O(1); Mean/Std read the current window without rescans.
type Accumulator struct {
	size  int
	buf   []float64
	head  int
	count int
	sum   float64
	sumsq float64
}

// NewAccumulator creates an accumulator over a window of size values.
func NewAccumulator(size int) *Accumulator {
	return &Accumulator{size: size, buf: make([]float64, size)}
}

// Push appends v, evicting the oldest value once the window is full.
func (a *Accumulator) Push(v float64) {
	if a.count == a.size {
		old := a.buf[a.head]
		a.sum -= old
		a.sumsq -= old * old
	} else {
		a.count++
	}
	a.buf[a.head] = v
	a.head = (a.head + 1) % a.size
	a.sum += v
	a.sumsq += v * v
}

// Count returns how many values the window currently holds.
func (a *Accumulator) Count() int { return a.count }

// Full reports whether the window holds its full size.
func (a *Accumulator) Full() bool { return a.count == a.size }

// Mean returns the arithmetic mean of the window, or 0 when empty.
func (a *Accumulator) Mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Std returns the population standard deviation (divide by N, not N-1)
// of the window, or 0 when empty.
func (a *Accumulator) Std() float64 {
	if a.count == 0 {
		return 0
	}
	n := float64(a.count)
	mean := a.sum / n
	variance := a.sumsq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
