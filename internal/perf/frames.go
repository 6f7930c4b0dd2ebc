// Package perf keeps rolling statistics of frame render times.
package perf

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the number of frames kept by NewFrames(0).
const DefaultWindow = 120

// Summary describes the frames currently in the window.
type Summary struct {
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	P95    time.Duration
	Max    time.Duration
}

func (s Summary) String() string {
	if s.Count == 0 {
		return "no frames"
	}
	return fmt.Sprintf("%d frames, mean %v ± %v, p95 %v, max %v",
		s.Count, s.Mean.Round(time.Microsecond), s.StdDev.Round(time.Microsecond),
		s.P95.Round(time.Microsecond), s.Max.Round(time.Microsecond))
}

// Frames is a ring buffer of render durations. It is safe for concurrent use.
type Frames struct {
	mu      sync.Mutex
	samples []float64 // nanoseconds
	next    int
	full    bool
}

// NewFrames returns a window of the given size; size <= 0 uses DefaultWindow.
func NewFrames(size int) *Frames {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Frames{samples: make([]float64, size)}
}

// Record adds one frame duration, evicting the oldest when full.
func (f *Frames) Record(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.samples[f.next] = float64(d)
	f.next++
	if f.next == len(f.samples) {
		f.next = 0
		f.full = true
	}
}

// Reset drops all recorded frames.
func (f *Frames) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = 0
	f.full = false
}

// Summary computes statistics over the current window.
func (f *Frames) Summary() Summary {
	f.mu.Lock()
	n := f.next
	if f.full {
		n = len(f.samples)
	}
	data := make([]float64, n)
	copy(data, f.samples[:n])
	f.mu.Unlock()

	if n == 0 {
		return Summary{}
	}

	sort.Float64s(data)
	mean, std := stat.MeanStdDev(data, nil)
	if n == 1 {
		std = 0
	}
	return Summary{
		Count:  n,
		Mean:   time.Duration(mean),
		StdDev: time.Duration(std),
		P95:    time.Duration(stat.Quantile(0.95, stat.Empirical, data, nil)),
		Max:    time.Duration(data[n-1]),
	}
}
