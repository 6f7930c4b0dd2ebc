package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmptySummary(t *testing.T) {
	f := NewFrames(0)
	s := f.Summary()
	assert.Equal(t, Summary{}, s)
	assert.Equal(t, "no frames", s.String())
}

func TestSummary(t *testing.T) {
	f := NewFrames(100)
	for i := 1; i <= 100; i++ {
		f.Record(time.Duration(i) * time.Millisecond)
	}

	s := f.Summary()
	assert.Equal(t, 100, s.Count)
	assert.InDelta(t, float64(50500*time.Microsecond), float64(s.Mean), float64(time.Microsecond))
	assert.Equal(t, 95*time.Millisecond, s.P95)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Greater(t, s.StdDev, 28*time.Millisecond)
	assert.Less(t, s.StdDev, 30*time.Millisecond)
}

func TestWindowEvictsOldest(t *testing.T) {
	f := NewFrames(3)
	f.Record(time.Second)
	for i := 0; i < 3; i++ {
		f.Record(time.Millisecond)
	}

	s := f.Summary()
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, time.Millisecond, s.Max)
	assert.Equal(t, time.Duration(0), s.StdDev)
}

func TestSingleFrame(t *testing.T) {
	f := NewFrames(4)
	f.Record(7 * time.Millisecond)

	s := f.Summary()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 7*time.Millisecond, s.Mean)
	assert.Equal(t, time.Duration(0), s.StdDev)
	assert.Equal(t, 7*time.Millisecond, s.P95)
	assert.Contains(t, s.String(), "1 frames")
}

func TestReset(t *testing.T) {
	f := NewFrames(4)
	f.Record(time.Millisecond)
	f.Reset()
	assert.Equal(t, 0, f.Summary().Count)
}
