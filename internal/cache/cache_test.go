package cache

import (
	"context"
	"errors"
	"image"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeScaler struct {
	mu      sync.Mutex
	sizes   []image.Point
	started chan struct{}
	release chan struct{}
	panics  bool
	err     error
}

func (s *fakeScaler) Name() string { return "fake" }

func (s *fakeScaler) Scale(ctx context.Context, src *image.RGBA, width, height int) (*image.RGBA, error) {
	s.mu.Lock()
	s.sizes = append(s.sizes, image.Pt(width, height))
	s.mu.Unlock()

	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.panics {
		panic("runtime error: makeslice: len out of range")
	}
	if s.err != nil {
		return nil, s.err
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

func (s *fakeScaler) calls() []image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]image.Point(nil), s.sizes...)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newStarted(t *testing.T, s *fakeScaler, opts ...Option) *Cache {
	t.Helper()
	c := New(s, append([]Option{WithLogger(quietLogger())}, opts...)...)
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

func source() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 10, 5))
}

func TestGetBeforeReady(t *testing.T) {
	c := newStarted(t, &fakeScaler{})
	assert.False(t, c.IsReady())
	_, err := c.Get()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestRefreshPublishes(t *testing.T) {
	var ready atomic.Int32
	c := newStarted(t, &fakeScaler{}, OnReady(func(uint64) { ready.Add(1) }))

	require.NoError(t, c.RequestRefresh(source(), 30, 15, time.Millisecond))
	require.Eventually(t, c.IsReady, waitFor, tick)

	img, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 15), img.Bounds())
	assert.Eventually(t, func() bool { return ready.Load() == 1 }, waitFor, tick)
}

func TestRefreshDebounce(t *testing.T) {
	s := &fakeScaler{}
	c := newStarted(t, s)

	for i := 1; i <= 5; i++ {
		require.NoError(t, c.RequestRefresh(source(), 10*i, 5*i, 50*time.Millisecond))
	}
	require.Eventually(t, c.IsReady, waitFor, tick)

	img, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 25), img.Bounds())
	assert.Equal(t, []image.Point{{50, 25}}, s.calls(), "superseded requests never run")
}

func TestInvalidateCancelsPending(t *testing.T) {
	s := &fakeScaler{}
	c := newStarted(t, s)

	require.NoError(t, c.RequestRefresh(source(), 20, 10, 30*time.Millisecond))
	c.Invalidate()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, c.IsReady())
	assert.Empty(t, s.calls())
}

func TestInvalidateDropsInFlightResult(t *testing.T) {
	s := &fakeScaler{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := newStarted(t, s)

	generation := func() uint64 {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.gen
	}
	gen := generation()
	require.NoError(t, c.RequestRefresh(source(), 20, 10, 0))
	assert.Greater(t, generation(), gen)

	<-s.started
	c.Invalidate()
	close(s.release)

	assert.Never(t, c.IsReady, 100*time.Millisecond, tick)
	assert.Len(t, s.calls(), 1)
}

func TestNewerRequestWinsOverInFlight(t *testing.T) {
	s := &fakeScaler{
		started: make(chan struct{}, 2),
		release: make(chan struct{}, 2),
	}
	c := newStarted(t, s)

	require.NoError(t, c.RequestRefresh(source(), 20, 10, 0))
	<-s.started
	require.NoError(t, c.RequestRefresh(source(), 40, 20, 0))
	s.release <- struct{}{}
	<-s.started
	s.release <- struct{}{}

	require.Eventually(t, c.IsReady, waitFor, tick)
	img, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
}

func TestAllocationLimit(t *testing.T) {
	errs := make(chan error, 1)
	s := &fakeScaler{}
	c := newStarted(t, s, WithMaxPixels(100), OnError(func(err error) { errs <- err }))

	require.NoError(t, c.RequestRefresh(source(), 20, 20, 0))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrAllocation)
	case <-time.After(waitFor):
		t.Fatal("no allocation error reported")
	}
	assert.False(t, c.IsReady())
	assert.Empty(t, s.calls(), "oversized targets are rejected before scaling")
}

func TestAllocationLimitHugeTarget(t *testing.T) {
	errs := make(chan error, 1)
	s := &fakeScaler{}
	c := newStarted(t, s, WithMaxPixels(1<<40), OnError(func(err error) { errs <- err }))

	// 2^33 x 2^31 wraps to 0 as an int64 product.
	require.NoError(t, c.RequestRefresh(source(), 1<<33, 1<<31, 0))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrAllocation)
	case <-time.After(waitFor):
		t.Fatal("no allocation error reported")
	}
	assert.Empty(t, s.calls())
}

func TestExceeds(t *testing.T) {
	assert.False(t, exceeds(10, 10, 100))
	assert.True(t, exceeds(10, 11, 100))
	assert.True(t, exceeds(1<<33, 1<<31, 1<<40))
	assert.False(t, exceeds(0, 1<<40, 1))
}

func TestScalerPanicBecomesAllocationError(t *testing.T) {
	errs := make(chan error, 1)
	c := newStarted(t, &fakeScaler{panics: true}, OnError(func(err error) { errs <- err }))

	require.NoError(t, c.RequestRefresh(source(), 20, 20, 0))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrAllocation)
	case <-time.After(waitFor):
		t.Fatal("no error reported")
	}
	assert.False(t, c.IsReady())
}

func TestScalerErrorReported(t *testing.T) {
	boom := errors.New("boom")
	errs := make(chan error, 1)
	c := newStarted(t, &fakeScaler{err: boom}, OnError(func(err error) { errs <- err }))

	require.NoError(t, c.RequestRefresh(source(), 20, 20, 0))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrAllocation)
	case <-time.After(waitFor):
		t.Fatal("no error reported")
	}
}

func TestStopPreventsWork(t *testing.T) {
	s := &fakeScaler{}
	c := New(s, WithLogger(quietLogger()))

	assert.ErrorIs(t, c.RequestRefresh(source(), 20, 10, 0), ErrStopped)

	c.Start()
	require.NoError(t, c.RequestRefresh(source(), 20, 10, 30*time.Millisecond))
	c.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, s.calls())
	assert.False(t, c.IsReady())
	assert.ErrorIs(t, c.RequestRefresh(source(), 20, 10, 0), ErrStopped)

	// A stopped cache can be started again.
	c.Start()
	defer c.Stop()
	require.NoError(t, c.RequestRefresh(source(), 20, 10, 0))
	assert.Eventually(t, c.IsReady, waitFor, tick)
}

func TestStopDropsReadyRaster(t *testing.T) {
	c := New(&fakeScaler{}, WithLogger(quietLogger()))
	c.Start()
	require.NoError(t, c.RequestRefresh(source(), 20, 10, 0))
	require.Eventually(t, c.IsReady, waitFor, tick)

	c.Stop()
	assert.False(t, c.IsReady())
	c.Stop()
}
