// Package cache precomputes a rescaled copy of the source image off the
// interactive path.
//
// Requests are debounced: every RequestRefresh supersedes the previous one and
// only the last request inside the delay window reaches the worker. Each
// request carries a generation number; a result is published only if its
// generation is still current when the computation finishes, so an in-flight
// job that has been superseded or invalidated runs to completion but its
// raster is dropped.
package cache

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	imgpkg "labelview/internal/image"
)

var (
	// ErrNotReady is returned by Get when no raster for the current
	// generation has been published.
	ErrNotReady = errors.New("scaled image not ready")

	// ErrAllocation reports that the target raster could not be allocated.
	ErrAllocation = errors.New("scaled image allocation failed")

	// ErrStopped is returned when work is requested from a stopped cache.
	ErrStopped = errors.New("scaled image cache stopped")
)

// DefaultMaxPixels bounds the size of a precomputed raster (1 GiB of RGBA).
const DefaultMaxPixels = 256 << 20

type entry struct {
	img *image.RGBA
	gen uint64
}

type job struct {
	gen    uint64
	src    *image.RGBA
	width  int
	height int
}

// Cache holds at most one precomputed raster and runs one background worker.
type Cache struct {
	scaler    imgpkg.Scaler
	logger    *log.Logger
	maxPixels int64
	onReady   func(gen uint64)
	onError   func(err error)

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	running bool
	jobs    chan job
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// slot is written by the worker under mu and read lock-free by renderers.
	slot atomic.Pointer[entry]
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxPixels sets the largest raster the worker will try to allocate.
func WithMaxPixels(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxPixels = n
		}
	}
}

// OnReady sets a callback invoked from the worker after a raster is published.
func OnReady(fn func(gen uint64)) Option {
	return func(c *Cache) { c.onReady = fn }
}

// OnError sets a callback invoked from the worker when a computation fails.
// The error wraps ErrAllocation for oversized or unallocatable targets.
func OnError(fn func(err error)) Option {
	return func(c *Cache) { c.onError = fn }
}

// New creates a stopped cache. Call Start before requesting work.
func New(scaler imgpkg.Scaler, opts ...Option) *Cache {
	c := &Cache{
		scaler:    scaler,
		logger:    log.Default(),
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the background worker. Calling Start on a running cache is
// a no-op.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.jobs = make(chan job, 1)
	c.running = true

	c.wg.Add(1)
	go c.worker(ctx, c.jobs)
}

// Stop cancels pending work, waits for an in-flight computation to finish and
// drops the cached raster. Nothing is scheduled after Stop returns.
func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.stopTimerLocked()
	c.drainLocked()
	c.running = false
	c.cancel()
	close(c.jobs)
	c.slot.Store(nil)
	c.mu.Unlock()

	c.wg.Wait()
}

// Invalidate marks the cached raster stale and cancels any request that has
// not started yet.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

// RequestRefresh schedules a rescale of src to width x height after delay.
// A later call before the delay elapses supersedes this one. The current
// raster is invalidated immediately.
func (c *Cache) RequestRefresh(src *image.RGBA, width, height int, delay time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return ErrStopped
	}

	c.invalidateLocked()
	j := job{gen: c.gen, src: src, width: width, height: height}
	c.timer = time.AfterFunc(delay, func() { c.enqueue(j) })
	return nil
}

// IsReady reports whether a raster for the current generation exists.
func (c *Cache) IsReady() bool {
	return c.slot.Load() != nil
}

// Get returns the cached raster or ErrNotReady.
func (c *Cache) Get() (*image.RGBA, error) {
	e := c.slot.Load()
	if e == nil {
		return nil, ErrNotReady
	}
	return e.img, nil
}

func (c *Cache) invalidateLocked() {
	c.gen++
	c.stopTimerLocked()
	c.drainLocked()
	c.slot.Store(nil)
}

func (c *Cache) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// drainLocked discards a queued job the worker has not picked up yet.
func (c *Cache) drainLocked() {
	if !c.running {
		return
	}
	select {
	case <-c.jobs:
	default:
	}
}

func (c *Cache) enqueue(j job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || j.gen != c.gen {
		return
	}
	c.timer = nil
	c.drainLocked()
	c.jobs <- j
}

func (c *Cache) worker(ctx context.Context, jobs <-chan job) {
	defer c.wg.Done()
	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		c.compute(ctx, j)
	}
}

func (c *Cache) compute(ctx context.Context, j job) {
	start := time.Now()
	img, err := c.scale(ctx, j)

	c.mu.Lock()
	if j.gen != c.gen {
		c.mu.Unlock()
		c.logger.Printf("Cache: dropped stale %dx%d raster (generation %d)", j.width, j.height, j.gen)
		return
	}
	if err != nil {
		c.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		c.logger.Printf("Cache: rescale to %dx%d failed: %v", j.width, j.height, err)
		if c.onError != nil {
			c.onError(err)
		}
		return
	}
	c.slot.Store(&entry{img: img, gen: j.gen})
	c.mu.Unlock()

	c.logger.Printf("Cache: %dx%d raster ready in %v (%s)", j.width, j.height, time.Since(start), c.scaler.Name())
	if c.onReady != nil {
		c.onReady(j.gen)
	}
}

// scale runs the backend, turning oversized targets and allocation panics
// into ErrAllocation.
func (c *Cache) scale(ctx context.Context, j job) (img *image.RGBA, err error) {
	if j.src == nil {
		return nil, fmt.Errorf("no source image")
	}
	if exceeds(j.width, j.height, c.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, j.width, j.height, c.maxPixels)
	}

	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: %dx%d: %v", ErrAllocation, j.width, j.height, r)
		}
	}()
	return c.scaler.Scale(ctx, j.src, j.width, j.height)
}

// exceeds reports whether width x height is more than limit pixels without
// forming the product, which can overflow for huge targets.
func exceeds(width, height int, limit int64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	return int64(height) > limit/int64(width)
}
