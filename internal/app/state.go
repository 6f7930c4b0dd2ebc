// Package app holds the pan and zoom state of the viewer, its configuration
// and events.
package app

import (
	"image"
	"log"
	"sync"

	"labelview/internal/cache"
	imgpkg "labelview/internal/image"
	"labelview/internal/perf"
	"labelview/internal/render"
	"labelview/pkg/colorutil"
)

// EventType identifies different controller events.
type EventType int

const (
	EventScaleChanged EventType = iota // data: float64 scale
	EventImageChanged                  // data: *imgpkg.Source, nil when cleared
	EventCacheReady                    // data: uint64 generation
	EventCacheError                    // data: error
	EventRedraw                        // data: nil
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ScaleState describes the current zoom.
type ScaleState struct {
	Scale     float64
	MaxScale  float64
	InitScale float64 // fit-to-width factor, 0 before the first frame
	Factor    float64 // InitScale * Scale, limited by geometry.MaxFactor
}

// Controller owns the view state: source, scale, pan center and labels. It
// turns gestures into state changes, keeps the scaled raster cache in step
// and renders frames on request.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	logger   *log.Logger
	renderer *render.Renderer
	cache    *cache.Cache
	frames   *perf.Frames

	source    *imgpkg.Source
	scale     float64
	maxScale  float64
	center    image.Point // in scaled space at the current factor
	labels    render.Labels
	viewport  render.Viewport
	initScale float64
	plan      render.Plan // geometry of the last frame

	dragging bool
	lastDrag image.Point
	pinching bool

	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used by the controller and its cache.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(c *Controller) {
		if r != nil {
			c.renderer = r
		}
	}
}

// NewController creates a controller. The cache worker is not running until
// Start is called.
func NewController(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scaler, err := imgpkg.NewScaler(cfg.Scaler)
	if err != nil {
		return nil, err
	}
	background, err := colorutil.ParseHex(cfg.Background)
	if err != nil {
		return nil, err
	}
	renderer := render.New()
	renderer.BackColor = background

	c := &Controller{
		cfg:       cfg,
		logger:    log.Default(),
		renderer:  renderer,
		frames:    perf.NewFrames(cfg.FrameWindow),
		scale:     1,
		maxScale:  cfg.MaxScale,
		listeners: make(map[EventType][]EventListener),
		labels: render.Labels{
			ShowTop:   cfg.ShowTopLabel,
			TopHeight: cfg.TopLabelHeight,
			ShowLeft:  cfg.ShowLeftLabel,
			LeftWidth: cfg.LeftLabelWidth,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cache = cache.New(scaler,
		cache.WithLogger(c.logger),
		cache.WithMaxPixels(cfg.MaxCachePixels),
		cache.OnReady(func(gen uint64) {
			c.Emit(EventCacheReady, gen)
			c.Emit(EventRedraw, nil)
		}),
		cache.OnError(func(err error) {
			c.Emit(EventCacheError, err)
		}),
	)
	return c, nil
}

// On registers an event listener for the specified event type.
func (c *Controller) On(event EventType, listener EventListener) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.listeners[event] = append(c.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type. Listeners may be
// called from the cache worker goroutine.
func (c *Controller) Emit(event EventType, data interface{}) {
	c.lmu.RLock()
	listeners := c.listeners[event]
	c.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Start launches the cache worker and schedules a raster for the current
// zoom, if any.
func (c *Controller) Start() {
	c.cache.Start()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestRefreshLocked()
}

// Stop stops the cache worker and drops the cached raster.
func (c *Controller) Stop() {
	c.cache.Stop()
}

// Source returns the current image, or nil.
func (c *Controller) Source() *imgpkg.Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Scale returns the current zoom scale.
func (c *Controller) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// ScaleState returns the full zoom state.
func (c *Controller) ScaleState() ScaleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ScaleState{
		Scale:     c.scale,
		MaxScale:  c.maxScale,
		InitScale: c.initScale,
		Factor:    c.factor(),
	}
}

// Center returns the pan center in scaled coordinates, as clamped by the
// last frame.
func (c *Controller) Center() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// Labels returns the label configuration.
func (c *Controller) Labels() render.Labels {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.labels
}

// Plan returns the geometry of the last rendered frame.
func (c *Controller) Plan() render.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}

// CacheReady reports whether the scaled raster for the current zoom exists.
func (c *Controller) CacheReady() bool {
	return c.cache.IsReady()
}

// FrameStats summarizes recent render times.
func (c *Controller) FrameStats() perf.Summary {
	return c.frames.Summary()
}
