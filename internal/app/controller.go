package app

import (
	"fmt"
	"image"
	"math"
	"time"

	imgpkg "labelview/internal/image"
	"labelview/internal/render"
	"labelview/pkg/geometry"
)

// SetImage replaces the displayed image. Scale resets to 1, the center to the
// image midpoint, and stored label sizes are clamped to the new bounds. A nil
// image clears the view. Until the first frame sizes the viewport, the center
// is kept in unscaled image pixels.
func (c *Controller) SetImage(img image.Image) {
	c.SetSource(imgpkg.NewSource(img))
}

// SetSource is SetImage for an already converted source.
func (c *Controller) SetSource(src *imgpkg.Source) {
	if src.Empty() {
		src = nil
	}

	c.mu.Lock()
	scaleChanged := c.scale != 1
	c.source = src
	c.scale = 1
	c.dragging = false
	c.pinching = false
	c.cache.Invalidate()
	c.frames.Reset()

	if src != nil {
		c.initScale = geometry.InitScale(c.viewport.Width, src.Width())
		size := geometry.ScaledSize(src.Width(), src.Height(), c.factor())
		c.center = image.Pt(size.X/2, size.Y/2)
		c.labels.TopHeight = geometry.Clamp(0, src.Height(), c.labels.TopHeight)
		c.labels.LeftWidth = geometry.Clamp(0, src.Width(), c.labels.LeftWidth)
		c.logger.Printf("Controller: image %dx%d", src.Width(), src.Height())
	} else {
		c.initScale = 0
		c.center = image.Point{}
	}
	c.plan = render.Plan{}
	c.mu.Unlock()

	c.Emit(EventImageChanged, src)
	if scaleChanged {
		c.Emit(EventScaleChanged, 1.0)
	}
	c.Emit(EventRedraw, nil)
}

// LoadImage decodes the file at path and displays it.
func (c *Controller) LoadImage(path string) error {
	src, err := imgpkg.Load(path)
	if err != nil {
		return err
	}
	if src.Empty() {
		return fmt.Errorf("image %s has no pixels", path)
	}
	c.SetSource(src)
	return nil
}

// SetScale sets the zoom scale, clamped to [1, MaxScale]. The pan center
// keeps its relative position and a new scaled raster is scheduled.
func (c *Controller) SetScale(v float64) {
	c.mu.Lock()
	changed := c.setScaleLocked(v)
	scale := c.scale
	c.mu.Unlock()

	if changed {
		c.Emit(EventScaleChanged, scale)
		c.Emit(EventRedraw, nil)
	}
}

func (c *Controller) setScaleLocked(v float64) bool {
	if math.IsNaN(v) {
		v = 1
	}
	v = geometry.ClampFloat(1, c.scaleLimitLocked(), v)
	if v == c.scale {
		return false
	}

	c.center = geometry.RescalePoint(c.center, c.factor(), c.factorAt(c.initScale, v))
	c.scale = v
	c.cache.Invalidate()
	c.requestRefreshLocked()
	return true
}

// requestRefreshLocked schedules the scaled raster for the current zoom.
func (c *Controller) requestRefreshLocked() {
	if c.source == nil || c.scale <= 1 || c.initScale <= 0 {
		return
	}
	size := geometry.ScaledSize(c.source.Width(), c.source.Height(), c.factor())
	if err := c.cache.RequestRefresh(c.source.Image, size.X, size.Y, c.cfg.RefreshDelay); err != nil {
		c.logger.Printf("Controller: raster %dx%d not scheduled: %v", size.X, size.Y, err)
	}
}

// scaleLimitLocked is MaxScale, further limited so that the scaled image
// stays within geometry.MaxScaledDim.
func (c *Controller) scaleLimitLocked() float64 {
	limit := c.maxScale
	if c.source != nil && c.initScale > 0 {
		limit = math.Min(limit, geometry.MaxFactor(c.source.Width(), c.source.Height())/c.initScale)
	}
	return math.Max(1, limit)
}

// SetMaxScale sets the largest allowed scale. Values below 1 become 1 and
// the current scale is clamped to the new limit. NaN and infinities are
// rejected with ErrInvalidScale.
func (c *Controller) SetMaxScale(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("max scale %v: %w", v, ErrInvalidScale)
	}
	v = math.Max(1, v)

	c.mu.Lock()
	c.maxScale = v
	changed := c.setScaleLocked(c.scale)
	scale := c.scale
	c.mu.Unlock()

	if changed {
		c.Emit(EventScaleChanged, scale)
		c.Emit(EventRedraw, nil)
	}
	return nil
}

// PanBy moves the content by (dx, dy) output pixels. It does nothing at
// scale 1. The center is clamped by the next frame.
func (c *Controller) PanBy(dx, dy int) {
	c.mu.Lock()
	if c.source == nil || c.scale <= 1 || (dx == 0 && dy == 0) {
		c.mu.Unlock()
		return
	}
	c.center = c.center.Sub(image.Pt(dx, dy))
	c.mu.Unlock()

	c.Emit(EventRedraw, nil)
}

// SetCenter moves the pan center to p in scaled coordinates.
func (c *Controller) SetCenter(p image.Point) {
	c.mu.Lock()
	if c.source == nil || c.center == p {
		c.mu.Unlock()
		return
	}
	c.center = p
	c.mu.Unlock()

	c.Emit(EventRedraw, nil)
}

// OnDoubleTap zooms in by DoubleTapFactor.
func (c *Controller) OnDoubleTap() {
	c.SetScale(c.Scale() * DoubleTapFactor)
}

// OnPinch multiplies the scale by factor. Dragging is suspended until
// OnPinchEnd.
func (c *Controller) OnPinch(factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	c.mu.Lock()
	c.pinching = true
	scale := c.scale
	c.mu.Unlock()

	c.SetScale(scale * factor)
}

// OnPinchEnd ends a pinch gesture.
func (c *Controller) OnPinchEnd() {
	c.mu.Lock()
	c.pinching = false
	c.mu.Unlock()
}

// OnDragStart records the start of a drag at (x, y).
func (c *Controller) OnDragStart(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = true
	c.lastDrag = roundPoint(x, y)
}

// OnDragMove pans by the distance moved since the last drag position. Moves
// during a pinch only update the position.
func (c *Controller) OnDragMove(x, y float64) {
	p := roundPoint(x, y)

	c.mu.Lock()
	if !c.dragging {
		c.dragging = true
		c.lastDrag = p
		c.mu.Unlock()
		return
	}
	delta := p.Sub(c.lastDrag)
	c.lastDrag = p
	pinching := c.pinching
	c.mu.Unlock()

	if !pinching {
		c.PanBy(delta.X, delta.Y)
	}
}

// OnDragEnd ends a drag gesture.
func (c *Controller) OnDragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
}

// factor is the current source to scaled space factor. Before the first
// frame there is no fit factor and scaled space is the image itself.
func (c *Controller) factor() float64 {
	return c.factorAt(c.initScale, c.scale)
}

func (c *Controller) factorAt(initScale, scale float64) float64 {
	if initScale <= 0 {
		initScale = 1
	}
	f := geometry.Factor(initScale, scale)
	if c.source != nil {
		f = math.Min(f, geometry.MaxFactor(c.source.Width(), c.source.Height()))
	}
	return f
}

func roundPoint(x, y float64) image.Point {
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// SetTopLabelHeight sets the top label height in image pixels, clamped to
// the image height.
func (c *Controller) SetTopLabelHeight(h int) error {
	return c.updateLabels(func(l *render.Labels, src *imgpkg.Source) {
		l.TopHeight = geometry.Clamp(0, src.Height(), h)
	})
}

// SetLeftLabelWidth sets the left label width in image pixels, clamped to
// the image width.
func (c *Controller) SetLeftLabelWidth(w int) error {
	return c.updateLabels(func(l *render.Labels, src *imgpkg.Source) {
		l.LeftWidth = geometry.Clamp(0, src.Width(), w)
	})
}

// SetAlwaysShowTopLabel pins or releases the top label.
func (c *Controller) SetAlwaysShowTopLabel(show bool) error {
	return c.updateLabels(func(l *render.Labels, _ *imgpkg.Source) {
		l.ShowTop = show
	})
}

// SetAlwaysShowLeftLabel pins or releases the left label.
func (c *Controller) SetAlwaysShowLeftLabel(show bool) error {
	return c.updateLabels(func(l *render.Labels, _ *imgpkg.Source) {
		l.ShowLeft = show
	})
}

func (c *Controller) updateLabels(fn func(*render.Labels, *imgpkg.Source)) error {
	c.mu.Lock()
	if c.source == nil {
		c.mu.Unlock()
		return fmt.Errorf("cannot change labels: %w", ErrInvalidState)
	}
	before := c.labels
	fn(&c.labels, c.source)
	changed := c.labels != before
	c.mu.Unlock()

	if changed {
		c.Emit(EventRedraw, nil)
	}
	return nil
}

// Render composes a frame of width x height. A change of width rebuilds the
// scaled raster since the fit factor depends on it. Render never fails; with
// no image or an empty viewport it returns an empty raster.
func (c *Controller) Render(width, height int) *image.RGBA {
	start := time.Now()

	c.mu.Lock()
	c.resizeLocked(render.Viewport{Width: width, Height: height})

	var cached *image.RGBA
	if c.scale > 1 {
		cached, _ = c.cache.Get()
	}
	res := c.renderer.Render(render.Input{
		Source:    c.source,
		Scale:     c.scale,
		InitScale: c.initScale,
		Center:    c.center,
		Viewport:  c.viewport,
		Labels:    c.labels,
		Cached:    cached,
	})
	c.center = res.Center
	c.plan = res.Plan
	hasSource := c.source != nil
	c.mu.Unlock()

	if hasSource {
		c.frames.Record(time.Since(start))
	}
	return res.Image
}

func (c *Controller) resizeLocked(vp render.Viewport) {
	if vp == c.viewport {
		return
	}
	widthChanged := vp.Width != c.viewport.Width
	c.viewport = vp
	if !widthChanged || c.source == nil {
		return
	}

	initScale := geometry.InitScale(vp.Width, c.source.Width())
	c.center = geometry.RescalePoint(c.center, c.factor(), c.factorAt(initScale, c.scale))
	c.initScale = initScale
	c.cache.Invalidate()
	c.requestRefreshLocked()
}

// ViewportToSource maps a pixel of the last frame to unscaled image
// coordinates. It returns false for background pixels.
func (c *Controller) ViewportToSource(x, y int) (geometry.Point2D, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		return geometry.Point2D{}, false
	}
	return c.plan.ViewportToSource(image.Pt(x, y))
}
