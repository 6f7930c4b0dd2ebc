// Package canvas provides the zoomable image surface with pinned labels.
package canvas

import (
	"image"
	"sync"

	"labelview/internal/app"
	"labelview/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const zoomStep = 1.25

// ImageCanvas draws frames produced by a Controller and turns pointer
// gestures into controller calls: drag pans, double tap zooms in, the wheel
// zooms in and out.
type ImageCanvas struct {
	widget.BaseWidget

	ctrl   *app.Controller
	raster *fynecanvas.Raster

	mu         sync.Mutex
	dragging   bool
	pixelScale float32 // raster pixels per fyne unit, from the last draw

	lastOutput *image.RGBA

	onTap func(pt geometry.Point2D)
}

// NewImageCanvas creates a canvas bound to ctrl. The canvas refreshes itself
// on controller redraw events.
func NewImageCanvas(ctrl *app.Controller) *ImageCanvas {
	ic := &ImageCanvas{
		ctrl:       ctrl,
		pixelScale: 1,
	}

	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.raster.SetMinSize(fyne.NewSize(200, 150))

	ctrl.On(app.EventRedraw, func(interface{}) { ic.Refresh() })

	ic.ExtendBaseWidget(ic)
	return ic
}

// draw is the raster drawing function; w and h are in device pixels.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := ic.ctrl.Render(w, h)

	ic.mu.Lock()
	if width := ic.Size().Width; width > 0 && w > 0 {
		ic.pixelScale = float32(w) / width
	}
	ic.lastOutput = output
	ic.mu.Unlock()

	return output
}

// toPixels converts a widget position into raster pixels.
func (ic *ImageCanvas) toPixels(pos fyne.Position) (float64, float64) {
	ic.mu.Lock()
	s := ic.pixelScale
	ic.mu.Unlock()
	return float64(pos.X * s), float64(pos.Y * s)
}

// Dragged pans the image.
func (ic *ImageCanvas) Dragged(ev *fyne.DragEvent) {
	ic.mu.Lock()
	first := !ic.dragging
	ic.dragging = true
	ic.mu.Unlock()

	if first {
		ic.ctrl.OnDragStart(ic.toPixels(ev.Position.Subtract(ev.Dragged)))
	}
	ic.ctrl.OnDragMove(ic.toPixels(ev.Position))
}

// DragEnd ends the pan gesture.
func (ic *ImageCanvas) DragEnd() {
	ic.mu.Lock()
	ic.dragging = false
	ic.mu.Unlock()
	ic.ctrl.OnDragEnd()
}

// DoubleTapped zooms in by one step.
func (ic *ImageCanvas) DoubleTapped(*fyne.PointEvent) {
	ic.ctrl.OnDoubleTap()
}

// Scrolled treats the wheel as a pinch: one notch is one zoom step.
func (ic *ImageCanvas) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY > 0:
		ic.ctrl.OnPinch(zoomStep)
	case ev.Scrolled.DY < 0:
		ic.ctrl.OnPinch(1 / zoomStep)
	default:
		return
	}
	ic.ctrl.OnPinchEnd()
}

// Tapped reports the image coordinates under the pointer.
func (ic *ImageCanvas) Tapped(ev *fyne.PointEvent) {
	if ic.onTap == nil {
		return
	}

	// Workaround for Fyne bug: reject clicks outside widget bounds
	size := ic.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	x, y := ic.toPixels(ev.Position)
	if pt, ok := ic.ctrl.ViewportToSource(int(x), int(y)); ok {
		ic.onTap(pt)
	}
}

// OnTap sets the callback for taps on the image, in image coordinates.
func (ic *ImageCanvas) OnTap(callback func(pt geometry.Point2D)) {
	ic.onTap = callback
}

// ZoomIn zooms in by one step.
func (ic *ImageCanvas) ZoomIn() {
	ic.ctrl.SetScale(ic.ctrl.Scale() * zoomStep)
}

// ZoomOut zooms out by one step.
func (ic *ImageCanvas) ZoomOut() {
	ic.ctrl.SetScale(ic.ctrl.Scale() / zoomStep)
}

// ResetZoom returns to the fit-to-width view.
func (ic *ImageCanvas) ResetZoom() {
	ic.ctrl.SetScale(1)
}

// GetRenderedOutput returns the last frame.
func (ic *ImageCanvas) GetRenderedOutput() *image.RGBA {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.lastOutput
}

// Refresh redraws the raster.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

// MinSize keeps the surface usable when the window is small.
func (ic *ImageCanvas) MinSize() fyne.Size {
	return ic.raster.MinSize()
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ic.raster)
}
