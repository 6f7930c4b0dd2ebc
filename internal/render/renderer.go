// Package render composes the viewport raster from the source image, the
// zoom state and the fixed label configuration.
//
// A frame at scale 1 is the whole source fitted to the viewport width. Above
// scale 1 the frame is split into up to four tiles: the scrolled main area, a
// top label that follows horizontal panning only, a left label that follows
// vertical panning only, and a corner that never moves. Each tile is either
// cut from the precomputed scaled raster or, while that is not ready,
// resampled from the original source on its own.
package render

import (
	"image"
	"image/color"

	imgpkg "labelview/internal/image"
	"labelview/pkg/colorutil"

	xdraw "golang.org/x/image/draw"
)

// Input is everything a frame depends on.
type Input struct {
	Source    *imgpkg.Source
	Scale     float64
	InitScale float64 // computed from Viewport and Source when zero
	Center    image.Point
	Viewport  Viewport
	Labels    Labels

	// Cached is the precomputed raster of the whole source at the current
	// factor, or nil when it is not ready.
	Cached *image.RGBA
}

// Result is a composed frame.
type Result struct {
	Image     *image.RGBA
	Center    image.Point // clamped center to store for the next frame
	Plan      Plan
	FromCache bool
}

// Renderer composes frames. The zero value is not usable; use New.
type Renderer struct {
	Interp    xdraw.Interpolator
	BackColor color.Color
	Margin    int
}

// New returns a renderer with bilinear sampling on a black background.
func New() *Renderer {
	return &Renderer{
		Interp:    xdraw.BiLinear,
		BackColor: colorutil.Black,
		Margin:    imgpkg.SafetyMargin,
	}
}

// Render composes one frame. It never fails: degenerate input yields an empty
// raster of the viewport size.
func (r *Renderer) Render(in Input) Result {
	plan, ok := NewPlan(in)
	if !ok {
		w, h := max(0, in.Viewport.Width), max(0, in.Viewport.Height)
		return Result{
			Image:  image.NewRGBA(image.Rect(0, 0, w, h)),
			Center: in.Center,
			Plan:   plan,
		}
	}

	comp := imgpkg.NewComposite(in.Viewport.Width, in.Viewport.Height)
	comp.BackColor = r.BackColor
	src := in.Source.Image

	if plan.Fit {
		out := comp.Render()
		imgpkg.Fit(r.Interp, out, plan.FitRect, src)
		return Result{Image: out, Center: plan.Center, Plan: plan}
	}

	cached := in.Cached
	if cached != nil && cached.Bounds() != (image.Rectangle{Max: plan.Scaled}) {
		cached = nil
	}

	for _, t := range plan.Tiles {
		var tile image.Image
		if cached != nil {
			tile = imgpkg.Crop(cached, t.Src)
		} else {
			tile = imgpkg.CropScaled(r.Interp, src, t.Src, plan.Factor, r.Margin)
		}
		comp.AddLayer(t.Region.String(), tile, t.Dst.X, t.Dst.Y)
	}

	return Result{
		Image:     comp.Render(),
		Center:    plan.Center,
		Plan:      plan,
		FromCache: cached != nil,
	}
}
