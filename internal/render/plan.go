package render

import (
	"image"
	"math"

	"labelview/pkg/geometry"
)

// Viewport is the output size in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Empty reports whether nothing can be drawn into the viewport.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Labels configures the pinned strips. Sizes are in unscaled source pixels.
type Labels struct {
	ShowTop   bool
	TopHeight int
	ShowLeft  bool
	LeftWidth int
}

// TopActive reports whether the top label takes part in the layout.
func (l Labels) TopActive() bool { return l.ShowTop && l.TopHeight > 0 }

// LeftActive reports whether the left label takes part in the layout.
func (l Labels) LeftActive() bool { return l.ShowLeft && l.LeftWidth > 0 }

// Active reports whether any label takes part in the layout.
func (l Labels) Active() bool { return l.TopActive() || l.LeftActive() }

// Region identifies one of the composited areas of a frame.
type Region int

const (
	RegionMain Region = iota
	RegionTop
	RegionLeft
	RegionCorner
)

func (r Region) String() string {
	switch r {
	case RegionMain:
		return "main"
	case RegionTop:
		return "top"
	case RegionLeft:
		return "left"
	case RegionCorner:
		return "corner"
	default:
		return "unknown"
	}
}

// Tile maps a rectangle of the scaled source onto the output.
type Tile struct {
	Region Region
	Src    image.Rectangle // scaled source space
	Dst    image.Point     // output position of Src.Min
}

// DstRect returns the output rectangle covered by the tile.
func (t Tile) DstRect() image.Rectangle {
	return image.Rectangle{Min: t.Dst, Max: t.Dst.Add(t.Src.Size())}
}

// Plan is the geometry of one frame.
type Plan struct {
	InitScale float64
	Factor    float64     // InitScale * scale
	Scaled    image.Point // size of the whole source at Factor
	Center    image.Point // clamped pan center
	LabelSize image.Point // scaled left label width and top label height

	// Fit is set at scale 1, where the whole source is drawn into FitRect.
	Fit     bool
	FitRect image.Rectangle

	Tiles []Tile
}

// NewPlan computes the frame geometry. It returns false for degenerate input
// (no source, empty source or empty viewport).
func NewPlan(in Input) (Plan, bool) {
	vp := in.Viewport
	if in.Source.Empty() || vp.Empty() {
		return Plan{Center: in.Center}, false
	}

	sw, sh := in.Source.Width(), in.Source.Height()
	initScale := in.InitScale
	if initScale <= 0 {
		initScale = geometry.InitScale(vp.Width, sw)
	}
	scale := in.Scale
	if !(scale > 1) {
		scale = 1
	}
	factor := math.Min(geometry.Factor(initScale, scale), geometry.MaxFactor(sw, sh))
	scaled := geometry.ScaledSize(sw, sh, factor)

	p := Plan{
		InitScale: initScale,
		Factor:    factor,
		Scaled:    scaled,
	}

	if scale == 1 {
		p.Fit = true
		p.Center = image.Pt(scaled.X/2, scaled.Y/2)
		p.FitRect = image.Rect(0, 0, vp.Width, scaled.Y)
		return p, true
	}

	viewH := min(vp.Height, scaled.Y)
	halfW, halfH := vp.Width/2, viewH/2

	var lw, lh int
	if in.Labels.LeftActive() {
		lw = min(geometry.ScaleUp(in.Labels.LeftWidth, factor), vp.Width)
	}
	if in.Labels.TopActive() {
		lh = min(geometry.ScaleUp(in.Labels.TopHeight, factor), viewH)
	}

	// The window of width vw starts at cx-halfW; with labels it is pushed
	// right/down by the label size so the scrolled content never shows the
	// pinned strips twice.
	cx := geometry.Clamp(halfW+lw, scaled.X-(vp.Width-halfW)+lw, in.Center.X)
	cy := geometry.Clamp(halfH+lh, scaled.Y-(viewH-halfH)+lh, in.Center.Y)
	left, top := cx-halfW, cy-halfH
	mainW, mainH := vp.Width-lw, viewH-lh

	p.Center = image.Pt(cx, cy)
	p.LabelSize = image.Pt(lw, lh)

	p.add(RegionMain, image.Rect(left, top, left+mainW, top+mainH), image.Pt(lw, lh))
	if lh > 0 {
		p.add(RegionTop, image.Rect(left, 0, left+mainW, lh), image.Pt(lw, 0))
	}
	if lw > 0 {
		p.add(RegionLeft, image.Rect(0, top, lw, top+mainH), image.Pt(0, lh))
	}
	if lw > 0 && lh > 0 {
		p.add(RegionCorner, image.Rect(0, 0, lw, lh), image.Point{})
	}
	return p, true
}

// add appends a tile, clipping its source to the scaled image.
func (p *Plan) add(region Region, src image.Rectangle, dst image.Point) {
	clipped := src.Intersect(image.Rectangle{Max: p.Scaled})
	if clipped.Empty() {
		return
	}
	p.Tiles = append(p.Tiles, Tile{
		Region: region,
		Src:    clipped,
		Dst:    dst.Add(clipped.Min.Sub(src.Min)),
	})
}

// Tile returns the tile drawn for region, if any.
func (p Plan) Tile(region Region) (Tile, bool) {
	for _, t := range p.Tiles {
		if t.Region == region {
			return t, true
		}
	}
	return Tile{}, false
}

// ViewportToSource maps an output pixel to unscaled source coordinates. The
// result is the centre of the pixel; false means the pixel shows background.
func (p Plan) ViewportToSource(pt image.Point) (geometry.Point2D, bool) {
	c := geometry.NewPoint2D(float64(pt.X)+0.5, float64(pt.Y)+0.5)

	if p.Fit {
		if !pt.In(p.FitRect) || p.InitScale <= 0 {
			return geometry.Point2D{}, false
		}
		return geometry.Scale(1/p.InitScale, 1/p.InitScale).Apply(c), true
	}

	for _, t := range p.Tiles {
		if !pt.In(t.DstRect()) {
			continue
		}
		offset := t.Src.Min.Sub(t.Dst)
		m := geometry.Scale(1/p.Factor, 1/p.Factor).
			Compose(geometry.Translation(float64(offset.X), float64(offset.Y)))
		return m.Apply(c), true
	}
	return geometry.Point2D{}, false
}
