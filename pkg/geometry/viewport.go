package geometry

import (
	"image"
	"math"
)

// Clamp limits v to [lo, hi]. When the range is inverted lo wins, so a window
// larger than its content is pinned to the content origin.
func Clamp(lo, hi, v int) int {
	return max(lo, min(hi, v))
}

// ClampFloat limits v to [lo, hi].
func ClampFloat(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// MaxScaledDim bounds every scaled dimension. Larger coordinates overflow
// the index arithmetic of the resamplers.
const MaxScaledDim = 1 << 30

// InitScale returns the factor that fits a source of width sourceWidth to a
// viewport of width viewportWidth. Zero widths yield 0.
func InitScale(viewportWidth, sourceWidth int) float64 {
	if viewportWidth <= 0 || sourceWidth <= 0 {
		return 0
	}
	return float64(viewportWidth) / float64(sourceWidth)
}

// Factor is the total scale from source to scaled space.
func Factor(initScale, scale float64) float64 {
	return initScale * scale
}

// MaxFactor returns the largest factor that keeps both dimensions of a
// width x height image within MaxScaledDim. Empty sizes yield 0.
func MaxFactor(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return float64(MaxScaledDim) / float64(max(width, height))
}

// ScaleUp converts an unscaled length into scaled space, rounding to nearest.
// Zero and negative lengths map to 0; any positive length maps to at least 1.
func ScaleUp(v int, factor float64) int {
	if v <= 0 || factor <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(v)*factor)))
}

// ScaleDim converts an image dimension into scaled space, never returning
// less than 1.
func ScaleDim(v int, factor float64) int {
	return max(1, ScaleUp(v, factor))
}

// ScaleDown converts a scaled coordinate back into source space.
func ScaleDown(v int, factor float64) int {
	if factor <= 0 {
		return 0
	}
	return int(math.Floor(float64(v) / factor))
}

// ScaledSize returns the size of a width x height image scaled by factor,
// each dimension at least 1.
func ScaledSize(width, height int, factor float64) image.Point {
	return image.Pt(ScaleDim(width, factor), ScaleDim(height, factor))
}

// RescalePoint maps a point expressed at factor from into the same relative
// position at factor to.
func RescalePoint(p image.Point, from, to float64) image.Point {
	if from <= 0 || to <= 0 || from == to {
		return p
	}
	r := to / from
	return image.Pt(int(math.Round(float64(p.X)*r)), int(math.Round(float64(p.Y)*r)))
}

// DescaleRect maps a rectangle in scaled space back into source space and
// grows it by margin pixels on every side, limited to bounds. The result
// always covers every source pixel a bilinear sample of the window can touch.
func DescaleRect(r image.Rectangle, factor float64, margin int, bounds image.Rectangle) image.Rectangle {
	if factor <= 0 {
		return image.Rectangle{}
	}
	out := image.Rect(
		ScaleDown(r.Min.X, factor)-margin,
		ScaleDown(r.Min.Y, factor)-margin,
		int(math.Ceil(float64(r.Max.X)/factor))+margin,
		int(math.Ceil(float64(r.Max.Y)/factor))+margin,
	)
	return out.Intersect(bounds)
}
