package image

import (
	"image"

	"labelview/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// SafetyMargin is the number of extra source pixels kept around a descaled
// crop so bilinear sampling at tile seams always has its neighbours.
const SafetyMargin = 1

// Crop returns the part of a scaled raster covered by window without copying.
// The window must lie inside the raster.
func Crop(scaled *image.RGBA, window image.Rectangle) *image.RGBA {
	return scaled.SubImage(window).(*image.RGBA)
}

// CropScaled renders window, given in the scaled space of factor, straight
// from the unscaled source. Only the descaled window plus margin pixels is
// sampled.
func CropScaled(interp xdraw.Interpolator, src *image.RGBA, window image.Rectangle, factor float64, margin int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, window.Dx(), window.Dy()))
	if window.Empty() || factor <= 0 {
		return dst
	}
	sr := geometry.DescaleRect(window, factor, margin, src.Bounds())
	if sr.Empty() {
		return dst
	}
	s2d := geometry.Translation(-float64(window.Min.X), -float64(window.Min.Y)).
		Compose(geometry.Scale(factor, factor)).
		Aff3()
	interp.Transform(dst, s2d, src, sr, xdraw.Src, nil)
	return dst
}

// Fit scales the whole source into dr of dst. Pixels of dr outside dst are
// clipped.
func Fit(interp xdraw.Interpolator, dst *image.RGBA, dr image.Rectangle, src *image.RGBA) {
	if dr.Empty() {
		return
	}
	interp.Scale(dst, dr, src, src.Bounds(), xdraw.Src, nil)
}
