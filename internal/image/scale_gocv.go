//go:build gocv

package image

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

func init() {
	RegisterScaler("gocv", func() Scaler { return GoCVScaler{} })
}

// GoCVScaler scales with OpenCV's bilinear resize. Only built with -tags gocv.
type GoCVScaler struct{}

func (GoCVScaler) Name() string { return "gocv" }

func (GoCVScaler) Scale(ctx context.Context, src *image.RGBA, width, height int) (*image.RGBA, error) {
	if err := checkTarget(ctx, src, width, height); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("gocv: convert source: %w", err)
	}
	defer mat.Close()

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(mat, &scaled, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	img, err := scaled.ToImage()
	if err != nil {
		return nil, fmt.Errorf("gocv: convert result: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, ctx.Err()
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst, ctx.Err()
}
