package image

import (
	"image"
	"image/color"
	"image/draw"

	"labelview/pkg/colorutil"
)

// Composite places rasters at fixed offsets on a blank background.
type Composite struct {
	Width     int
	Height    int
	Layers    []*CompositeLayer
	BackColor color.Color
}

// CompositeLayer is one raster and the output position of its top-left pixel.
type CompositeLayer struct {
	Name    string
	Image   image.Image
	OffsetX int
	OffsetY int
}

// NewComposite creates a new Composite with the specified dimensions.
// Negative dimensions are treated as zero.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:     max(0, width),
		Height:    max(0, height),
		BackColor: colorutil.Black,
	}
}

// AddLayer adds a raster to the composite. Layers are drawn in insertion order.
func (c *Composite) AddLayer(name string, img image.Image, offsetX, offsetY int) {
	c.Layers = append(c.Layers, &CompositeLayer{
		Name:    name,
		Image:   img,
		OffsetX: offsetX,
		OffsetY: offsetY,
	})
}

// Bounds returns the output rectangle.
func (c *Composite) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Render produces the final composited image.
func (c *Composite) Render() *image.RGBA {
	result := image.NewRGBA(c.Bounds())
	if c.BackColor != nil {
		draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)
	}

	for _, cl := range c.Layers {
		if cl == nil || cl.Image == nil {
			continue
		}
		sb := cl.Image.Bounds()
		dr := image.Rect(cl.OffsetX, cl.OffsetY, cl.OffsetX+sb.Dx(), cl.OffsetY+sb.Dy())
		// Layers are opaque and never overlap.
		draw.Draw(result, dr, cl.Image, sb.Min, draw.Src)
	}

	return result
}
