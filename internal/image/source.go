// Package image provides source image loading, tile compositing and the
// rescaling backends used by the scaled image cache.
package image

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// Source is an immutable RGBA raster anchored at the origin.
type Source struct {
	Path  string      // Original file path, empty for in-memory images
	Image *image.RGBA // Pixel data, Bounds().Min is always (0,0)
}

// NewSource converts img into a Source. The pixels are copied unless img is
// already an origin-anchored *image.RGBA.
func NewSource(img image.Image) *Source {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return &Source{Image: rgba}
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Source{Image: rgba}
}

// Load loads an image from the specified path and returns a Source.
func Load(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src := NewSource(img)
	src.Path = path
	return src, nil
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Empty reports whether there is nothing to draw.
func (s *Source) Empty() bool {
	return s.Width() == 0 || s.Height() == 0
}

// Bounds returns the source rectangle.
func (s *Source) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width(), s.Height())
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
