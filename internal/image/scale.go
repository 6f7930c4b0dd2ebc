package image

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sort"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// DefaultScaler is the backend used when none is configured.
const DefaultScaler = "xdraw"

// Scaler rescales a whole raster to an exact target size.
type Scaler interface {
	Name() string
	Scale(ctx context.Context, src *image.RGBA, width, height int) (*image.RGBA, error)
}

var (
	scalersMu sync.RWMutex
	scalers   = map[string]func() Scaler{
		"xdraw":      func() Scaler { return XDrawScaler{Interp: xdraw.BiLinear, Label: "xdraw"} },
		"catmullrom": func() Scaler { return XDrawScaler{Interp: xdraw.CatmullRom, Label: "catmullrom"} },
		"bild":       func() Scaler { return BildScaler{} },
		"imaging":    func() Scaler { return ImagingScaler{} },
	}
)

// RegisterScaler makes a backend available to NewScaler.
func RegisterScaler(name string, factory func() Scaler) {
	scalersMu.Lock()
	defer scalersMu.Unlock()
	scalers[name] = factory
}

// NewScaler returns the backend registered under name.
func NewScaler(name string) (Scaler, error) {
	if name == "" {
		name = DefaultScaler
	}
	scalersMu.RLock()
	factory, ok := scalers[name]
	scalersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown scaler %q (available: %v)", name, ScalerNames())
	}
	return factory(), nil
}

// ScalerNames lists the registered backends in sorted order.
func ScalerNames() []string {
	scalersMu.RLock()
	defer scalersMu.RUnlock()
	names := make([]string, 0, len(scalers))
	for name := range scalers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkTarget(ctx context.Context, src *image.RGBA, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("nil source")
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	return nil
}

// XDrawScaler scales with a golang.org/x/image/draw interpolator.
type XDrawScaler struct {
	Interp xdraw.Interpolator
	Label  string
}

func (s XDrawScaler) Name() string { return s.Label }

func (s XDrawScaler) Scale(ctx context.Context, src *image.RGBA, width, height int) (*image.RGBA, error) {
	if err := checkTarget(ctx, src, width, height); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	s.Interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, ctx.Err()
}

// BildScaler scales with bild's linear resampling filter.
type BildScaler struct{}

func (BildScaler) Name() string { return "bild" }

func (BildScaler) Scale(ctx context.Context, src *image.RGBA, width, height int) (*image.RGBA, error) {
	if err := checkTarget(ctx, src, width, height); err != nil {
		return nil, err
	}
	dst := transform.Resize(src, width, height, transform.Linear)
	return dst, ctx.Err()
}

// ImagingScaler scales with the imaging package's linear filter.
type ImagingScaler struct{}

func (ImagingScaler) Name() string { return "imaging" }

func (ImagingScaler) Scale(ctx context.Context, src *image.RGBA, width, height int) (*image.RGBA, error) {
	if err := checkTarget(ctx, src, width, height); err != nil {
		return nil, err
	}
	nrgba := imaging.Resize(src, width, height, imaging.Linear)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), nrgba, nrgba.Bounds().Min, draw.Src)
	return dst, ctx.Err()
}
