package app

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"time"

	"labelview/internal/cache"
	imgpkg "labelview/internal/image"
	"labelview/internal/perf"
	"labelview/pkg/colorutil"
)

// Defaults for Config.
const (
	DefaultMaxScale     = 5.0
	DefaultRefreshDelay = 100 * time.Millisecond
	DoubleTapFactor     = 1.5
)

// Config holds the tunables of a Controller.
type Config struct {
	MaxScale     float64
	RefreshDelay time.Duration // debounce before the scaled raster is rebuilt

	// Scaler names the backend used to build the scaled raster.
	Scaler         string
	MaxCachePixels int64

	// Initial label configuration, applied when an image is set.
	TopLabelHeight int
	LeftLabelWidth int
	ShowTopLabel   bool
	ShowLeftLabel  bool

	// Background fills the frame where no image is drawn.
	Background string

	FrameWindow int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxScale:       DefaultMaxScale,
		RefreshDelay:   DefaultRefreshDelay,
		Scaler:         imgpkg.DefaultScaler,
		MaxCachePixels: cache.DefaultMaxPixels,
		Background:     colorutil.Hex(colorutil.Black),
		FrameWindow:    perf.DefaultWindow,
	}
}

// RegisterFlags binds the configuration to command line flags, using the
// current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Float64Var(&c.MaxScale, "max-scale", c.MaxScale, "Maximum zoom scale (>= 1)")
	fs.DurationVar(&c.RefreshDelay, "refresh-delay", c.RefreshDelay, "Delay before the zoomed raster is rebuilt")
	fs.StringVar(&c.Scaler, "scaler", c.Scaler, fmt.Sprintf("Scaling backend %v", imgpkg.ScalerNames()))
	fs.Int64Var(&c.MaxCachePixels, "max-cache-pixels", c.MaxCachePixels, "Largest zoomed raster to precompute, in pixels")
	fs.IntVar(&c.TopLabelHeight, "top-label", c.TopLabelHeight, "Top label height in image pixels")
	fs.IntVar(&c.LeftLabelWidth, "left-label", c.LeftLabelWidth, "Left label width in image pixels")
	fs.BoolVar(&c.ShowTopLabel, "show-top", c.ShowTopLabel, "Always show the top label")
	fs.BoolVar(&c.ShowLeftLabel, "show-left", c.ShowLeftLabel, "Always show the left label")
	fs.StringVar(&c.Background, "background", c.Background, "Frame background color (#rrggbb or #rrggbbaa)")
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if math.IsNaN(c.MaxScale) || math.IsInf(c.MaxScale, 0) || c.MaxScale < 1 {
		errs = append(errs, fmt.Errorf("max scale %v must be finite and at least 1", c.MaxScale))
	}
	if c.RefreshDelay < 0 {
		errs = append(errs, fmt.Errorf("refresh delay %v must not be negative", c.RefreshDelay))
	}
	if _, err := imgpkg.NewScaler(c.Scaler); err != nil {
		errs = append(errs, err)
	}
	if c.MaxCachePixels <= 0 {
		errs = append(errs, fmt.Errorf("max cache pixels %d must be positive", c.MaxCachePixels))
	}
	if c.TopLabelHeight < 0 || c.LeftLabelWidth < 0 {
		errs = append(errs, fmt.Errorf("label sizes %d/%d must not be negative", c.TopLabelHeight, c.LeftLabelWidth))
	}
	if _, err := colorutil.ParseHex(c.Background); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
