// Command viewrender renders one viewer frame of an image to a PNG file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"labelview/internal/app"
	"labelview/internal/render"
	"labelview/pkg/geometry"
)

func main() {
	cfg := app.DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	in := flag.String("i", "", "Path to input image")
	out := flag.String("o", "frame.png", "Path to output PNG")
	width := flag.Int("w", 800, "Viewport width in pixels")
	height := flag.Int("h", 600, "Viewport height in pixels")
	scale := flag.Float64("scale", 1, "Zoom scale")
	cx := flag.Int("cx", -1, "Pan center X in scaled pixels (default: keep midpoint)")
	cy := flag.Int("cy", -1, "Pan center Y in scaled pixels (default: keep midpoint)")
	wait := flag.Duration("wait", 0, "Wait up to this long for the zoomed raster before rendering")
	flag.Parse()

	if *in == "" {
		fmt.Println("Usage: viewrender -i <image> [-o frame.png] [-w 800 -h 600] [-scale 2] [-wait 5s]")
		os.Exit(1)
	}

	ctrl, err := app.NewController(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ready := make(chan error, 1)
	ctrl.On(app.EventCacheReady, func(interface{}) {
		select {
		case ready <- nil:
		default:
		}
	})
	ctrl.On(app.EventCacheError, func(data interface{}) {
		err, _ := data.(error)
		select {
		case ready <- err:
		default:
		}
	})

	ctrl.Start()
	defer ctrl.Stop()

	if err := ctrl.LoadImage(*in); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}

	// First frame fixes the fit factor for the viewport.
	ctrl.Render(*width, *height)
	ctrl.SetScale(*scale)
	if *cx >= 0 || *cy >= 0 {
		c := ctrl.Center()
		if *cx >= 0 {
			c.X = *cx
		}
		if *cy >= 0 {
			c.Y = *cy
		}
		ctrl.SetCenter(c)
	}

	if *wait > 0 && ctrl.Scale() > 1 {
		select {
		case err := <-ready:
			if err != nil {
				fmt.Printf("Zoomed raster unavailable, using direct sampling: %v\n", err)
			}
		case <-time.After(*wait):
			fmt.Println("Timed out waiting for zoomed raster, using direct sampling")
		}
	}

	start := time.Now()
	frame := ctrl.Render(*width, *height)
	elapsed := time.Since(start)

	if err := writePNG(*out, frame); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}

	st := ctrl.ScaleState()
	plan := ctrl.Plan()
	fmt.Printf("Scale %.3g (factor %.4f), scaled %dx%d, center %v\n",
		st.Scale, st.Factor, plan.Scaled.X, plan.Scaled.Y, ctrl.Center())
	for _, t := range plan.Tiles {
		fmt.Printf("  %-6s src %v -> dst %v\n", t.Region, t.Src, t.DstRect())
	}
	if mainTile, ok := plan.Tile(render.RegionMain); ok {
		fmt.Printf("Main view covers image pixels %v\n",
			geometry.DescaleRect(mainTile.Src, plan.Factor, 0, ctrl.Source().Bounds()))
	}
	fmt.Printf("Rendered in %v (cached raster: %v), wrote %s\n", elapsed, ctrl.CacheReady(), *out)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
