// Package main provides the entry point for the Label View application.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"labelview/internal/app"
	"labelview/internal/version"
	"labelview/ui/mainwindow"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const appTitle = "Label View"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := app.DefaultConfig()
	// Viewer defaults pin a 172px header row and a 206px first column;
	// -top-label, -left-label, -show-top and -show-left override them.
	cfg.TopLabelHeight = 172
	cfg.LeftLabelWidth = 206
	cfg.ShowTopLabel = true
	cfg.ShowLeftLabel = true
	cfg.RegisterFlags(flag.CommandLine)
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", appTitle, version.String())
		return
	}

	log.Printf("Starting %s %s", appTitle, version.String())

	ctrl, err := app.NewController(cfg)
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}
	ctrl.Start()
	defer func() {
		ctrl.Stop()
		log.Printf("Frames: %s", ctrl.FrameStats())
	}()

	a := fyneapp.NewWithID("io.labelview")
	a.Settings().SetTheme(&app.ViewerTheme{})

	win := mainwindow.New(a, ctrl)
	win.Resize(fyne.NewSize(1100, 700))

	if flag.NArg() > 0 {
		path := flag.Arg(0)
		if err := win.OpenImage(path); err != nil {
			log.Printf("Failed to load image %s: %v", path, err)
		}
	}

	win.ShowAndRun()
}
