// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"path/filepath"

	"labelview/internal/app"
	"labelview/internal/cache"
	imgpkg "labelview/internal/image"
	"labelview/internal/version"
	"labelview/pkg/geometry"
	"labelview/ui/canvas"
	"labelview/ui/panels"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	ctrl      *app.Controller
	canvas    *canvas.ImageCanvas
	controls  *panels.ControlPanel
	statusBar *widget.Label

	lastDir string
}

// New creates a new main window.
func New(fyneApp fyne.App, ctrl *app.Controller) *MainWindow {
	win := fyneApp.NewWindow("Label View")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		ctrl:   ctrl,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas(mw.ctrl)
	mw.canvas.OnTap(mw.onImageTapped)

	mw.controls = panels.NewControlPanel(mw.ctrl)

	mw.statusBar = widget.NewLabel("Open an image to start")

	toolbar := mw.createToolbar()

	// Canvas area with toolbar on top
	canvasArea := container.NewBorder(
		toolbar, // top
		nil,     // bottom
		nil,     // left
		nil,     // right
		mw.canvas,
	)

	split := container.NewHSplit(
		container.NewVScroll(mw.controls.Container()),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", func() {
		mw.canvas.ZoomOut()
	})
	zoomInBtn := widget.NewButton("+", func() {
		mw.canvas.ZoomIn()
	})
	fitBtn := widget.NewButton("Fit", func() {
		mw.canvas.ResetZoom()
	})

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit Width", mw.canvas.ResetZoom),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Frame Statistics", mw.onFrameStats),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for controller events.
func (mw *MainWindow) setupEventHandlers() {
	mw.ctrl.On(app.EventImageChanged, func(data interface{}) {
		src, ok := data.(*imgpkg.Source)
		if !ok || src == nil {
			mw.SetTitle("Label View")
			mw.updateStatus("No image")
			return
		}
		if src.Path != "" {
			mw.SetTitle("Label View - " + filepath.Base(src.Path))
		}
		mw.updateStatus(fmt.Sprintf("Image %dx%d", src.Width(), src.Height()))
	})

	mw.ctrl.On(app.EventScaleChanged, func(data interface{}) {
		if scale, ok := data.(float64); ok {
			mw.updateStatus(fmt.Sprintf("Scale %.3g (preparing zoomed image)", scale))
		}
	})

	mw.ctrl.On(app.EventCacheReady, func(interface{}) {
		mw.updateStatus(fmt.Sprintf("Scale %.3g", mw.ctrl.Scale()))
	})

	mw.ctrl.On(app.EventCacheError, func(data interface{}) {
		err, _ := data.(error)
		if errors.Is(err, cache.ErrAllocation) {
			mw.updateStatus("Zoomed image too large, using direct sampling")
			return
		}
		mw.updateStatus(fmt.Sprintf("Zoom failed: %v", err))
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onImageTapped(pt geometry.Point2D) {
	mw.updateStatus(fmt.Sprintf("Image (%.1f, %.1f) at scale %.3g", pt.X, pt.Y, mw.ctrl.Scale()))
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	if mw.lastDir == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(mw.lastDir))
	if err != nil {
		return nil
	}
	return listable
}

// OpenImage loads and displays the image at path.
func (mw *MainWindow) OpenImage(path string) error {
	if err := mw.ctrl.LoadImage(path); err != nil {
		return err
	}
	mw.lastDir = filepath.Dir(path)
	return nil
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		if err := mw.OpenImage(reader.URI().Path()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(imgpkg.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onFrameStats() {
	dialog.ShowInformation("Frame Statistics", mw.ctrl.FrameStats().String(), mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Label View",
		fmt.Sprintf("Label View v%s\n\n"+
			"Zoomable image viewer with pinned header rows and columns.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
