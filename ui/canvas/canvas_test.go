package canvas

import (
	"image"
	"io"
	"log"
	"testing"

	"labelview/internal/app"
	"labelview/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCanvas(t *testing.T) (*ImageCanvas, *app.Controller) {
	t.Helper()
	test.NewApp()

	ctrl, err := app.NewController(app.DefaultConfig(), app.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	ctrl.SetImage(image.NewRGBA(image.Rect(0, 0, 400, 200)))
	ctrl.Render(200, 100)

	ic := NewImageCanvas(ctrl)
	ic.Resize(fyne.NewSize(200, 100))
	return ic, ctrl
}

func TestDoubleTapZooms(t *testing.T) {
	ic, ctrl := newTestCanvas(t)
	test.DoubleTap(ic)
	assert.Equal(t, 1.5, ctrl.Scale())
}

func TestScrollZooms(t *testing.T) {
	ic, ctrl := newTestCanvas(t)

	ic.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 10)})
	assert.Equal(t, zoomStep, ctrl.Scale())
	ic.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -10)})
	assert.InDelta(t, 1.0, ctrl.Scale(), 1e-9)
	ic.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(5, 0)})
	assert.InDelta(t, 1.0, ctrl.Scale(), 1e-9)
}

func TestDragPans(t *testing.T) {
	ic, ctrl := newTestCanvas(t)
	ctrl.SetScale(2)
	start := ctrl.Center()

	ev := &fyne.DragEvent{Dragged: fyne.NewDelta(5, 0)}
	ev.Position = fyne.NewPos(55, 50)
	ic.Dragged(ev)
	ev = &fyne.DragEvent{Dragged: fyne.NewDelta(5, 3)}
	ev.Position = fyne.NewPos(60, 53)
	ic.Dragged(ev)
	ic.DragEnd()

	assert.Equal(t, start.Sub(image.Pt(10, 3)), ctrl.Center())
}

func TestZoomButtons(t *testing.T) {
	ic, ctrl := newTestCanvas(t)
	ic.ZoomIn()
	ic.ZoomIn()
	assert.InDelta(t, zoomStep*zoomStep, ctrl.Scale(), 1e-9)
	ic.ZoomOut()
	assert.InDelta(t, zoomStep, ctrl.Scale(), 1e-9)
	ic.ResetZoom()
	assert.Equal(t, 1.0, ctrl.Scale())
}

func TestTapReportsImageCoordinates(t *testing.T) {
	ic, _ := newTestCanvas(t)

	var got geometry.Point2D
	ic.OnTap(func(pt geometry.Point2D) { got = pt })
	test.TapAt(ic, fyne.NewPos(10, 20))

	// Fit factor 0.5: pixel centre (10.5, 20.5) is image (21, 41).
	assert.Equal(t, image.Pt(21, 41), got.Floor())
}
