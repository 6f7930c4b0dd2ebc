package panels

import (
	"image"
	"io"
	"log"
	"testing"

	"labelview/internal/app"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPanel(t *testing.T, withImage bool) (*ControlPanel, *app.Controller) {
	t.Helper()
	test.NewApp()

	ctrl, err := app.NewController(app.DefaultConfig(), app.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	if withImage {
		ctrl.SetImage(image.NewRGBA(image.Rect(0, 0, 1000, 500)))
	}
	return NewControlPanel(ctrl), ctrl
}

func TestApplyScale(t *testing.T) {
	cp, ctrl := newPanel(t, true)
	assert.Equal(t, "1", cp.scaleEntry.Text)

	cp.scaleEntry.SetText("2.5")
	cp.applyScale()
	assert.Equal(t, 2.5, ctrl.Scale())

	cp.scaleEntry.SetText("0.2")
	cp.applyScale()
	assert.Equal(t, 1.0, ctrl.Scale())
	assert.Equal(t, "1", cp.scaleEntry.Text, "entry shows the clamped value")

	cp.scaleEntry.SetText("abc")
	cp.applyScale()
	assert.Contains(t, cp.status.Text, "Invalid scale")
}

func TestApplyMaxScale(t *testing.T) {
	cp, ctrl := newPanel(t, true)
	ctrl.SetScale(4)

	cp.maxScaleEntry.SetText("3")
	cp.applyMaxScale()
	assert.Equal(t, 3.0, ctrl.Scale())
	assert.Equal(t, "3", cp.scaleEntry.Text)

	cp.maxScaleEntry.SetText("inf")
	cp.applyMaxScale()
	assert.Contains(t, cp.status.Text, "finite")
	assert.Equal(t, 3.0, ctrl.ScaleState().MaxScale)
	assert.Equal(t, "3", cp.maxScaleEntry.Text)
}

func TestLabelControls(t *testing.T) {
	cp, ctrl := newPanel(t, true)

	test.Tap(cp.topCheck)
	cp.topEntry.OnSubmitted("600")
	test.Tap(cp.leftCheck)
	cp.leftEntry.OnSubmitted("206")

	labels := ctrl.Labels()
	assert.True(t, labels.ShowTop)
	assert.Equal(t, 500, labels.TopHeight)
	assert.Equal(t, "500", cp.topEntry.Text)
	assert.True(t, labels.ShowLeft)
	assert.Equal(t, 206, labels.LeftWidth)
}

func TestLabelControlsWithoutImage(t *testing.T) {
	cp, ctrl := newPanel(t, false)

	test.Tap(cp.topCheck)
	assert.Contains(t, cp.status.Text, "no image set")
	assert.False(t, cp.topCheck.Checked, "check reverts when the controller refuses")
	test.Tap(cp.leftCheck)
	assert.False(t, cp.leftCheck.Checked)
	assert.False(t, ctrl.Labels().ShowLeft)

	cp.leftEntry.OnSubmitted("x")
	assert.Contains(t, cp.status.Text, "Invalid size")
}
