// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"strconv"
	"strings"

	"labelview/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ControlPanel edits the zoom scale and the pinned labels of a Controller.
type ControlPanel struct {
	ctrl      *app.Controller
	container fyne.CanvasObject

	scaleEntry    *widget.Entry
	maxScaleEntry *widget.Entry
	topCheck      *widget.Check
	topEntry      *widget.Entry
	leftCheck     *widget.Check
	leftEntry     *widget.Entry
	status        *widget.Label

	// syncing suppresses callbacks while widgets are updated from the controller
	syncing bool
}

// NewControlPanel creates a control panel bound to ctrl.
func NewControlPanel(ctrl *app.Controller) *ControlPanel {
	cp := &ControlPanel{ctrl: ctrl}

	// Scale entry and apply button
	cp.scaleEntry = widget.NewEntry()
	cp.scaleEntry.SetPlaceHolder("Scale (1 = fit width)")
	cp.scaleEntry.OnSubmitted = func(string) { cp.applyScale() }
	applyBtn := widget.NewButton("Apply", func() {
		cp.applyScale()
	})

	cp.maxScaleEntry = widget.NewEntry()
	cp.maxScaleEntry.SetPlaceHolder("Max scale")
	cp.maxScaleEntry.OnSubmitted = func(string) { cp.applyMaxScale() }
	maxBtn := widget.NewButton("Set", func() {
		cp.applyMaxScale()
	})

	zoomCard := widget.NewCard("Zoom", "",
		container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Scale:"), applyBtn, cp.scaleEntry),
			container.NewBorder(nil, nil, widget.NewLabel("Max:"), maxBtn, cp.maxScaleEntry),
		),
	)

	// Label controls
	cp.topCheck = widget.NewCheck("Always show top label", func(on bool) {
		if !cp.syncing {
			cp.report(cp.ctrl.SetAlwaysShowTopLabel(on))
			cp.sync()
		}
	})
	cp.topEntry = widget.NewEntry()
	cp.topEntry.SetPlaceHolder("Height in image pixels")
	cp.topEntry.OnSubmitted = func(s string) {
		if n, ok := cp.parseSize(s); ok {
			cp.report(cp.ctrl.SetTopLabelHeight(n))
			cp.sync()
		}
	}

	cp.leftCheck = widget.NewCheck("Always show left label", func(on bool) {
		if !cp.syncing {
			cp.report(cp.ctrl.SetAlwaysShowLeftLabel(on))
			cp.sync()
		}
	})
	cp.leftEntry = widget.NewEntry()
	cp.leftEntry.SetPlaceHolder("Width in image pixels")
	cp.leftEntry.OnSubmitted = func(s string) {
		if n, ok := cp.parseSize(s); ok {
			cp.report(cp.ctrl.SetLeftLabelWidth(n))
			cp.sync()
		}
	}

	labelCard := widget.NewCard("Labels", "",
		container.NewVBox(
			cp.topCheck,
			container.NewBorder(nil, nil, widget.NewLabel("Top:"), nil, cp.topEntry),
			cp.leftCheck,
			container.NewBorder(nil, nil, widget.NewLabel("Left:"), nil, cp.leftEntry),
		),
	)

	cp.status = widget.NewLabel("")
	cp.status.Wrapping = fyne.TextWrapWord

	cp.container = container.NewVBox(zoomCard, labelCard, cp.status)

	ctrl.On(app.EventScaleChanged, func(interface{}) { cp.sync() })
	ctrl.On(app.EventImageChanged, func(interface{}) { cp.sync() })
	cp.sync()

	return cp
}

// Container returns the panel container.
func (cp *ControlPanel) Container() fyne.CanvasObject {
	return cp.container
}

func (cp *ControlPanel) applyScale() {
	v, err := strconv.ParseFloat(strings.TrimSpace(cp.scaleEntry.Text), 64)
	if err != nil {
		cp.status.SetText(fmt.Sprintf("Invalid scale %q", cp.scaleEntry.Text))
		return
	}
	cp.ctrl.SetScale(v)
	cp.status.SetText("")
	cp.sync()
}

func (cp *ControlPanel) applyMaxScale() {
	v, err := strconv.ParseFloat(strings.TrimSpace(cp.maxScaleEntry.Text), 64)
	if err != nil {
		cp.status.SetText(fmt.Sprintf("Invalid max scale %q", cp.maxScaleEntry.Text))
		return
	}
	cp.report(cp.ctrl.SetMaxScale(v))
	cp.sync()
}

func (cp *ControlPanel) parseSize(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		cp.status.SetText(fmt.Sprintf("Invalid size %q", s))
		return 0, false
	}
	return n, true
}

func (cp *ControlPanel) report(err error) {
	if err != nil {
		cp.status.SetText(err.Error())
		return
	}
	cp.status.SetText("")
}

// sync copies the controller state into the widgets.
func (cp *ControlPanel) sync() {
	st := cp.ctrl.ScaleState()
	labels := cp.ctrl.Labels()

	cp.syncing = true
	defer func() { cp.syncing = false }()

	cp.scaleEntry.SetText(strconv.FormatFloat(st.Scale, 'g', 4, 64))
	cp.maxScaleEntry.SetText(strconv.FormatFloat(st.MaxScale, 'g', 4, 64))
	cp.topCheck.SetChecked(labels.ShowTop)
	cp.topEntry.SetText(strconv.Itoa(labels.TopHeight))
	cp.leftCheck.SetChecked(labels.ShowLeft)
	cp.leftEntry.SetText(strconv.Itoa(labels.LeftWidth))
}
