// Package gioui shows a keyboard in a gioui window and turns pointer input
// into keyboard gestures.
package gioui

import (
	"fmt"
	"image"
	"time"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/keyboard"
	"golang.org/x/exp/shiny/materialdesign/icons"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// Pausable is the audio output that the play/pause button controls.
	Pausable interface {
		Start() error
		Stop()
	}

	Window struct {
		keyboard *keyboard.Keyboard
		labels   []string
		config   keys.KeyboardConfig
		audio    Pausable
		logger   keys.Logger

		theme     *material.Theme
		caser     cases.Caser
		styleBtns []widget.Clickable
		pauseBtn  widget.Clickable
		pauseIcon *widget.Icon
		playIcon  *widget.Icon
		paused    bool
		pressed   bool
		lastErr   string
	}
)

// NewWindow prepares a window for kb. The labels are the lattice points as
// strings. audio may be nil, which hides the play/pause button.
func NewWindow(kb *keyboard.Keyboard, lattice keys.Lattice, config keys.KeyboardConfig, audio Pausable, logger keys.Logger) (*Window, error) {
	if logger == nil {
		logger = keys.NullLogger{}
	}
	pauseIcon, err := widget.NewIcon(icons.AVPause)
	if err != nil {
		return nil, fmt.Errorf("widget.NewIcon failed: %w", err)
	}
	playIcon, err := widget.NewIcon(icons.AVPlayArrow)
	if err != nil {
		return nil, fmt.Errorf("widget.NewIcon failed: %w", err)
	}
	labels := make([]string, len(lattice))
	for i, q := range lattice {
		labels[i] = q.String()
	}
	return &Window{
		keyboard:  kb,
		labels:    labels,
		config:    config,
		audio:     audio,
		logger:    logger,
		theme:     newTheme(),
		caser:     cases.Title(language.English),
		styleBtns: make([]widget.Clickable, len(keyboard.StyleNames)),
		pauseIcon: pauseIcon,
		playIcon:  playIcon,
	}, nil
}

// Main runs the window until it is closed. It must be called from a goroutine
// other than the one running app.Main.
func (win *Window) Main() error {
	w := new(app.Window)
	w.Option(app.Title("Rational Keyboard"), app.Size(unit.Dp(1024), unit.Dp(480)))
	start := time.Now()
	updates := win.keyboard.Updates()
	defer func() {
		elapsed := time.Since(start).Seconds()
		rate := float64(win.keyboard.Updates()-updates) / elapsed
		win.logger.Log(fmt.Sprintf("keyboard update rate = %.1f Hz", rate))
	}()
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			win.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (win *Window) Layout(gtx C) D {
	paint.Fill(gtx.Ops, backgroundColor)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(win.layoutToolbar),
		layout.Flexed(1, win.layoutKeys),
	)
}

func (win *Window) layoutToolbar(gtx C) D {
	current := win.keyboard.Style().Name()
	for i, name := range keyboard.StyleNames {
		if win.styleBtns[i].Clicked(gtx) && name != current {
			if err := win.keyboard.SetStyle(name, win.config); err != nil {
				win.logf("%v", err)
			}
			current = name
		}
	}
	if win.audio != nil && win.pauseBtn.Clicked(gtx) {
		win.togglePause()
	}
	children := make([]layout.FlexChild, 0, len(keyboard.StyleNames)+1)
	if win.audio != nil {
		icon, description := win.pauseIcon, "Pause"
		if win.paused {
			icon, description = win.playIcon, "Play"
		}
		btn := IconButton(win.theme, &win.pauseBtn, icon, description)
		children = append(children, layout.Rigid(btn.Layout))
	}
	for i, name := range keyboard.StyleNames {
		title := win.caser.String(name)
		btn := LowEmphasisButton(win.theme, &win.styleBtns[i], title)
		if name == current {
			btn = HighEmphasisButton(win.theme, &win.styleBtns[i], title)
		}
		children = append(children, layout.Rigid(btn.Layout))
	}
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
}

func (win *Window) togglePause() {
	if win.paused {
		if err := win.audio.Start(); err != nil {
			win.logf("could not resume audio: %v", err)
			return
		}
		win.paused = false
		return
	}
	win.audio.Stop()
	win.paused = true
}

func (win *Window) layoutKeys(gtx C) D {
	size := gtx.Constraints.Max
	if size.X <= 0 || size.Y <= 0 {
		return D{Size: size}
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, win)
	w, h := float64(size.X), float64(size.Y)
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: win,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		if e, ok := ev.(pointer.Event); ok {
			win.pointer(e, w, h)
		}
	}
	ks, err := win.keyboard.Update(w, h)
	if err != nil {
		win.logf("keyboard update failed: %v", err)
	}
	for _, k := range ks {
		fillKey(gtx.Ops, k, w, h)
	}
	for _, k := range ks {
		if k.LabelAlpha > 0 && k.Index < len(win.labels) {
			win.layoutLabel(gtx, win.labels[k.Index], k.LabelAt, k.LabelAlpha, w, h)
		}
	}
	gtx.Execute(op.InvalidateCmd{At: gtx.Now.Add(win.config.UpdatePeriod())})
	return D{Size: size}
}

func (win *Window) pointer(e pointer.Event, w, h float64) {
	x, y := float64(e.Position.X)/w, float64(e.Position.Y)/h
	var err error
	switch e.Kind {
	case pointer.Press:
		if e.Buttons&pointer.ButtonPrimary == 0 && e.Source == pointer.Mouse {
			return
		}
		win.pressed = true
		win.keyboard.Press(x, y)
	case pointer.Drag:
		if win.pressed {
			err = win.keyboard.Drag(x, y)
		}
	case pointer.Release:
		if win.pressed {
			win.pressed = false
			err = win.keyboard.Release(x, y)
		}
	case pointer.Cancel:
		win.pressed = false
		win.keyboard.Cancel()
	}
	if err != nil {
		win.logf("%v", err)
	}
}

func fillKey(ops *op.Ops, k keyboard.Key, w, h float64) {
	if len(k.Outline) < 3 {
		return
	}
	var path clip.Path
	path.Begin(ops)
	path.MoveTo(toPixels(k.Outline[0], w, h))
	for _, p := range k.Outline[1:] {
		path.LineTo(toPixels(p, w, h))
	}
	path.Close()
	spec := path.End()
	paint.FillShape(ops, keyColor(k.Color), clip.Outline{Path: spec}.Op())
	paint.FillShape(ops, outlineColor, clip.Stroke{Path: spec, Width: 1}.Op())
}

func (win *Window) layoutLabel(gtx C, label string, at keyboard.Point, alpha, w, h float64) {
	lbl := material.Label(win.theme, labelFontSize, label)
	lbl.Color = black
	lbl.Color.A = channel(alpha)
	lbl.MaxLines = 1
	gtx.Constraints.Min = image.Point{}
	macro := op.Record(gtx.Ops)
	dims := lbl.Layout(gtx)
	call := macro.Stop()
	p := toPixels(at, w, h)
	offset := image.Pt(int(p.X)-dims.Size.X/2, int(p.Y)-dims.Size.Y/2)
	offset.X = min(max(offset.X, 0), int(w)-dims.Size.X)
	offset.Y = min(max(offset.Y, 0), int(h)-dims.Size.Y)
	stack := op.Offset(offset).Push(gtx.Ops)
	call.Add(gtx.Ops)
	stack.Pop()
}

func toPixels(p keyboard.Point, w, h float64) f32.Point {
	return f32.Pt(float32(p.X*w), float32(p.Y*h))
}

// logf skips messages that repeat the previous one.
func (win *Window) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if msg == win.lastErr {
		return
	}
	win.lastErr = msg
	win.logger.Log(msg)
}
