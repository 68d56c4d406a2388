package gioui

import (
	"image/color"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/rationalkeyboard/keys/keyboard"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
var black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
var transparent = color.NRGBA{A: 0}

var primaryColor = color.NRGBA{R: 206, G: 147, B: 216, A: 255}
var backgroundColor = color.NRGBA{R: 18, G: 18, B: 18, A: 255}
var outlineColor = color.NRGBA{R: 0, G: 0, B: 0, A: 96}
var labelFontSize = unit.Sp(12)

func newTheme() *material.Theme {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Palette.Fg = white
	th.Palette.Bg = backgroundColor
	th.Palette.ContrastBg = primaryColor
	th.Palette.ContrastFg = black
	return th
}

func LowEmphasisButton(th *material.Theme, w *widget.Clickable, text string) material.ButtonStyle {
	ret := material.Button(th, w, text)
	ret.Color = th.Palette.Fg
	ret.Background = transparent
	ret.Inset = layout.UniformInset(unit.Dp(6))
	return ret
}

func HighEmphasisButton(th *material.Theme, w *widget.Clickable, text string) material.ButtonStyle {
	ret := material.Button(th, w, text)
	ret.Color = th.Palette.ContrastFg
	ret.Background = th.Palette.ContrastBg
	ret.Inset = layout.UniformInset(unit.Dp(6))
	return ret
}

func IconButton(th *material.Theme, w *widget.Clickable, icon *widget.Icon, description string) material.IconButtonStyle {
	ret := material.IconButton(th, w, icon, description)
	ret.Background = transparent
	ret.Color = primaryColor
	ret.Inset = layout.UniformInset(unit.Dp(6))
	return ret
}

// keyColor converts a key color to an opaque NRGBA.
func keyColor(c keyboard.Color) color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 255}
}

func channel(v float64) uint8 {
	return uint8(255*min(1, max(0, v)) + 0.5)
}
