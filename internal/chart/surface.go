package chart

import "image/color"

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// GradientStop is one color stop of a linear gradient, Offset in [0,1].
type GradientStop struct {
	Offset float64
	Color  color.Color
}

// LinearGradient runs from (X0,Y0) to (X1,Y1) in surface coordinates.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []GradientStop
}

// Surface is an immediate-mode 2D drawing context.
//
// Paths follow canvas semantics: Stroke and Fill paint the current path
// without consuming it, and BeginPath starts a fresh one. Arc connects to
// the current point with a straight segment when a path is already open.
// Angles are in radians, clockwise in screen space.
type Surface interface {
	ClearRect(x, y, w, h float64)
	FillRect(x, y, w, h float64)

	SetFillColor(c color.Color)
	SetFillGradient(g LinearGradient)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, r, startAngle, endAngle float64)
	ClosePath()
	Stroke()
	Fill()

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)

	SetFont(size float64)
	SetTextAlign(align TextAlign)
	FillText(text string, x, y float64)
}
