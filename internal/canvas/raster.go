// Package canvas provides chart.Surface implementations: a raster surface
// that encodes PNG and a vector surface that encodes SVG.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/speedwagon-io/openseat/internal/chart"
)

type rasterState struct {
	fill   gg.Pattern
	stroke gg.Pattern
	text   color.Color
	align  chart.TextAlign
	size   float64
}

// Raster is a chart.Surface backed by a gg context.
// FillRect and ClearRect do not keep the current path.
type Raster struct {
	dc    *gg.Context
	faces *faceCache
	state rasterState
	stack []rasterState
}

func NewRaster(width, height int) (*Raster, error) {
	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}

	r := &Raster{
		dc:    gg.NewContext(width, height),
		faces: faces,
		state: rasterState{
			fill:   gg.NewSolidPattern(color.Black),
			stroke: gg.NewSolidPattern(color.Black),
			text:   color.Black,
			size:   10,
		},
	}
	r.dc.SetFontFace(faces.face(r.state.size))
	return r, nil
}

func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

func (r *Raster) ClearRect(x, y, w, h float64) {
	dst, ok := r.dc.Image().(draw.Image)
	if !ok {
		return
	}
	x0, y0 := r.dc.TransformPoint(x, y)
	x1, y1 := r.dc.TransformPoint(x+w, y+h)
	rect := image.Rect(
		int(math.Floor(math.Min(x0, x1))), int(math.Floor(math.Min(y0, y1))),
		int(math.Ceil(math.Max(x0, x1))), int(math.Ceil(math.Max(y0, y1))),
	)
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.Transparent, image.Point{}, draw.Src)
}

func (r *Raster) FillRect(x, y, w, h float64) {
	r.dc.ClearPath()
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r *Raster) SetFillColor(c color.Color) {
	r.state.fill = gg.NewSolidPattern(c)
	r.state.text = c
	r.apply()
}

func (r *Raster) SetFillGradient(g chart.LinearGradient) {
	grad := gg.NewLinearGradient(g.X0, g.Y0, g.X1, g.Y1)
	for _, stop := range g.Stops {
		grad.AddColorStop(stop.Offset, stop.Color)
	}
	r.state.fill = grad
	r.apply()
}

func (r *Raster) SetStrokeColor(c color.Color) {
	r.state.stroke = gg.NewSolidPattern(c)
	r.apply()
}

func (r *Raster) SetLineWidth(w float64) {
	r.dc.SetLineWidth(w)
}

func (r *Raster) BeginPath() {
	r.dc.ClearPath()
}

func (r *Raster) MoveTo(x, y float64) {
	r.dc.MoveTo(x, y)
}

func (r *Raster) LineTo(x, y float64) {
	r.dc.LineTo(x, y)
}

func (r *Raster) Arc(x, y, radius, startAngle, endAngle float64) {
	r.dc.DrawArc(x, y, radius, startAngle, endAngle)
}

func (r *Raster) ClosePath() {
	r.dc.ClosePath()
}

func (r *Raster) Stroke() {
	r.dc.StrokePreserve()
}

func (r *Raster) Fill() {
	r.dc.FillPreserve()
}

func (r *Raster) Save() {
	r.stack = append(r.stack, r.state)
	r.dc.Push()
}

func (r *Raster) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.dc.Pop()
	r.state = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.apply()
}

func (r *Raster) Translate(x, y float64) {
	r.dc.Translate(x, y)
}

func (r *Raster) Rotate(angle float64) {
	r.dc.Rotate(angle)
}

func (r *Raster) SetFont(size float64) {
	r.state.size = size
	r.dc.SetFontFace(r.faces.face(size))
}

func (r *Raster) SetTextAlign(align chart.TextAlign) {
	r.state.align = align
}

func (r *Raster) FillText(text string, x, y float64) {
	r.dc.DrawStringAnchored(text, x, y, anchorX(r.state.align), 0)
}

// apply pushes the tracked styles into the gg context. gg keeps a single
// color for text and SetColor resets both patterns, so order matters.
func (r *Raster) apply() {
	r.dc.SetColor(r.state.text)
	r.dc.SetFillStyle(r.state.fill)
	r.dc.SetStrokeStyle(r.state.stroke)
	r.dc.SetFontFace(r.faces.face(r.state.size))
}

func anchorX(align chart.TextAlign) float64 {
	switch align {
	case chart.AlignCenter:
		return 0.5
	case chart.AlignRight:
		return 1
	default:
		return 0
	}
}
