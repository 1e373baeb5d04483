package canvas

import (
	"image/color"
	"io"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/speedwagon-io/openseat/internal/chart"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	gradientBands = 48
	arcSegments   = 32
)

type pathOp struct {
	close bool
	move  bool
	x, y  float64
}

type vectorState struct {
	matrix   drawing.Matrix
	fill     color.Color
	gradient *chart.LinearGradient
	stroke   color.Color
	width    float64
	align    chart.TextAlign
	size     float64
}

// Vector is a chart.Surface that emits SVG through the go-chart vector
// renderer. Paths are buffered in device space and replayed on Stroke and
// Fill because the renderer consumes its path on every paint.
type Vector struct {
	width, height int
	r             gochart.Renderer
	font          *truetype.Font
	path          []pathOp
	state         vectorState
	stack         []vectorState
}

func NewVector(width, height int) (*Vector, error) {
	font, err := loadRegular()
	if err != nil {
		return nil, err
	}

	v := &Vector{
		width:  width,
		height: height,
		font:   font,
		state: vectorState{
			matrix: drawing.NewIdentityMatrix(),
			fill:   color.Black,
			stroke: color.Black,
			width:  1,
			size:   10,
		},
	}
	if err := v.reset(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vector) reset() error {
	r, err := gochart.SVG(v.width, v.height)
	if err != nil {
		return err
	}
	r.SetDPI(72)
	r.SetFont(v.font)
	v.r = r
	return nil
}

func (v *Vector) EncodeSVG(w io.Writer) error {
	return v.r.Save(w)
}

// ClearRect starts a new document when the rect covers the whole surface.
// SVG has no erase, so partial clears are ignored.
func (v *Vector) ClearRect(x, y, w, h float64) {
	x0, y0 := v.state.matrix.TransformPoint(x, y)
	x1, y1 := v.state.matrix.TransformPoint(x+w, y+h)
	if math.Min(x0, x1) <= 0 && math.Min(y0, y1) <= 0 &&
		math.Max(x0, x1) >= float64(v.width) && math.Max(y0, y1) >= float64(v.height) {
		_ = v.reset()
	}
}

func (v *Vector) FillRect(x, y, w, h float64) {
	if g := v.state.gradient; g != nil {
		v.fillGradientRect(*g, x, y, w, h)
		return
	}
	v.fillPolygon(v.state.fill, v.rectPath(x, y, w, h))
}

func (v *Vector) fillGradientRect(g chart.LinearGradient, x, y, w, h float64) {
	bandHeight := h / gradientBands
	for i := 0; i < gradientBands; i++ {
		by := y + float64(i)*bandHeight
		c := gradientAt(g, x+w/2, by+bandHeight/2)
		// Overlap bands by a pixel so integer rounding leaves no seams.
		v.fillPolygon(c, v.rectPath(x, by, w, bandHeight+1))
	}
}

func (v *Vector) rectPath(x, y, w, h float64) []pathOp {
	m := v.state.matrix
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	ops := make([]pathOp, 0, len(corners)+1)
	for i, c := range corners {
		px, py := m.TransformPoint(c[0], c[1])
		ops = append(ops, pathOp{move: i == 0, x: px, y: py})
	}
	return append(ops, pathOp{close: true})
}

func (v *Vector) fillPolygon(c color.Color, ops []pathOp) {
	v.r.ResetStyle()
	v.r.SetFillColor(toDrawing(c))
	v.replay(ops)
	v.r.Fill()
}

func (v *Vector) SetFillColor(c color.Color) {
	v.state.fill = c
	v.state.gradient = nil
}

func (v *Vector) SetFillGradient(g chart.LinearGradient) {
	v.state.gradient = &g
}

func (v *Vector) SetStrokeColor(c color.Color) {
	v.state.stroke = c
}

func (v *Vector) SetLineWidth(w float64) {
	v.state.width = w
}

func (v *Vector) BeginPath() {
	v.path = v.path[:0]
}

func (v *Vector) MoveTo(x, y float64) {
	px, py := v.state.matrix.TransformPoint(x, y)
	v.path = append(v.path, pathOp{move: true, x: px, y: py})
}

func (v *Vector) LineTo(x, y float64) {
	if len(v.path) == 0 {
		v.MoveTo(x, y)
		return
	}
	px, py := v.state.matrix.TransformPoint(x, y)
	v.path = append(v.path, pathOp{x: px, y: py})
}

func (v *Vector) Arc(x, y, radius, startAngle, endAngle float64) {
	span := endAngle - startAngle
	for i := 0; i <= arcSegments; i++ {
		a := startAngle + span*float64(i)/arcSegments
		px, py := x+radius*math.Cos(a), y+radius*math.Sin(a)
		if i == 0 && len(v.path) == 0 {
			v.MoveTo(px, py)
			continue
		}
		v.LineTo(px, py)
	}
}

func (v *Vector) ClosePath() {
	v.path = append(v.path, pathOp{close: true})
}

func (v *Vector) Stroke() {
	if len(v.path) == 0 {
		return
	}
	v.r.ResetStyle()
	v.r.SetStrokeColor(toDrawing(v.state.stroke))
	v.r.SetStrokeWidth(v.state.width)
	v.replay(v.path)
	v.r.Stroke()
}

func (v *Vector) Fill() {
	if len(v.path) == 0 {
		return
	}
	fill := v.state.fill
	if g := v.state.gradient; g != nil && len(g.Stops) > 0 {
		fill = g.Stops[0].Color
	}
	v.fillPolygon(fill, v.path)
}

func (v *Vector) replay(ops []pathOp) {
	for _, op := range ops {
		switch {
		case op.close:
			v.r.Close()
		case op.move:
			v.r.MoveTo(round(op.x), round(op.y))
		default:
			v.r.LineTo(round(op.x), round(op.y))
		}
	}
}

func (v *Vector) Save() {
	v.stack = append(v.stack, v.state)
}

func (v *Vector) Restore() {
	if len(v.stack) == 0 {
		return
	}
	v.state = v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
}

func (v *Vector) Translate(x, y float64) {
	v.state.matrix.Translate(x, y)
}

func (v *Vector) Rotate(angle float64) {
	v.state.matrix.Rotate(angle)
}

func (v *Vector) SetFont(size float64) {
	v.state.size = size
}

func (v *Vector) SetTextAlign(align chart.TextAlign) {
	v.state.align = align
}

func (v *Vector) FillText(text string, x, y float64) {
	v.r.ResetStyle()
	v.r.SetFont(v.font)
	v.r.SetFontSize(v.state.size)
	v.r.SetFontColor(toDrawing(v.state.fill))

	width := float64(v.r.MeasureText(text).Width())
	px, py := v.state.matrix.TransformPoint(x-anchorX(v.state.align)*width, y)

	if angle := rotation(v.state.matrix); angle != 0 {
		v.r.SetTextRotation(angle)
		defer v.r.ClearTextRotation()
	}
	v.r.Text(text, round(px), round(py))
}

// rotation is the angle the matrix turns the local x axis by.
func rotation(m drawing.Matrix) float64 {
	return math.Atan2(m[1], m[0])
}

func gradientAt(g chart.LinearGradient, x, y float64) color.Color {
	if len(g.Stops) == 0 {
		return color.Transparent
	}
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	t := 0.0
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t = ((x-g.X0)*dx + (y-g.Y0)*dy) / l2
	}

	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if t <= first.Offset {
		return first.Color
	}
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t <= b.Offset {
			return lerp(a.Color, b.Color, (t-a.Offset)/(b.Offset-a.Offset))
		}
	}
	return last.Color
}

func lerp(a, b color.Color, t float64) color.Color {
	ca := color.NRGBAModel.Convert(a).(color.NRGBA)
	cb := color.NRGBAModel.Convert(b).(color.NRGBA)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(ca.R, cb.R), G: mix(ca.G, cb.G), B: mix(ca.B, cb.B), A: mix(ca.A, cb.A)}
}

func toDrawing(c color.Color) drawing.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

func round(f float64) int {
	return int(math.Round(f))
}
