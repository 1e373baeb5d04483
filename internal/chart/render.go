// Package chart paints the hourly busyness line chart onto a 2D surface.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"reflect"
	"time"

	"github.com/speedwagon-io/openseat/internal/model"
)

var (
	ErrEmptyDataset       = errors.New("no data points to plot")
	ErrUnsupportedSurface = errors.New("surface has no 2D drawing capability")
	ErrInvalidConfig      = errors.New("invalid plot config")
)

const AxisTitle = "Busyness Level (1-5)"

// MaxValueSpan bounds MaxValue-MinValue. One grid line is drawn per integer
// in the domain.
const MaxValueSpan = 100

const (
	markerRadius   = 5.0
	labelFontSize  = 12.0
	titleFontSize  = 14.0
	valueLabelLift = 10.0
	hourLabelDrop  = 18.0
)

// PlotConfig describes the surface and value domain for a single render.
type PlotConfig struct {
	Width    float64
	Height   float64
	Padding  float64
	MinValue float64
	MaxValue float64
	// Location is the zone hour labels are read in. Nil means UTC.
	Location *time.Location
}

func (c PlotConfig) Validate() error {
	if !(c.MinValue < c.MaxValue) {
		return fmt.Errorf("%w: min value %v must be below max value %v", ErrInvalidConfig, c.MinValue, c.MaxValue)
	}
	if c.MaxValue-c.MinValue > MaxValueSpan {
		return fmt.Errorf("%w: value span %v exceeds %d", ErrInvalidConfig, c.MaxValue-c.MinValue, MaxValueSpan)
	}
	if c.Padding < 0 {
		return fmt.Errorf("%w: negative padding", ErrInvalidConfig)
	}
	if c.Width <= c.Padding*2 || c.Height <= c.Padding*2 {
		return fmt.Errorf("%w: %vx%v leaves no plot area with padding %v", ErrInvalidConfig, c.Width, c.Height, c.Padding)
	}
	return nil
}

func (c PlotConfig) baseline() float64 {
	return c.Height - c.Padding
}

type Palette struct {
	BackgroundTop    color.Color
	BackgroundBottom color.Color
	Grid             color.Color
	GridLabel        color.Color
	Axis             color.Color
	Title            color.Color
	Line             color.Color
	Area             color.Color
	MarkerFill       color.Color
	MarkerOutline    color.Color
	ValueLabel       color.Color
	HourLabel        color.Color
}

var DefaultPalette = Palette{
	BackgroundTop:    color.NRGBA{0xff, 0xff, 0xff, 0xff},
	BackgroundBottom: color.NRGBA{0xe0, 0xe7, 0xff, 0xff},
	Grid:             color.NRGBA{0xdb, 0xe1, 0xf0, 0xff},
	GridLabel:        color.NRGBA{0x6b, 0x72, 0x80, 0xff},
	Axis:             color.NRGBA{0x94, 0xa3, 0xb8, 0xff},
	Title:            color.NRGBA{0x11, 0x18, 0x27, 0xff},
	Line:             color.NRGBA{0x4f, 0x46, 0xe5, 0xff},
	Area:             color.NRGBA{99, 102, 241, 64},
	MarkerFill:       color.NRGBA{0xff, 0xff, 0xff, 0xff},
	MarkerOutline:    color.NRGBA{0xef, 0x44, 0x44, 0xff},
	ValueLabel:       color.NRGBA{0x11, 0x18, 0x27, 0xff},
	HourLabel:        color.NRGBA{0x4b, 0x55, 0x63, 0xff},
}

// Render clears s and paints the chart for points, which must already be in
// timestamp order. Nothing is drawn when an error is returned.
func Render(s Surface, points []model.DataPoint, cfg PlotConfig) error {
	if isNil(s) {
		return ErrUnsupportedSurface
	}
	if len(points) == 0 {
		return ErrEmptyDataset
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	p := DefaultPalette
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	s.ClearRect(0, 0, cfg.Width, cfg.Height)
	s.SetFillGradient(LinearGradient{
		X0: 0, Y0: 0, X1: 0, Y1: cfg.Height,
		Stops: []GradientStop{{0, p.BackgroundTop}, {1, p.BackgroundBottom}},
	})
	s.FillRect(0, 0, cfg.Width, cfg.Height)

	drawGrid(s, p, cfg, len(points))
	drawAxes(s, p, cfg)
	drawSeries(s, p, cfg, points)
	drawMarkers(s, p, cfg, points, loc)

	return nil
}

// isNil also catches a nil pointer stored in the interface.
func isNil(s Surface) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func drawGrid(s Surface, p Palette, cfg PlotConfig, count int) {
	s.SetStrokeColor(p.Grid)
	s.SetLineWidth(1)
	s.SetFont(labelFontSize)
	s.SetTextAlign(AlignLeft)
	s.SetFillColor(p.GridLabel)

	for value := math.Ceil(cfg.MinValue); value <= cfg.MaxValue; value++ {
		y := ValueToY(value, cfg)
		s.BeginPath()
		s.MoveTo(cfg.Padding, y)
		s.LineTo(cfg.Width-cfg.Padding, y)
		s.Stroke()
		if value != 0 {
			s.FillText(formatValue(value), cfg.Padding-30, y+4)
		}
	}

	for i := 0; i < count; i++ {
		x := IndexToX(i, count, cfg)
		s.BeginPath()
		s.MoveTo(x, cfg.Padding)
		s.LineTo(x, cfg.baseline())
		s.Stroke()
	}
}

func drawAxes(s Surface, p Palette, cfg PlotConfig) {
	s.SetStrokeColor(p.Axis)
	s.SetLineWidth(2)
	s.BeginPath()
	s.MoveTo(cfg.Padding, cfg.Padding)
	s.LineTo(cfg.Padding, cfg.baseline())
	s.LineTo(cfg.Width-cfg.Padding, cfg.baseline())
	s.Stroke()

	s.Save()
	s.Translate(cfg.Padding-40, cfg.Height/2)
	s.Rotate(-math.Pi / 2)
	s.SetTextAlign(AlignCenter)
	s.SetFillColor(p.Title)
	s.SetFont(titleFontSize)
	s.FillText(AxisTitle, 0, 0)
	s.Restore()
}

func drawSeries(s Surface, p Palette, cfg PlotConfig, points []model.DataPoint) {
	s.SetLineWidth(3)
	s.SetStrokeColor(p.Line)
	s.BeginPath()
	for i, pt := range points {
		x, y := MapPoint(i, len(points), pt.Value, cfg)
		if i == 0 {
			s.MoveTo(x, y)
		} else {
			s.LineTo(x, y)
		}
	}
	s.Stroke()

	lastX := IndexToX(len(points)-1, len(points), cfg)
	s.LineTo(lastX, cfg.baseline())
	s.LineTo(cfg.Padding, cfg.baseline())
	s.ClosePath()
	s.SetFillColor(p.Area)
	s.Fill()
}

func drawMarkers(s Surface, p Palette, cfg PlotConfig, points []model.DataPoint, loc *time.Location) {
	s.SetFont(labelFontSize)
	s.SetTextAlign(AlignCenter)

	for i, pt := range points {
		x, y := MapPoint(i, len(points), pt.Value, cfg)

		s.SetFillColor(p.MarkerFill)
		s.SetStrokeColor(p.MarkerOutline)
		s.SetLineWidth(2)
		s.BeginPath()
		s.Arc(x, y, markerRadius, 0, 2*math.Pi)
		s.Fill()
		s.Stroke()

		s.SetFillColor(p.ValueLabel)
		s.FillText(formatValue(pt.Value), x, y-valueLabelLift)

		s.SetFillColor(p.HourLabel)
		s.FillText(HourLabel(pt.Timestamp.In(loc).Hour()), x, cfg.baseline()+hourLabelDrop)
	}
}
