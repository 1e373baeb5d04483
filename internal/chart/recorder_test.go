package chart

import (
	"fmt"
	"image/color"
)

type op struct {
	Name  string
	Args  []float64
	Text  string
	Color color.Color
}

// recorder is a Surface that keeps every call for inspection.
type recorder struct {
	ops    []op
	stroke color.Color
	fill   color.Color
}

func (r *recorder) add(name string, args ...float64) {
	r.ops = append(r.ops, op{Name: name, Args: args})
}

func (r *recorder) ClearRect(x, y, w, h float64) { r.add("ClearRect", x, y, w, h) }
func (r *recorder) FillRect(x, y, w, h float64)  { r.add("FillRect", x, y, w, h) }
func (r *recorder) SetFillColor(c color.Color) {
	r.fill = c
	r.ops = append(r.ops, op{Name: "SetFillColor", Color: c})
}
func (r *recorder) SetFillGradient(g LinearGradient) {
	r.add("SetFillGradient", g.X0, g.Y0, g.X1, g.Y1)
}
func (r *recorder) SetStrokeColor(c color.Color) {
	r.stroke = c
	r.ops = append(r.ops, op{Name: "SetStrokeColor", Color: c})
}
func (r *recorder) SetLineWidth(w float64)                   { r.add("SetLineWidth", w) }
func (r *recorder) BeginPath()                               { r.add("BeginPath") }
func (r *recorder) MoveTo(x, y float64)                      { r.add("MoveTo", x, y) }
func (r *recorder) LineTo(x, y float64)                      { r.add("LineTo", x, y) }
func (r *recorder) Arc(x, y, radius, start, end float64)     { r.add("Arc", x, y, radius, start, end) }
func (r *recorder) ClosePath()                               { r.add("ClosePath") }
func (r *recorder) Stroke()                                  { r.ops = append(r.ops, op{Name: "Stroke", Color: r.stroke}) }
func (r *recorder) Fill()                                    { r.ops = append(r.ops, op{Name: "Fill", Color: r.fill}) }
func (r *recorder) Save()                                    { r.add("Save") }
func (r *recorder) Restore()                                 { r.add("Restore") }
func (r *recorder) Translate(x, y float64)                   { r.add("Translate", x, y) }
func (r *recorder) Rotate(angle float64)                     { r.add("Rotate", angle) }
func (r *recorder) SetFont(size float64)                     { r.add("SetFont", size) }
func (r *recorder) SetTextAlign(align TextAlign)             { r.add("SetTextAlign", float64(align)) }
func (r *recorder) FillText(text string, x, y float64) {
	r.ops = append(r.ops, op{Name: "FillText", Args: []float64{x, y}, Text: text, Color: r.fill})
}

func (r *recorder) named(name string) []op {
	var out []op
	for _, o := range r.ops {
		if o.Name == name {
			out = append(out, o)
		}
	}
	return out
}

func (r *recorder) texts() []string {
	var out []string
	for _, o := range r.named("FillText") {
		out = append(out, o.Text)
	}
	return out
}

// seriesSegments counts the LineTo calls of the path stroked in the series color.
func (r *recorder) seriesSegments(line color.Color) (int, error) {
	for i, o := range r.ops {
		if o.Name != "Stroke" || o.Color != line {
			continue
		}
		n := 0
		for j := i - 1; j >= 0; j-- {
			switch r.ops[j].Name {
			case "LineTo":
				n++
			case "BeginPath":
				return n, nil
			}
		}
	}
	return 0, fmt.Errorf("no stroke in series color")
}
