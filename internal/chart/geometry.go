package chart

import (
	"fmt"
	"strconv"
)

// StepSize is the horizontal distance between consecutive points.
// A single point gets no step and sits on the left padding edge.
func StepSize(width, padding float64, count int) float64 {
	if count > 1 {
		return (width - padding*2) / float64(count-1)
	}
	return 0
}

// ValueToY maps a value onto the vertical pixel axis. Values outside the
// configured domain are not clamped and land outside the plot area.
func ValueToY(value float64, cfg PlotConfig) float64 {
	ratio := (value - cfg.MinValue) / (cfg.MaxValue - cfg.MinValue)
	plotHeight := cfg.Height - cfg.Padding*2
	return cfg.Height - cfg.Padding - ratio*plotHeight
}

func IndexToX(index, count int, cfg PlotConfig) float64 {
	return cfg.Padding + float64(index)*StepSize(cfg.Width, cfg.Padding, count)
}

// MapPoint returns the pixel position of the index-th of count values.
func MapPoint(index, count int, value float64, cfg PlotConfig) (x, y float64) {
	return IndexToX(index, count, cfg), ValueToY(value, cfg)
}

// HourLabel formats an hour of the day on a 12-hour clock ("12 AM", "1 PM").
func HourLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d %s", h, suffix)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
