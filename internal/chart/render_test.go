package chart

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/speedwagon-io/openseat/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = PlotConfig{Width: 400, Height: 300, Padding: 50, MinValue: 0, MaxValue: 5}

func hourly(values ...float64) []model.DataPoint {
	start := time.Date(2024, 11, 30, 8, 0, 0, 0, time.UTC)
	points := make([]model.DataPoint, len(values))
	for i, v := range values {
		points[i] = model.DataPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return points
}

func TestRender_EmptyDataset(t *testing.T) {
	rec := &recorder{}
	err := Render(rec, nil, testConfig)
	require.ErrorIs(t, err, ErrEmptyDataset)
	assert.Empty(t, rec.ops)
}

func TestRender_UnsupportedSurface(t *testing.T) {
	err := Render(nil, hourly(1, 2), testConfig)
	require.ErrorIs(t, err, ErrUnsupportedSurface)
}

func TestRender_InvalidConfig(t *testing.T) {
	bad := []PlotConfig{
		{Width: 400, Height: 300, Padding: 50, MinValue: 5, MaxValue: 5},
		{Width: 100, Height: 300, Padding: 50, MinValue: 0, MaxValue: 5},
		{Width: 400, Height: 300, Padding: -1, MinValue: 0, MaxValue: 5},
	}
	for _, cfg := range bad {
		rec := &recorder{}
		err := Render(rec, hourly(1, 2), cfg)
		assert.True(t, errors.Is(err, ErrInvalidConfig), "config %+v", cfg)
		assert.Empty(t, rec.ops)
	}
}

func TestRender_ClearComesFirst(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Render(rec, hourly(1, 2, 3), testConfig))
	require.NoError(t, Render(rec, hourly(4), testConfig))

	clears := 0
	for i, o := range rec.ops {
		if o.Name != "ClearRect" {
			continue
		}
		clears++
		assert.Equal(t, []float64{0, 0, 400, 300}, o.Args)
		if clears == 1 {
			assert.Equal(t, 0, i, "first call of a render must be the clear")
		}
	}
	assert.Equal(t, 2, clears)

	second := &recorder{}
	require.NoError(t, Render(second, hourly(4), testConfig))
	assert.Equal(t, "ClearRect", second.ops[0].Name)
	assert.Equal(t, second.ops, rec.ops[len(rec.ops)-len(second.ops):], "a render must not depend on earlier ones")
}

func TestRender_OneSegmentPerPair(t *testing.T) {
	for n := 1; n <= 12; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i % 6)
		}
		rec := &recorder{}
		require.NoError(t, Render(rec, hourly(values...), testConfig))

		segments, err := rec.seriesSegments(DefaultPalette.Line)
		require.NoError(t, err)
		assert.Equal(t, n-1, segments, "points=%d", n)
	}
}

func TestRender_Scenario(t *testing.T) {
	points := []model.DataPoint{
		{Timestamp: time.Date(2024, 11, 30, 8, 0, 0, 0, time.UTC), Value: 2},
		{Timestamp: time.Date(2024, 11, 30, 9, 0, 0, 0, time.UTC), Value: 4},
	}
	rec := &recorder{}
	require.NoError(t, Render(rec, points, testConfig))

	arcs := rec.named("Arc")
	require.Len(t, arcs, 2)
	assert.InDelta(t, 50, arcs[0].Args[0], 1e-9)
	assert.InDelta(t, 170, arcs[0].Args[1], 1e-9)
	assert.InDelta(t, 350, arcs[1].Args[0], 1e-9)
	assert.InDelta(t, 90, arcs[1].Args[1], 1e-9)
	assert.Equal(t, markerRadius, arcs[0].Args[2])

	texts := rec.texts()
	assert.Contains(t, texts, AxisTitle)
	assert.Contains(t, texts, "8 AM")
	assert.Contains(t, texts, "9 AM")
	assert.Contains(t, texts, "2")
	assert.Contains(t, texts, "4")
}

func TestRender_SinglePointAtLeftEdge(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Render(rec, hourly(3), testConfig))

	arcs := rec.named("Arc")
	require.Len(t, arcs, 1)
	assert.Equal(t, 50.0, arcs[0].Args[0])
}

func TestRender_GridLabels(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Render(rec, hourly(1, 2), testConfig))

	var gridLabels []string
	for _, o := range rec.named("FillText") {
		if o.Color == DefaultPalette.GridLabel {
			gridLabels = append(gridLabels, o.Text)
		}
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, gridLabels)
}

func TestRender_GridLabelsOnIntegers(t *testing.T) {
	cfg := testConfig
	cfg.MinValue, cfg.MaxValue = 0.5, 4.5

	rec := &recorder{}
	require.NoError(t, Render(rec, hourly(1, 2), cfg))

	var gridLabels []string
	for _, o := range rec.named("FillText") {
		if o.Color == DefaultPalette.GridLabel {
			gridLabels = append(gridLabels, o.Text)
		}
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, gridLabels)
}

func TestRender_ValueSpanTooWide(t *testing.T) {
	for _, max := range []float64{101, 1e17, math.Inf(1)} {
		cfg := testConfig
		cfg.MaxValue = max

		rec := &recorder{}
		err := Render(rec, hourly(1, 2), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, "max %v", max)
		assert.Empty(t, rec.ops)
	}

	cfg := testConfig
	cfg.MaxValue = MaxValueSpan
	require.NoError(t, Render(&recorder{}, hourly(1, 2), cfg))
}

func TestRender_TypedNilSurface(t *testing.T) {
	var rec *recorder
	err := Render(rec, hourly(1, 2), testConfig)
	require.ErrorIs(t, err, ErrUnsupportedSurface)
}

func TestRender_TitleInsideSaveRestore(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Render(rec, hourly(1), testConfig))

	save, restore, title := -1, -1, -1
	for i, o := range rec.ops {
		switch {
		case o.Name == "Save":
			save = i
		case o.Name == "Restore":
			restore = i
		case o.Name == "FillText" && o.Text == AxisTitle:
			title = i
		}
	}
	assert.True(t, save < title && title < restore)
}

func TestRender_HourLabelsUseLocation(t *testing.T) {
	cfg := testConfig
	cfg.Location = time.FixedZone("UTC+2", 2*60*60)

	rec := &recorder{}
	require.NoError(t, Render(rec, hourly(1), cfg))
	assert.Contains(t, rec.texts(), "10 AM")
}
