// Package dashboard loads the feed and turns it into the chart, the chart
// status line and the floor cards. Every call makes one feed attempt.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/speedwagon-io/openseat/internal/canvas"
	"github.com/speedwagon-io/openseat/internal/chart"
	"github.com/speedwagon-io/openseat/internal/config"
	"github.com/speedwagon-io/openseat/internal/feed"
	"github.com/speedwagon-io/openseat/internal/floor"
	"github.com/speedwagon-io/openseat/internal/lib/logger/sl"
	"github.com/speedwagon-io/openseat/internal/metrics"
	"github.com/speedwagon-io/openseat/internal/model"
)

const (
	StatusUnavailable = "Unable to load chart data right now. Pretend it looks amazing though!"
	StatusUnsupported = "Chart rendering is not supported for this output."
	StatusEmpty       = "No busyness data to chart yet."
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

var ErrUnknownFormat = errors.New("unknown chart format")

// ChartRequest selects what to plot. Zero fields fall back to the configured defaults.
type ChartRequest struct {
	Floor  string
	Width  int
	Height int
}

type ChartData struct {
	Status string            `json:"status"`
	Floor  string            `json:"floor,omitempty"`
	Points []model.DataPoint `json:"points"`
}

type FloorsView struct {
	Floors    []floor.Card `json:"floors"`
	Fallback  bool         `json:"fallback"`
	UpdatedAt string       `json:"updated_at"`
}

type Service struct {
	log     *slog.Logger
	source  feed.Source
	cfg     config.ChartConfig
	loc     *time.Location
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(log *slog.Logger, source feed.Source, cfg config.ChartConfig, m *metrics.Metrics) *Service {
	return &Service{
		log:     log,
		source:  source,
		cfg:     cfg,
		loc:     cfg.Location(),
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) records(ctx context.Context) ([]model.Record, error) {
	records, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.FeedFailed(s.source.Name())
		s.log.Error("unable to load feed", slog.String("source", s.source.Name()), sl.Err(err))
		return nil, err
	}
	return records, nil
}

// Points returns the ordered points for floor, or chart.ErrEmptyDataset when
// the feed has none for it.
func (s *Service) Points(ctx context.Context, floorName string) ([]model.DataPoint, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}

	points := feed.Points(records, floorName)
	if len(points) == 0 {
		return nil, chart.ErrEmptyDataset
	}
	return points, nil
}

func (s *Service) plotConfig(req ChartRequest) chart.PlotConfig {
	width, height := s.cfg.Width, s.cfg.Height
	if req.Width > 0 {
		width = req.Width
	}
	if req.Height > 0 {
		height = req.Height
	}
	return chart.PlotConfig{
		Width:    float64(width),
		Height:   float64(height),
		Padding:  s.cfg.Padding,
		MinValue: s.cfg.MinValue,
		MaxValue: s.cfg.MaxValue,
		Location: s.loc,
	}
}

func (s *Service) floorFor(req ChartRequest) string {
	if req.Floor != "" {
		return req.Floor
	}
	return s.cfg.Floor
}

// Render fetches the feed and paints the chart in format to w. Nothing is
// written to w unless the whole chart was painted and encoded.
func (s *Service) Render(ctx context.Context, w io.Writer, format Format, req ChartRequest) error {
	start := time.Now()

	err := s.render(ctx, w, format, req)

	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, feed.ErrFeedUnavailable):
		result = metrics.ResultUnavailable
	case errors.Is(err, chart.ErrEmptyDataset):
		result = metrics.ResultEmpty
	default:
		result = metrics.ResultError
	}
	s.metrics.ObserveRender(string(format), result, time.Since(start))

	return err
}

func (s *Service) render(ctx context.Context, w io.Writer, format Format, req ChartRequest) error {
	if format != FormatPNG && format != FormatSVG {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	points, err := s.Points(ctx, s.floorFor(req))
	if err != nil {
		return err
	}

	cfg := s.plotConfig(req)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		surface, err := canvas.NewRaster(int(cfg.Width), int(cfg.Height))
		if err != nil {
			return fmt.Errorf("%w: %v", chart.ErrUnsupportedSurface, err)
		}
		if err := chart.Render(surface, points, cfg); err != nil {
			return err
		}
		if err := surface.EncodePNG(&buf); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatSVG:
		surface, err := canvas.NewVector(int(cfg.Width), int(cfg.Height))
		if err != nil {
			return fmt.Errorf("%w: %v", chart.ErrUnsupportedSurface, err)
		}
		if err := chart.Render(surface, points, cfg); err != nil {
			return err
		}
		if err := surface.EncodeSVG(&buf); err != nil {
			return fmt.Errorf("failed to encode svg: %w", err)
		}
	}

	s.log.Debug("chart rendered",
		slog.String("format", string(format)),
		slog.Int("points", len(points)),
		slog.Int("bytes", buf.Len()),
	)

	_, err = buf.WriteTo(w)
	return err
}

// Chart returns the plotted points with their status line. Errors are folded
// into the status message.
func (s *Service) Chart(ctx context.Context, req ChartRequest) ChartData {
	floorName := s.floorFor(req)
	points, err := s.Points(ctx, floorName)
	if err != nil {
		return ChartData{Status: StatusMessage(err), Floor: floorName, Points: []model.DataPoint{}}
	}
	return ChartData{Status: s.describe(points), Floor: floorName, Points: points}
}

func (s *Service) Status(ctx context.Context, req ChartRequest) string {
	return s.Chart(ctx, req).Status
}

// describe renders "Saturday, November 30 (8 AM - 8 PM)." for the plotted span.
func (s *Service) describe(points []model.DataPoint) string {
	first := points[0].Timestamp.In(s.loc)
	last := points[len(points)-1].Timestamp.In(s.loc)
	return fmt.Sprintf("%s (%s - %s).",
		first.Format("Monday, January 2"),
		chart.HourLabel(first.Hour()),
		chart.HourLabel(last.Hour()),
	)
}

func StatusMessage(err error) string {
	switch {
	case errors.Is(err, chart.ErrEmptyDataset):
		return StatusEmpty
	case errors.Is(err, chart.ErrUnsupportedSurface), errors.Is(err, ErrUnknownFormat):
		return StatusUnsupported
	default:
		return StatusUnavailable
	}
}

// Floors summarises the feed per floor, falling back to sample floors when
// the feed is unavailable or carries no floor names.
func (s *Service) Floors(ctx context.Context) FloorsView {
	view := FloorsView{UpdatedAt: s.now().In(s.loc).Format("3:04 PM")}

	var summaries []model.FloorSummary
	if records, err := s.records(ctx); err == nil {
		summaries = floor.Summarize(records)
	}

	if len(summaries) == 0 {
		summaries = floor.SampleFloors()
		view.Fallback = true
	}

	view.Floors = floor.Cards(summaries)
	return view
}
