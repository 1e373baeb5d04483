package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/speedwagon-io/openseat/internal/chart"
	"github.com/speedwagon-io/openseat/internal/config"
	"github.com/speedwagon-io/openseat/internal/dashboard"
	"github.com/speedwagon-io/openseat/internal/feed"
	"github.com/speedwagon-io/openseat/internal/lib/logger/sl"
	"github.com/speedwagon-io/openseat/internal/metrics"
	"github.com/speedwagon-io/openseat/internal/model"
	"github.com/speedwagon-io/openseat/internal/report"
)

const (
	minWidth, maxWidth   = 200, 2000
	minHeight, maxHeight = 100, 1200
	maxReportBody        = 16 << 10
)

type Server struct {
	log       *slog.Logger
	cfg       config.HTTPConfig
	dashboard *dashboard.Service
	reports   *report.Store
	metrics   *metrics.Metrics
	server    *http.Server
	checkers  []HealthChecker
	mu        sync.RWMutex
}

func New(log *slog.Logger, cfg config.HTTPConfig, dash *dashboard.Service, reports *report.Store, m *metrics.Metrics) *Server {
	return &Server{
		log:       log,
		cfg:       cfg,
		dashboard: dash,
		reports:   reports,
		metrics:   m,
		checkers:  make([]HealthChecker, 0),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(LogMiddleware(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/chart", s.handleChartData)
		r.Get("/chart/status", s.handleChartStatus)
		r.Get("/chart.png", s.handleChartImage(dashboard.FormatPNG, "image/png"))
		r.Get("/chart.svg", s.handleChartImage(dashboard.FormatSVG, "image/svg+xml"))
		r.Get("/floors", s.handleFloors)
		r.Get("/reports", s.handleListReports)
		r.Post("/reports", s.handleSubmitReport)
	})

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.Info("starting http server", slog.String("address", s.cfg.Address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", sl.Err(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func chartRequest(r *http.Request) (dashboard.ChartRequest, error) {
	q := r.URL.Query()
	req := dashboard.ChartRequest{Floor: q.Get("floor")}

	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minWidth || n > maxWidth {
			return req, fmt.Errorf("invalid 'width' query parameter")
		}
		req.Width = n
	}

	if v := q.Get("height"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minHeight || n > maxHeight {
			return req, fmt.Errorf("invalid 'height' query parameter")
		}
		req.Height = n
	}

	return req, nil
}

func (s *Server) handleChartImage(format dashboard.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := chartRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Render writes to w only after the chart is fully encoded, so the
		// error branch still owns the response.
		w.Header().Set("Content-Type", contentType)
		if err := s.dashboard.Render(r.Context(), w, format, req); err != nil {
			s.log.Warn("chart not rendered", slog.String("format", string(format)), sl.Err(err))
			writeJSON(w, renderStatusCode(err), map[string]string{"status": dashboard.StatusMessage(err)})
		}
	}
}

func renderStatusCode(err error) int {
	switch {
	case errors.Is(err, feed.ErrFeedUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, chart.ErrEmptyDataset):
		return http.StatusNotFound
	case errors.Is(err, chart.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	req, err := chartRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.dashboard.Chart(r.Context(), req))
}

func (s *Server) handleChartStatus(w http.ResponseWriter, r *http.Request) {
	req, err := chartRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": s.dashboard.Status(r.Context(), req)})
}

func (s *Server) handleFloors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Floors(r.Context()))
}

type reportView struct {
	ID        string `json:"id"`
	Floor     string `json:"floor"`
	Busyness  int    `json:"busyness"`
	Notes     string `json:"notes"`
	Line      string `json:"line"`
	CreatedAt string `json:"created_at"`
}

func newReportView(rep *model.Report) reportView {
	return reportView{
		ID:        rep.ID,
		Floor:     rep.Floor,
		Busyness:  rep.Busyness,
		Notes:     rep.Notes,
		Line:      rep.Line(),
		CreatedAt: rep.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports := s.reports.List()
	views := make([]reportView, 0, len(reports))
	for _, rep := range reports {
		views = append(views, newReportView(rep))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": views})
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var sub report.Submission

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody)).Decode(&sub); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxReportBody)
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		sub = report.Submission{
			Floor:    r.PostForm.Get("floor"),
			Busyness: r.PostForm.Get("busyness"),
			Notes:    r.PostForm.Get("notes"),
		}
	}

	rep, err := s.reports.Add(sub)
	if err != nil {
		s.metrics.ReportRejected()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.ReportAccepted()

	s.log.Info("report accepted",
		slog.String("id", rep.ID),
		slog.String("floor", rep.Floor),
		slog.Int("busyness", rep.Busyness),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": report.Acknowledgement,
		"report":  newReportView(rep),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
