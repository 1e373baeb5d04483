package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/speedwagon-io/openseat/internal/feed"
)

const checkTimeout = 5 * time.Second

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// worse reports whether a ranks below b.
func (a Status) worse(b Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	return rank[a] > rank[b]
}

type ComponentHealth struct {
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Duration float64 `json:"duration_ms"`
}

type HealthResponse struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

// HealthChecker probes one dependency of the dashboard.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) (Status, string)
}

func (s *Server) AddChecker(checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, checker)
}

// checkAll runs every checker concurrently and folds the worst status into
// the response. Components keep registration order.
func (s *Server) checkAll(ctx context.Context) HealthResponse {
	s.mu.RLock()
	checkers := append([]HealthChecker(nil), s.checkers...)
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	components := make([]ComponentHealth, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			status, message := checker.Check(ctx)
			components[i] = ComponentHealth{
				Name:     checker.Name(),
				Status:   status,
				Message:  message,
				Duration: float64(time.Since(start).Microseconds()) / 1000,
			}
		}(i, checker)
	}
	wg.Wait()

	response := HealthResponse{Status: StatusHealthy, Components: components, Timestamp: time.Now().UTC()}
	for _, c := range components {
		if c.Status.worse(response.Status) {
			response.Status = c.Status
		}
	}
	return response
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := s.checkAll(r.Context())

	code := http.StatusOK
	if response.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

// handleReady fails only when a component is unhealthy. A degraded feed
// still serves the fallback floors and status messages.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.checkAll(r.Context()).Status == StatusUnhealthy {
		http.Error(w, "NOT READY", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// FeedChecker loads the feed once per probe.
type FeedChecker struct {
	source feed.Source
}

func NewFeedChecker(source feed.Source) *FeedChecker {
	return &FeedChecker{source: source}
}

func (c *FeedChecker) Name() string {
	return "feed:" + c.source.Name()
}

func (c *FeedChecker) Check(ctx context.Context) (Status, string) {
	records, err := c.source.Load(ctx)
	if err != nil {
		return StatusDegraded, err.Error()
	}
	return StatusHealthy, fmt.Sprintf("%d records", len(records))
}

// ReadingsChecker watches the sqlite readings table. An unreadable table is
// unhealthy, an empty one only degraded.
type ReadingsChecker struct {
	count func(ctx context.Context) (int64, error)
}

func NewReadingsChecker(count func(ctx context.Context) (int64, error)) *ReadingsChecker {
	return &ReadingsChecker{count: count}
}

func (c *ReadingsChecker) Name() string {
	return "readings"
}

func (c *ReadingsChecker) Check(ctx context.Context) (Status, string) {
	n, err := c.count(ctx)
	switch {
	case err != nil:
		return StatusUnhealthy, err.Error()
	case n == 0:
		return StatusDegraded, "no readings stored, run with -seed"
	default:
		return StatusHealthy, fmt.Sprintf("%d readings", n)
	}
}

// ReportsChecker exposes how full the in-memory report list is.
type ReportsChecker struct {
	count func() int
	max   int
}

func NewReportsChecker(count func() int, max int) *ReportsChecker {
	return &ReportsChecker{count: count, max: max}
}

func (c *ReportsChecker) Name() string {
	return "reports"
}

func (c *ReportsChecker) Check(ctx context.Context) (Status, string) {
	return StatusHealthy, fmt.Sprintf("%d/%d reports kept in memory", c.count(), c.max)
}
