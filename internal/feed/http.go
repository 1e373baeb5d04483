package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/speedwagon-io/openseat/internal/model"
)

const maxPayloadBytes = 8 << 20

type HTTPSource struct {
	log    *slog.Logger
	url    string
	client *http.Client
	loc    *time.Location
}

func NewHTTPSource(log *slog.Logger, url string, timeout time.Duration, loc *time.Location) *HTTPSource {
	return &HTTPSource{
		log: log,
		url: url,
		loc: loc,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *HTTPSource) Load(ctx context.Context) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrFeedUnavailable, err)
	}

	records, err := Decode(body, s.loc)
	if err != nil {
		return nil, err
	}

	s.log.Debug("feed fetched", slog.String("url", s.url), slog.Int("records", len(records)))
	return records, nil
}
