// Package feed loads and validates the occupancy feed.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/speedwagon-io/openseat/internal/config"
	"github.com/speedwagon-io/openseat/internal/model"
)

// Source yields the full set of feed records. Each Load is a single attempt;
// failures wrap ErrFeedUnavailable.
type Source interface {
	Load(ctx context.Context) ([]model.Record, error)
	Name() string
	Close() error
}

// NewSource builds the source selected by cfg.Kind. Zone-less feed
// timestamps are read in loc.
func NewSource(log *slog.Logger, cfg config.FeedConfig, loc *time.Location) (Source, error) {
	switch cfg.Kind {
	case "file":
		return NewFileSource(log, cfg.Path, loc), nil
	case "http":
		return NewHTTPSource(log, cfg.URL, cfg.Timeout, loc), nil
	case "sqlite":
		return NewSQLiteSource(log, cfg.Path, loc)
	default:
		return nil, fmt.Errorf("unknown feed kind %q", cfg.Kind)
	}
}
