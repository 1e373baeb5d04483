package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/speedwagon-io/openseat/internal/model"
)

type FileSource struct {
	log  *slog.Logger
	path string
	loc  *time.Location
}

func NewFileSource(log *slog.Logger, path string, loc *time.Location) *FileSource {
	return &FileSource{log: log, path: path, loc: loc}
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) Close() error {
	return nil
}

func (s *FileSource) Load(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrFeedUnavailable, s.path, err)
	}

	records, err := Decode(data, s.loc)
	if err != nil {
		return nil, err
	}

	s.log.Debug("feed loaded", slog.String("path", s.path), slog.Int("records", len(records)))
	return records, nil
}
