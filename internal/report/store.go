// Package report keeps form submissions in memory. Nothing is persisted.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/speedwagon-io/openseat/internal/model"
)

const (
	DefaultBusyness = 3
	Acknowledgement = "Thanks! Your response has been carefully discarded because this is a demo project."
)

var (
	ErrFloorRequired   = errors.New("please pick a floor before sending your report")
	ErrInvalidBusyness = errors.New("busyness must be a whole number from 1 to 5")
)

// Submission is the raw form input.
type Submission struct {
	Floor    string `json:"floor"`
	Busyness string `json:"busyness"`
	Notes    string `json:"notes"`
}

func (s Submission) Validate() (floor string, busyness int, notes string, err error) {
	floor = strings.TrimSpace(s.Floor)
	if floor == "" {
		return "", 0, "", ErrFloorRequired
	}

	busyness = DefaultBusyness
	if raw := strings.TrimSpace(s.Busyness); raw != "" {
		busyness, err = strconv.Atoi(raw)
		if err != nil || busyness < 1 || busyness > 5 {
			return "", 0, "", fmt.Errorf("%w: got %q", ErrInvalidBusyness, raw)
		}
	}

	return floor, busyness, strings.TrimSpace(s.Notes), nil
}

// Store holds the most recent reports, newest first.
type Store struct {
	mu      sync.RWMutex
	max     int
	reports []*model.Report
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = 1
	}
	return &Store{max: max}
}

func (s *Store) Add(sub Submission) (*model.Report, error) {
	floor, busyness, notes, err := sub.Validate()
	if err != nil {
		return nil, err
	}

	r := model.NewReport(floor, busyness, notes)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append([]*model.Report{r}, s.reports...)
	if len(s.reports) > s.max {
		s.reports = s.reports[:s.max]
	}

	return r, nil
}

func (s *Store) List() []*model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
