package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/speedwagon-io/openseat/internal/model"
)

var ErrFeedUnavailable = errors.New("feed unavailable")

// localLayouts carry no zone and are read as wall-clock time in the feed's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type rawRecord struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Busyness  json.RawMessage `json:"busyness"`
	Floor     string          `json:"floor"`
}

// Decode parses a schema v1 payload: a non-empty JSON array of
// {timestamp, busyness, floor} objects. Timestamps without a zone are read
// in loc, nil meaning UTC.
func Decode(data []byte, loc *time.Location) ([]model.Record, error) {
	if loc == nil {
		loc = time.UTC
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: payload is not a JSON array", ErrFeedUnavailable)
	}

	var raw []rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal payload: %v", ErrFeedUnavailable, err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrFeedUnavailable)
	}

	records := make([]model.Record, 0, len(raw))
	for i, r := range raw {
		ts, err := parseTimestamp(r.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrFeedUnavailable, i, err)
		}

		records = append(records, model.Record{
			Timestamp: ts,
			Busyness:  parseBusyness(r.Busyness),
			Floor:     strings.TrimSpace(r.Floor),
		})
	}

	return records, nil
}

// Points converts records into chart points ordered by timestamp. A non-empty
// floor keeps only that floor's records.
func Points(records []model.Record, floor string) []model.DataPoint {
	points := make([]model.DataPoint, 0, len(records))
	for _, r := range records {
		if floor != "" && !strings.EqualFold(r.Floor, floor) {
			continue
		}
		points = append(points, model.DataPoint{Timestamp: r.Timestamp, Value: r.Busyness})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points
}

func parseTimestamp(raw json.RawMessage, loc *time.Location) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, errors.New("missing timestamp")
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
		}
	} else {
		s = string(raw)
	}
	s = strings.TrimSpace(s)

	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch timestamp %q: %w", s, err)
		}
		if len(s) <= 10 {
			return time.Unix(n, 0).UTC(), nil
		}
		return time.UnixMilli(n).UTC(), nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseBusyness treats missing, null and non-numeric values as zero.
func parseBusyness(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
