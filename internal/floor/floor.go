// Package floor aggregates feed records into per-floor occupancy cards.
package floor

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/speedwagon-io/openseat/internal/model"
)

const (
	minScore = 1
	maxScore = 5
)

// Card is a floor summary with its derived crowd labels.
type Card struct {
	model.FloorSummary
	CrowdScore       int     `json:"crowd_score"`
	OccupancyPercent float64 `json:"occupancy_percent"`
	CrowdText        string  `json:"crowd_text"`
	CrowdLevel       string  `json:"crowd_level"`
}

// Summarize groups records by floor name. The score is the mean busyness
// rounded half up. Records without a floor are skipped.
func Summarize(records []model.Record) []model.FloorSummary {
	type acc struct {
		total float64
		count int
	}

	byName := make(map[string]*acc)
	var order []string
	for _, r := range records {
		if r.Floor == "" {
			continue
		}
		a, ok := byName[r.Floor]
		if !ok {
			a = &acc{}
			byName[r.Floor] = a
			order = append(order, r.Floor)
		}
		a.total += r.Busyness
		a.count++
	}

	summaries := make([]model.FloorSummary, 0, len(order))
	for _, name := range order {
		a := byName[name]
		summaries = append(summaries, model.FloorSummary{
			Floor:       Number(name),
			Name:        name,
			Score:       int(roundHalfUp(a.total / float64(a.count))),
			ReportCount: a.count,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Floor < summaries[j].Floor
	})

	return summaries
}

// Number reads the leading integer of a floor name ("3rd Floor" is 3).
// Names without one sort first as 0.
func Number(name string) int {
	name = strings.TrimSpace(name)
	end := 0
	for end < len(name) && unicode.IsDigit(rune(name[end])) {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(name[:end])
	if err != nil {
		return 0
	}
	return n
}

func CrowdScore(score float64) int {
	s := int(roundHalfUp(score))
	if s < minScore {
		return minScore
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

func OccupancyPercent(score int) float64 {
	return float64(score) * 100 / maxScore
}

func CrowdText(occupancy float64) string {
	switch {
	case occupancy < 20:
		return "Very Quiet"
	case occupancy < 40:
		return "Quiet"
	case occupancy < 60:
		return "Moderate"
	case occupancy < 80:
		return "Busy"
	default:
		return "Very Crowded"
	}
}

func CrowdLevel(occupancy float64) string {
	switch {
	case occupancy < 40:
		return "low"
	case occupancy < 70:
		return "medium"
	default:
		return "high"
	}
}

func NewCard(s model.FloorSummary) Card {
	score := CrowdScore(float64(s.Score))
	occupancy := OccupancyPercent(score)
	return Card{
		FloorSummary:     s,
		CrowdScore:       score,
		OccupancyPercent: occupancy,
		CrowdText:        CrowdText(occupancy),
		CrowdLevel:       CrowdLevel(occupancy),
	}
}

func Cards(summaries []model.FloorSummary) []Card {
	cards := make([]Card, 0, len(summaries))
	for _, s := range summaries {
		cards = append(cards, NewCard(s))
	}
	return cards
}

// SampleFloors is shown when the feed cannot be loaded.
func SampleFloors() []model.FloorSummary {
	return []model.FloorSummary{
		{Floor: 1, Name: "Floor 1", Score: 2, ReportCount: 4},
		{Floor: 2, Name: "Floor 2", Score: 3, ReportCount: 6},
		{Floor: 3, Name: "Floor 3", Score: 5, ReportCount: 9},
	}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
