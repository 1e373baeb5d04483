package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report is a crowd report submitted through the form. Reports live in memory only.
type Report struct {
	ID        string    `json:"id"`
	Floor     string    `json:"floor"`
	Busyness  int       `json:"busyness"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReport(floor string, busyness int, notes string) *Report {
	return &Report{
		ID:        uuid.New().String(),
		Floor:     floor,
		Busyness:  busyness,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
}

// Line renders the report the way the report list shows it.
func (r *Report) Line() string {
	note := " — No extra notes"
	if r.Notes != "" {
		note = " — " + r.Notes
	}
	return fmt.Sprintf("%s | Busy level %d/5%s", r.Floor, r.Busyness, note)
}
