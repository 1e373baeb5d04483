package model

import "time"

// DataPoint is one plotted sample: a busyness value at an instant.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Record is a validated entry of the occupancy feed.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Busyness  float64   `json:"busyness"`
	Floor     string    `json:"floor,omitempty"`
}
