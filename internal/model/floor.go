package model

// FloorSummary aggregates every report of one floor.
type FloorSummary struct {
	Floor       int    `json:"floor"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	ReportCount int    `json:"report_count"`
}
