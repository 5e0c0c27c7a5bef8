package models

import "time"

// ProcessingResult is returned once per pipeline invocation
type ProcessingResult struct {
	WeekStart         time.Time `json:"week_start"`
	WeekEnd           time.Time `json:"week_end"`
	RawEventsCount    int       `json:"raw_events_count"`
	TimeBlocksCreated int       `json:"time_blocks_created"`
	TotalHours        float64   `json:"total_hours"`
	HoursFilled       float64   `json:"hours_filled"`
	Success           bool      `json:"success"`
	Error             string    `json:"error,omitempty"`
}

// WeekSummary holds the aggregate for one work week, keyed by WeekStart
type WeekSummary struct {
	WeekStart  time.Time      `json:"week_start"`
	TotalHours float64        `json:"total_hours"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// JobRun records one scheduler invocation
type JobRun struct {
	ID         string         `json:"id"`
	Job        string         `json:"job"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
