package models

import (
	"time"
)

// RawEvent is the normalized record produced by a source fetcher
type RawEvent struct {
	Source          Source         `json:"source"`
	SourceID        string         `json:"source_id"`
	Timestamp       string         `json:"timestamp"`
	DurationMinutes float64        `json:"duration_minutes"`
	Description     string         `json:"description"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// TimeBlock is a contiguous interval of tracked activity
type TimeBlock struct {
	ID          string         `json:"id,omitempty"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Source      Source         `json:"source"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewTimeBlock builds a block with its priority looked up from source
func NewTimeBlock(start, end time.Time, source Source, description string, metadata map[string]any) (TimeBlock, error) {
	priority, err := source.Priority()
	if err != nil {
		return TimeBlock{}, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return TimeBlock{
		Start:       start,
		End:         end,
		Source:      source,
		Description: description,
		Priority:    priority,
		Metadata:    metadata,
	}, nil
}

func (b TimeBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

func (b TimeBlock) Hours() float64 {
	return b.Duration().Hours()
}

// Overlaps reports whether the half-open intervals of b and other intersect.
// Touching blocks (one ends where the other starts) do not overlap.
func (b TimeBlock) Overlaps(other TimeBlock) bool {
	return b.Start.Before(other.End) && other.Start.Before(b.End)
}

// TotalHours sums the duration of every block
func TotalHours(blocks []TimeBlock) float64 {
	var total time.Duration
	for _, b := range blocks {
		total += b.Duration()
	}
	return total.Hours()
}

// HoursBySource totals block hours per source
func HoursBySource(blocks []TimeBlock) map[Source]float64 {
	stats := make(map[Source]float64)
	for _, b := range blocks {
		stats[b.Source] += b.Hours()
	}
	return stats
}
