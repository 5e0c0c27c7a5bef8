package models

import (
	apperrors "github.com/julianstephens/tally/internal/errors"
)

// Source identifies where an activity record came from
type Source string

const (
	SourceWakaTime    Source = "wakatime"
	SourceCalendar    Source = "calendar"
	SourceGmail       Source = "gmail"
	SourceGitHub      Source = "github"
	SourceCloudEvents Source = "cloud_events"
	SourceAutoFill    Source = "auto_fill"
)

// Fixed source priorities. Higher wins when blocks overlap.
const (
	PriorityWakaTime    = 100
	PriorityCalendar    = 80
	PriorityGmail       = 60
	PriorityGitHub      = 40
	PriorityCloudEvents = 40
	PriorityAutoFill    = 0
)

// FetchedSources lists the sources external fetchers may produce, in priority order.
// auto_fill is generated internally and never appears on a raw event.
func FetchedSources() []Source {
	return []Source{SourceWakaTime, SourceCalendar, SourceGmail, SourceGitHub, SourceCloudEvents}
}

// Priority returns the fixed priority for s, or an UnknownSourceError.
func (s Source) Priority() (int, error) {
	switch s {
	case SourceWakaTime:
		return PriorityWakaTime, nil
	case SourceCalendar:
		return PriorityCalendar, nil
	case SourceGmail:
		return PriorityGmail, nil
	case SourceGitHub:
		return PriorityGitHub, nil
	case SourceCloudEvents:
		return PriorityCloudEvents, nil
	case SourceAutoFill:
		return PriorityAutoFill, nil
	default:
		return 0, &apperrors.UnknownSourceError{Source: string(s)}
	}
}

// Valid reports whether s is one of the known sources
func (s Source) Valid() bool {
	_, err := s.Priority()
	return err == nil
}

// ParseSource validates a source name
func ParseSource(name string) (Source, error) {
	s := Source(name)
	if _, err := s.Priority(); err != nil {
		return "", err
	}
	return s, nil
}

// HighestPrioritySource returns the source with the greatest priority.
// The first source wins a tie. Unknown sources are an error.
func HighestPrioritySource(sources []Source) (Source, error) {
	var best Source
	bestPriority := -1
	for _, s := range sources {
		p, err := s.Priority()
		if err != nil {
			return "", err
		}
		if p > bestPriority {
			best, bestPriority = s, p
		}
	}
	return best, nil
}
