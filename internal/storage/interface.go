package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/tally/internal/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Raw events
	// AddRawEvent stores an event under its (source, source_id) identity.
	// It returns false without error when that identity already exists.
	AddRawEvent(event models.RawEvent, occurredAt time.Time) (bool, error)
	// FetchRawEvents returns events whose instant falls within [start, end].
	FetchRawEvents(start, end time.Time) ([]models.RawEvent, error)
	CountRawEvents() (int, error)

	// Time blocks
	PersistTimeBlock(block models.TimeBlock, weekStart time.Time) error
	// ReplaceTimeBlocksForWeek atomically swaps the stored blocks of a week.
	ReplaceTimeBlocksForWeek(weekStart time.Time, blocks []models.TimeBlock) error
	GetTimeBlocksForWeek(weekStart time.Time) ([]models.TimeBlock, error)
	DeleteTimeBlocksForWeek(weekStart time.Time) (int, error)

	// Week summaries
	UpsertWeekSummary(models.WeekSummary) error
	GetWeekSummary(weekStart time.Time) (models.WeekSummary, error)
	GetWeekSummaries(limit int) ([]models.WeekSummary, error)

	// Job runs
	RecordJobStart(models.JobRun) error
	RecordJobFinish(models.JobRun) error
	GetJobRuns(job string, limit int) ([]models.JobRun, error)

	// Utils
	GetConfigPath() string
}
