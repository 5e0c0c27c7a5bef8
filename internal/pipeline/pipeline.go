// Package pipeline runs one work week through normalization, overlap
// resolution, grouping and auto-fill, then persists the outcome.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tally/internal/autofill"
	"github.com/julianstephens/tally/internal/calendar"
	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/grouper"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/normalizer"
	"github.com/julianstephens/tally/internal/overlap"
)

// Stage names reported in PipelineError
const (
	StageSettings  = "settings"
	StageWindow    = "window"
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageResolve   = "resolve"
	StageAutoFill  = "autofill"
	StagePersist   = "persist"
	StageSummary   = "summary"
)

// RawEventStore returns the raw events whose timestamp falls in [start, end],
// ordered by timestamp.
type RawEventStore interface {
	FetchRawEvents(start, end time.Time) ([]models.RawEvent, error)
}

// TimeBlockStore appends one block to the week starting at weekStart.
type TimeBlockStore interface {
	PersistTimeBlock(block models.TimeBlock, weekStart time.Time) error
}

// WeekReplacer swaps every stored block of a week for blocks in one step.
type WeekReplacer interface {
	ReplaceTimeBlocksForWeek(weekStart time.Time, blocks []models.TimeBlock) error
}

// WeekSummaryStore keeps one summary per week start.
type WeekSummaryStore interface {
	UpsertWeekSummary(summary models.WeekSummary) error
}

// Store is what a run needs from persistence.
type Store interface {
	RawEventStore
	TimeBlockStore
	WeekSummaryStore
}

// Recorder observes finished runs. The metrics package implements it.
type Recorder interface {
	RecordRun(result models.ProcessingResult, stats normalizer.Stats, elapsed time.Duration)
}

// Request is the input of one run.
type Request struct {
	Settings models.Settings
	// Reference selects the week; nil means now.
	Reference *time.Time
	// Replace discards the week's stored blocks before writing new ones.
	// The store must implement WeekReplacer.
	Replace bool
}

type Pipeline struct {
	store    Store
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

type Option func(*Pipeline)

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock overrides the time source used when Request.Reference is nil.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the whole sequence for the week containing req.Reference.
// It never returns an error: every failure, panics included, is reported in
// the result with Success false.
func (p *Pipeline) Process(ctx context.Context, req Request) (result models.ProcessingResult) {
	began := time.Now()
	var stats normalizer.Stats

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Pipeline panicked", "panic", r)
			result.Success = false
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		if p.recorder != nil {
			p.recorder.RecordRun(result, stats, time.Since(began))
		}
	}()

	result, stats, err := p.run(ctx, req)
	if err != nil {
		logger.Error("Week processing failed", "week_start", result.WeekStart, "error", err)
		result.Success = false
		result.Error = err.Error()
		return result
	}

	logger.Info("Week processed",
		"week_start", result.WeekStart.Format(time.RFC3339),
		"raw_events", result.RawEventsCount,
		"blocks", result.TimeBlocksCreated,
		"total_hours", result.TotalHours,
		"hours_filled", result.HoursFilled,
		"skipped", stats.Skipped())
	return result
}

func (p *Pipeline) run(ctx context.Context, req Request) (models.ProcessingResult, normalizer.Stats, error) {
	var result models.ProcessingResult
	var stats normalizer.Stats
	s := req.Settings

	if err := s.Validate(); err != nil {
		return result, stats, stageErr(StageSettings, err)
	}

	ww, err := calendar.FromSettings(s)
	if err != nil {
		return result, stats, stageErr(StageWindow, err)
	}
	ref := p.now()
	if req.Reference != nil {
		ref = *req.Reference
	}
	week := ww.Window(ref)
	result.WeekStart, result.WeekEnd = week.Start, week.End

	var replacer WeekReplacer
	if req.Replace {
		r, ok := p.store.(WeekReplacer)
		if !ok {
			return result, stats, stageErr(StagePersist, fmt.Errorf("store does not support replacing a week"))
		}
		replacer = r
	}

	if err := ctx.Err(); err != nil {
		return result, stats, stageErr(StageFetch, err)
	}
	raw, err := p.store.FetchRawEvents(week.Start, week.End)
	if err != nil {
		return result, stats, stageErr(StageFetch, err)
	}
	result.RawEventsCount = len(raw)

	blocks, stats, err := normalizer.Normalize(raw, s.RoundingMode, ww.Location)
	if err != nil {
		return result, stats, stageErr(StageNormalize, err)
	}
	logger.Debug("Normalized events", "converted", stats.Converted,
		"malformed_timestamp", stats.MalformedTimestamp, "non_positive_duration", stats.NonPositiveDuration,
		"oversized_duration", stats.OversizedDuration)

	blocks, err = overlap.Resolve(blocks, s.OverlapHandling)
	if err != nil {
		return result, stats, stageErr(StageResolve, err)
	}
	logger.Debug("Resolved overlaps", "strategy", s.OverlapHandling, "blocks", len(blocks))

	if s.GroupSameActivities {
		blocks = grouper.Group(blocks)
		logger.Debug("Grouped activities", "blocks", len(blocks))
	}

	blocks, filled, err := autofill.Fill(blocks, week, s)
	if err != nil {
		return result, stats, stageErr(StageAutoFill, err)
	}
	result.HoursFilled = filled
	result.TotalHours = models.TotalHours(blocks)

	// Everything above is in memory. Nothing has been written yet.
	if err := ctx.Err(); err != nil {
		return result, stats, stageErr(StagePersist, err)
	}
	for i := range blocks {
		if blocks[i].ID == "" {
			blocks[i].ID = p.newID()
		}
	}
	if replacer != nil {
		if err := replacer.ReplaceTimeBlocksForWeek(week.Start, blocks); err != nil {
			return result, stats, stageErr(StagePersist, err)
		}
	} else {
		for i, b := range blocks {
			if err := p.store.PersistTimeBlock(b, week.Start); err != nil {
				return result, stats, stageErr(StagePersist, fmt.Errorf("block %d of %d: %w", i+1, len(blocks), err))
			}
		}
	}
	result.TimeBlocksCreated = len(blocks)

	summary := models.WeekSummary{
		WeekStart:  week.Start,
		TotalHours: result.TotalHours,
		Metadata:   summaryMetadata(week, filled, blocks),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := p.store.UpsertWeekSummary(summary); err != nil {
		return result, stats, stageErr(StageSummary, err)
	}

	result.Success = true
	return result, stats, nil
}

func summaryMetadata(week calendar.Window, filled float64, blocks []models.TimeBlock) map[string]any {
	bySource := make(map[string]float64)
	for src, h := range models.HoursBySource(blocks) {
		bySource[string(src)] = h
	}
	return map[string]any{
		constants.SummaryKeyWeekStart:     week.Start.Format(time.RFC3339),
		constants.SummaryKeyWeekEnd:       week.End.Format(time.RFC3339),
		constants.SummaryKeyHoursFilled:   filled,
		constants.SummaryKeyHoursBySource: bySource,
	}
}

func stageErr(stage string, err error) error {
	return &apperrors.PipelineError{Stage: stage, Err: err}
}
