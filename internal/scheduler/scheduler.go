// Package scheduler runs the periodic fetch-and-process job and the weekly
// fill-up job on a cron clock in the configured timezone.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/tally/internal/calendar"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/pipeline"
	"github.com/julianstephens/tally/internal/utils"
)

var (
	// ErrJobRunning is returned when a job is triggered while it is still running.
	ErrJobRunning = errors.New("job already running")
	ErrUnknownJob = errors.New("unknown job")
)

// Fetcher pulls raw events for a window from one external source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, start, end time.Time) ([]models.RawEvent, error)
}

// Processor is satisfied by *pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) models.ProcessingResult
}

// Store is the persistence the jobs need beyond the pipeline's own.
type Store interface {
	GetSettings() (models.Settings, error)
	AddRawEvent(event models.RawEvent, occurredAt time.Time) (bool, error)
	RecordJobStart(models.JobRun) error
	RecordJobFinish(models.JobRun) error
}

// Hooks observes job outcomes. The metrics package implements it.
type Hooks interface {
	JobFinished(job string, success bool, elapsed time.Duration)
	JobSkipped(job string)
}

type Scheduler struct {
	store     Store
	processor Processor
	fetchers  []Fetcher
	hooks     Hooks
	locks     *JobLock
	now       func() time.Time
	newID     func() string

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Scheduler)

func WithFetchers(fetchers ...Fetcher) Option {
	return func(s *Scheduler) { s.fetchers = append(s.fetchers, fetchers...) }
}

func WithHooks(h Hooks) Option {
	return func(s *Scheduler) { s.hooks = h }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(store Store, processor Processor, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:     store,
		processor: processor,
		locks:     NewJobLock(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Specs returns the cron expressions for both jobs.
func Specs(settings models.Settings) (interval, weekly string, err error) {
	ww, err := calendar.FromSettings(settings)
	if err != nil {
		return "", "", err
	}
	interval = fmt.Sprintf("@every %dh", settings.FetchIntervalHours)
	weekly = fmt.Sprintf("%d %d * * %d", ww.StartMinute, ww.StartHour, int(ww.StartDay))
	return interval, weekly, nil
}

// Start registers both jobs using settings and starts the cron clock.
// Jobs reload settings from the store on every run; only the schedule
// itself is fixed here.
func (s *Scheduler) Start(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return err
	}
	interval, weekly, err := Specs(settings)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc), cron.WithLogger(cronLogger{}))
	if _, err := c.AddFunc(interval, func() { s.trigger(constants.JobFetchAndProcess) }); err != nil {
		return fmt.Errorf("scheduling %s: %w", constants.JobFetchAndProcess, err)
	}
	if _, err := c.AddFunc(weekly, func() { s.trigger(constants.JobWeeklyFillUp) }); err != nil {
		return fmt.Errorf("scheduling %s: %w", constants.JobWeeklyFillUp, err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = c
	c.Start()

	logger.Info("Scheduler started",
		"timezone", loc.String(),
		constants.JobFetchAndProcess, interval,
		constants.JobWeeklyFillUp, weekly)
	return nil
}

// Stop halts the clock, cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

// Entries returns the next activation of each scheduled job.
func (s *Scheduler) Entries() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return nil
	}
	var next []time.Time
	for _, e := range s.cron.Entries() {
		next = append(next, e.Next)
	}
	return next
}

func (s *Scheduler) trigger(job string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.RunNow(ctx, job); err != nil && !errors.Is(err, ErrJobRunning) {
		logger.Error("Scheduled job failed", "job", job, "error", err)
	}
}

// RunNow runs job immediately in the caller's goroutine. A job that is
// already running is skipped with ErrJobRunning, never queued.
func (s *Scheduler) RunNow(ctx context.Context, job string) (models.JobRun, error) {
	var fn func(context.Context, models.Settings, time.Time) (models.ProcessingResult, int, error)
	switch job {
	case constants.JobFetchAndProcess:
		fn = s.fetchAndProcess
	case constants.JobWeeklyFillUp:
		fn = s.weeklyFillUp
	default:
		return models.JobRun{}, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}

	release, ok := s.locks.TryAcquire(job)
	if !ok {
		logger.Warn("Skipping job, previous run still in progress", "job", job)
		if s.hooks != nil {
			s.hooks.JobSkipped(job)
		}
		return models.JobRun{}, fmt.Errorf("%s: %w", job, ErrJobRunning)
	}
	defer release()

	run := models.JobRun{ID: s.newID(), Job: job, StartedAt: s.now()}
	if err := s.store.RecordJobStart(run); err != nil {
		logger.Warn("Failed to record job start", "job", job, "error", err)
	}

	err := s.execute(ctx, run.StartedAt, fn, &run)

	finished := s.now()
	run.FinishedAt = &finished
	run.Success = err == nil
	if err != nil {
		run.Error = err.Error()
	}
	if rerr := s.store.RecordJobFinish(run); rerr != nil {
		logger.Warn("Failed to record job finish", "job", job, "error", rerr)
	}
	if s.hooks != nil {
		s.hooks.JobFinished(job, run.Success, finished.Sub(run.StartedAt))
	}

	logger.Info("Job finished", "job", job, "success", run.Success, "elapsed", finished.Sub(run.StartedAt))
	return run, err
}

func (s *Scheduler) execute(ctx context.Context, trigger time.Time, fn func(context.Context, models.Settings, time.Time) (models.ProcessingResult, int, error), run *models.JobRun) error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	result, fetched, err := fn(ctx, settings, trigger)
	run.Metadata = map[string]any{
		"events_fetched":      fetched,
		"raw_events_count":    result.RawEventsCount,
		"time_blocks_created": result.TimeBlocksCreated,
		"total_hours":         result.TotalHours,
		"hours_filled":        result.HoursFilled,
	}
	if !result.WeekStart.IsZero() {
		run.Metadata[constants.SummaryKeyWeekStart] = result.WeekStart.Format(time.RFC3339)
	}
	if err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Error)
	}
	return nil
}

// fetchAndProcess ingests events from every fetcher for the current week,
// then rebuilds that week. A failing fetcher is logged and the rest still run.
func (s *Scheduler) fetchAndProcess(ctx context.Context, settings models.Settings, trigger time.Time) (models.ProcessingResult, int, error) {
	ww, err := calendar.FromSettings(settings)
	if err != nil {
		return models.ProcessingResult{}, 0, err
	}
	week := ww.Window(trigger)

	fetched := 0
	for _, f := range s.fetchers {
		if err := ctx.Err(); err != nil {
			return models.ProcessingResult{}, fetched, err
		}
		n, err := s.ingest(ctx, f, week, ww.Location)
		fetched += n
		if err != nil {
			logger.Warn("Fetcher failed", "fetcher", f.Name(), "error", err)
		}
	}

	ref := trigger
	return s.processor.Process(ctx, pipeline.Request{Settings: settings, Reference: &ref, Replace: true}), fetched, nil
}

func (s *Scheduler) ingest(ctx context.Context, f Fetcher, week calendar.Window, loc *time.Location) (int, error) {
	events, err := f.Fetch(ctx, week.Start, week.End)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, ev := range events {
		at, err := utils.ParseTimestamp(ev.Timestamp, loc)
		if err != nil {
			logger.Debug("Dropping fetched event with bad timestamp", "fetcher", f.Name(), "source_id", ev.SourceID, "error", err)
			continue
		}
		inserted, err := s.store.AddRawEvent(ev, at)
		if err != nil {
			return added, fmt.Errorf("storing event %s: %w", ev.SourceID, err)
		}
		if inserted {
			added++
		}
	}
	logger.Debug("Fetcher finished", "fetcher", f.Name(), "received", len(events), "added", added)
	return added, nil
}

// weeklyFillUp fires at the start of a new work week and closes out the one
// that just ended.
func (s *Scheduler) weeklyFillUp(ctx context.Context, settings models.Settings, trigger time.Time) (models.ProcessingResult, int, error) {
	ref := trigger.Add(-time.Minute)
	return s.processor.Process(ctx, pipeline.Request{Settings: settings, Reference: &ref, Replace: true}), 0, nil
}
