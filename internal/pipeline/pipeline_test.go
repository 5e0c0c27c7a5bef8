package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/normalizer"
)

type memStore struct {
	events     []models.RawEvent
	fetchErr   error
	persistErr error
	failAfter  int

	blocks    []models.TimeBlock
	weekStart []time.Time
	summaries map[time.Time]models.WeekSummary

	fetchStart, fetchEnd time.Time
}

func newMemStore(events ...models.RawEvent) *memStore {
	return &memStore{events: events, failAfter: -1, summaries: map[time.Time]models.WeekSummary{}}
}

func (m *memStore) FetchRawEvents(start, end time.Time) ([]models.RawEvent, error) {
	m.fetchStart, m.fetchEnd = start, end
	return m.events, m.fetchErr
}

func (m *memStore) PersistTimeBlock(b models.TimeBlock, weekStart time.Time) error {
	if m.failAfter >= 0 && len(m.blocks) >= m.failAfter {
		return m.persistErr
	}
	m.blocks = append(m.blocks, b)
	m.weekStart = append(m.weekStart, weekStart)
	return nil
}

func (m *memStore) UpsertWeekSummary(s models.WeekSummary) error {
	m.summaries[s.WeekStart] = s
	return nil
}

type replacingStore struct {
	*memStore
	replaced int
}

func (r *replacingStore) ReplaceTimeBlocksForWeek(weekStart time.Time, blocks []models.TimeBlock) error {
	r.replaced++
	r.blocks = append([]models.TimeBlock(nil), blocks...)
	return nil
}

type panicStore struct{ *memStore }

func (panicStore) FetchRawEvents(start, end time.Time) ([]models.RawEvent, error) {
	panic("connection reset")
}

type recorder struct {
	results []models.ProcessingResult
	stats   []normalizer.Stats
}

func (r *recorder) RecordRun(res models.ProcessingResult, s normalizer.Stats, _ time.Duration) {
	r.results = append(r.results, res)
	r.stats = append(r.stats, s)
}

func utcSettings() models.Settings {
	s := models.DefaultSettings()
	s.Timezone = "UTC"
	return s
}

func ref(t time.Time) *time.Time { return &t }

func TestProcessEndToEnd(t *testing.T) {
	store := newMemStore(models.RawEvent{
		Source:          models.SourceWakaTime,
		SourceID:        "hb-1",
		Timestamp:       "2026-01-06T10:00:00Z",
		DurationMinutes: 65,
		Description:     "tally",
	})
	rec := &recorder{}
	p := New(store, WithRecorder(rec))

	res := p.Process(context.Background(), Request{
		Settings:  utcSettings(),
		Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
	})

	if !res.Success {
		t.Fatalf("Process() failed: %s", res.Error)
	}
	wantStart := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	if !res.WeekStart.Equal(wantStart) || !res.WeekEnd.Equal(wantEnd) {
		t.Errorf("week = %v..%v", res.WeekStart, res.WeekEnd)
	}
	if !store.fetchStart.Equal(wantStart) || !store.fetchEnd.Equal(wantEnd) {
		t.Errorf("fetched window = %v..%v", store.fetchStart, store.fetchEnd)
	}
	if res.RawEventsCount != 1 || res.TimeBlocksCreated != 2 {
		t.Errorf("counts = %d raw, %d blocks", res.RawEventsCount, res.TimeBlocksCreated)
	}
	if res.TotalHours != 40 || res.HoursFilled != 38.5 {
		t.Errorf("hours = %v total, %v filled", res.TotalHours, res.HoursFilled)
	}

	if len(store.blocks) != 2 {
		t.Fatalf("persisted %d blocks, want 2", len(store.blocks))
	}
	actual, fill := store.blocks[0], store.blocks[1]
	if actual.Hours() != 1.5 || actual.Source != models.SourceWakaTime {
		t.Errorf("tracked block = %+v", actual)
	}
	if fill.Hours() != 38.5 || !fill.Start.Equal(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("fill block = %v (%vh)", fill.Start, fill.Hours())
	}
	for i, b := range store.blocks {
		if b.ID == "" {
			t.Errorf("block %d persisted without an ID", i)
		}
		if !store.weekStart[i].Equal(wantStart) {
			t.Errorf("block %d weekStart = %v", i, store.weekStart[i])
		}
	}

	summary, ok := store.summaries[wantStart]
	if !ok {
		t.Fatal("week summary not upserted")
	}
	if summary.TotalHours != 40 {
		t.Errorf("summary total = %v", summary.TotalHours)
	}
	if summary.Metadata[constants.SummaryKeyHoursFilled] != 38.5 {
		t.Errorf("summary metadata = %v", summary.Metadata)
	}
	if summary.Metadata[constants.SummaryKeyWeekStart] != "2026-01-05T18:00:00Z" {
		t.Errorf("summary week_start = %v", summary.Metadata[constants.SummaryKeyWeekStart])
	}
	bySource, _ := summary.Metadata[constants.SummaryKeyHoursBySource].(map[string]float64)
	if bySource["wakatime"] != 1.5 || bySource["auto_fill"] != 38.5 {
		t.Errorf("hours_by_source = %v", bySource)
	}

	if len(rec.results) != 1 || !rec.results[0].Success {
		t.Errorf("recorder saw %+v", rec.results)
	}
}

func TestProcessDefaultsToNow(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	p := New(store, WithClock(func() time.Time { return now }))

	res := p.Process(context.Background(), Request{Settings: utcSettings()})
	if !res.Success {
		t.Fatalf("Process() failed: %s", res.Error)
	}
	if !res.WeekStart.Equal(time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("WeekStart = %v", res.WeekStart)
	}
}

func TestProcessSkipsBadEvents(t *testing.T) {
	store := newMemStore(
		models.RawEvent{Source: models.SourceCalendar, SourceID: "a", Timestamp: "garbage", DurationMinutes: 30},
		models.RawEvent{Source: models.SourceCalendar, SourceID: "b", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 0},
		models.RawEvent{Source: models.SourceCalendar, SourceID: "c", Timestamp: "2026-01-06T11:00:00Z", DurationMinutes: 60},
	)
	rec := &recorder{}
	s := utcSettings()
	s.AutoFillEnabled = false

	res := New(store, WithRecorder(rec)).Process(context.Background(), Request{
		Settings:  s,
		Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
	})
	if !res.Success {
		t.Fatalf("Process() failed: %s", res.Error)
	}
	if res.RawEventsCount != 3 || res.TimeBlocksCreated != 1 || res.TotalHours != 1 {
		t.Errorf("result = %+v", res)
	}
	if rec.stats[0].Skipped() != 2 {
		t.Errorf("recorded skipped = %d, want 2", rec.stats[0].Skipped())
	}
}

func TestProcessUnknownSourceFails(t *testing.T) {
	store := newMemStore(models.RawEvent{
		Source: "slack", SourceID: "x", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 30,
	})
	res := New(store).Process(context.Background(), Request{
		Settings:  utcSettings(),
		Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
	})
	if res.Success {
		t.Fatal("Process() succeeded with an unknown source")
	}
	if !strings.HasPrefix(res.Error, StageNormalize+":") || !strings.Contains(res.Error, "unknown source") {
		t.Errorf("Error = %q", res.Error)
	}
	if len(store.blocks) != 0 || len(store.summaries) != 0 {
		t.Error("a failed normalize stage must not write anything")
	}
	if res.WeekStart.IsZero() {
		t.Error("WeekStart should be reported once the window is known")
	}
}

func TestProcessFailures(t *testing.T) {
	badSettings := utcSettings()
	badSettings.OverlapHandling = "coinflip"

	tests := []struct {
		name      string
		store     Store
		settings  models.Settings
		replace   bool
		wantStage string
	}{
		{
			name:      "invalid settings",
			store:     newMemStore(),
			settings:  badSettings,
			wantStage: StageSettings,
		},
		{
			name: "fetch error",
			store: func() Store {
				m := newMemStore()
				m.fetchErr = errors.New("db locked")
				return m
			}(),
			settings:  utcSettings(),
			wantStage: StageFetch,
		},
		{
			name: "persist error",
			store: func() Store {
				m := newMemStore(models.RawEvent{Source: models.SourceGmail, SourceID: "1", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 30})
				m.failAfter = 1
				m.persistErr = errors.New("disk full")
				return m
			}(),
			settings:  utcSettings(),
			wantStage: StagePersist,
		},
		{
			name:      "replace unsupported",
			store:     newMemStore(),
			settings:  utcSettings(),
			replace:   true,
			wantStage: StagePersist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.store).Process(context.Background(), Request{
				Settings:  tt.settings,
				Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
				Replace:   tt.replace,
			})
			if res.Success {
				t.Fatal("Process() expected failure")
			}
			if !strings.HasPrefix(res.Error, tt.wantStage+":") {
				t.Errorf("Error = %q, want stage %q", res.Error, tt.wantStage)
			}
		})
	}
}

func TestProcessPartialPersist(t *testing.T) {
	// Append mode does not roll back: the first block stays written.
	m := newMemStore(models.RawEvent{Source: models.SourceGmail, SourceID: "1", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 30})
	m.failAfter = 1
	m.persistErr = errors.New("disk full")

	res := New(m).Process(context.Background(), Request{
		Settings:  utcSettings(),
		Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
	})
	if res.Success {
		t.Fatal("Process() expected failure")
	}
	if len(m.blocks) != 1 {
		t.Errorf("persisted %d blocks before failing, want 1", len(m.blocks))
	}
	if len(m.summaries) != 0 {
		t.Error("summary must not be written after a persist failure")
	}
}

func TestProcessReplace(t *testing.T) {
	store := &replacingStore{memStore: newMemStore(models.RawEvent{
		Source: models.SourceWakaTime, SourceID: "1", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 60,
	})}
	p := New(store)
	req := Request{
		Settings:  utcSettings(),
		Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
		Replace:   true,
	}

	for i := 0; i < 2; i++ {
		if res := p.Process(context.Background(), req); !res.Success {
			t.Fatalf("run %d failed: %s", i, res.Error)
		}
	}
	if store.replaced != 2 {
		t.Errorf("replaced = %d, want 2", store.replaced)
	}
	if len(store.blocks) != 2 {
		t.Errorf("stored %d blocks after two replacing runs, want 2", len(store.blocks))
	}
}

func TestProcessAppendDuplicates(t *testing.T) {
	store := newMemStore(models.RawEvent{
		Source: models.SourceWakaTime, SourceID: "1", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 60,
	})
	p := New(store)
	req := Request{Settings: utcSettings(), Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC))}

	p.Process(context.Background(), req)
	p.Process(context.Background(), req)
	if len(store.blocks) != 4 {
		t.Errorf("stored %d blocks after two appending runs, want 4", len(store.blocks))
	}
	if len(store.summaries) != 1 {
		t.Errorf("summaries = %d, want 1 per week", len(store.summaries))
	}
}

func TestProcessRecoversPanic(t *testing.T) {
	rec := &recorder{}
	res := New(panicStore{newMemStore()}, WithRecorder(rec)).Process(context.Background(), Request{
		Settings:  utcSettings(),
		Reference: ref(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)),
	})
	if res.Success || !strings.Contains(res.Error, "connection reset") {
		t.Errorf("result = %+v", res)
	}
	if len(rec.results) != 1 || rec.results[0].Success {
		t.Errorf("recorder should see the failed run, got %+v", rec.results)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemStore()
	res := New(store).Process(ctx, Request{Settings: utcSettings()})
	if res.Success {
		t.Fatal("Process() succeeded with a cancelled context")
	}
	if !strings.Contains(res.Error, context.Canceled.Error()) {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestStageErrUnwraps(t *testing.T) {
	err := stageErr(StageFetch, apperrors.ErrInvalidSettings)
	if !errors.Is(err, apperrors.ErrInvalidSettings) {
		t.Error("stageErr should wrap its cause")
	}
}
