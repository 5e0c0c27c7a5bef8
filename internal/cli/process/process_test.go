package process

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/sqlite"
)

var weekStart = time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	e := models.RawEvent{Source: models.SourceWakaTime, SourceID: "w1", Timestamp: "2026-01-06T10:00:00Z", DurationMinutes: 90, Description: "tally"}
	if _, err := store.AddRawEvent(e, time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("failed to add event: %v", err)
	}
	return &cli.Context{Store: store}, store
}

func TestProcessCmd(t *testing.T) {
	ctx, store := setupTestDB(t)

	if err := (&ProcessCmd{Date: "2026-01-10T12:00"}).Run(ctx); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	blocks, err := store.GetTimeBlocksForWeek(weekStart)
	if err != nil {
		t.Fatalf("GetTimeBlocksForWeek() error = %v", err)
	}
	if len(blocks) != 2 || models.TotalHours(blocks) != 40 {
		t.Fatalf("blocks = %+v, want 40h in 2 blocks", blocks)
	}

	summary, err := store.GetWeekSummary(weekStart)
	if err != nil {
		t.Fatalf("GetWeekSummary() error = %v", err)
	}
	if summary.TotalHours != 40 {
		t.Errorf("summary total = %v, want 40", summary.TotalHours)
	}
}

func TestProcessCmdAppendVersusReplace(t *testing.T) {
	tests := []struct {
		name       string
		replace    bool
		wantBlocks int
	}{
		{name: "append duplicates blocks", replace: false, wantBlocks: 4},
		{name: "replace keeps one copy", replace: true, wantBlocks: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := setupTestDB(t)
			cmd := &ProcessCmd{Date: "2026-01-07", Replace: tt.replace}
			for i := 0; i < 2; i++ {
				if err := cmd.Run(ctx); err != nil {
					t.Fatalf("run %d failed: %v", i+1, err)
				}
			}
			blocks, err := store.GetTimeBlocksForWeek(weekStart)
			if err != nil {
				t.Fatalf("GetTimeBlocksForWeek() error = %v", err)
			}
			if len(blocks) != tt.wantBlocks {
				t.Errorf("stored %d blocks, want %d", len(blocks), tt.wantBlocks)
			}
		})
	}
}

func TestProcessCmdInvalidDate(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&ProcessCmd{Date: "07/01/2026"}).Run(ctx); err == nil {
		t.Error("process accepted an invalid date")
	}
}

func TestResolveWeek(t *testing.T) {
	ctx, _ := setupTestDB(t)

	tests := []struct {
		date string
		want time.Time
	}{
		{"2026-01-07", weekStart},
		{"2026-01-05T17:59", weekStart.AddDate(0, 0, -7)},
		{"2026-01-05T18:00", weekStart},
		{"2026-01-11", weekStart},
	}
	for _, tt := range tests {
		week, err := resolveWeek(ctx, tt.date)
		if err != nil {
			t.Fatalf("resolveWeek(%q) error = %v", tt.date, err)
		}
		if !week.Start.Equal(tt.want) {
			t.Errorf("resolveWeek(%q).Start = %v, want %v", tt.date, week.Start, tt.want)
		}
	}
}

func TestBlocksAndSummaryCmds(t *testing.T) {
	ctx, store := setupTestDB(t)

	if err := (&SummaryCmd{Date: "2026-01-07"}).Run(ctx); err != nil {
		t.Errorf("summary before processing should only print a hint: %v", err)
	}
	if err := (&BlocksCmd{Date: "2026-01-07"}).Run(ctx); err != nil {
		t.Errorf("blocks before processing should only print a hint: %v", err)
	}

	if err := (&ProcessCmd{Date: "2026-01-07"}).Run(ctx); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	for name, cmd := range map[string]interface{ Run(*cli.Context) error }{
		"blocks":       &BlocksCmd{Date: "2026-01-07"},
		"summary":      &SummaryCmd{Date: "2026-01-07"},
		"summary json": &SummaryCmd{Date: "2026-01-07", JSON: true},
		"summary list": &SummaryCmd{List: 5},
		"week":         &WeekCmd{Date: "2026-01-07"},
	} {
		if err := cmd.Run(ctx); err != nil {
			t.Errorf("%s failed: %v", name, err)
		}
	}

	if err := (&BlocksCmd{Date: "2026-01-07", Delete: true}).Run(ctx); err != nil {
		t.Fatalf("blocks --delete failed: %v", err)
	}
	blocks, err := store.GetTimeBlocksForWeek(weekStart)
	if err != nil {
		t.Fatalf("GetTimeBlocksForWeek() error = %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("%d blocks left after delete", len(blocks))
	}

	// Summaries are kept when blocks are deleted
	if _, err := store.GetWeekSummary(weekStart); errors.Is(err, storage.ErrNotFound) {
		t.Error("summary removed together with blocks")
	}
}
