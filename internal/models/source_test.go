package models

import (
	"testing"
	"time"

	apperrors "github.com/julianstephens/tally/internal/errors"
)

func TestSourcePriority(t *testing.T) {
	tests := []struct {
		source  Source
		want    int
		wantErr bool
	}{
		{SourceWakaTime, 100, false},
		{SourceCalendar, 80, false},
		{SourceGmail, 60, false},
		{SourceGitHub, 40, false},
		{SourceCloudEvents, 40, false},
		{SourceAutoFill, 0, false},
		{Source("jira"), 0, true},
		{Source(""), 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			got, err := tt.source.Priority()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Priority() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperrors.IsUnknownSource(err) {
					t.Errorf("Priority() error = %v, want UnknownSourceError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Priority() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSourcePriorityOrdering(t *testing.T) {
	order := []Source{SourceWakaTime, SourceCalendar, SourceGmail, SourceGitHub, SourceAutoFill}
	for i := 1; i < len(order); i++ {
		hi, _ := order[i-1].Priority()
		lo, _ := order[i].Priority()
		if hi <= lo {
			t.Errorf("%s (%d) should outrank %s (%d)", order[i-1], hi, order[i], lo)
		}
	}

	gh, _ := SourceGitHub.Priority()
	ce, _ := SourceCloudEvents.Priority()
	if gh != ce {
		t.Errorf("github (%d) and cloud_events (%d) should tie", gh, ce)
	}
}

func TestFetchedSourcesExcludesAutoFill(t *testing.T) {
	for _, s := range FetchedSources() {
		if s == SourceAutoFill {
			t.Error("FetchedSources() contains auto_fill")
		}
		if !s.Valid() {
			t.Errorf("FetchedSources() contains invalid source %q", s)
		}
	}
	if len(FetchedSources()) != 5 {
		t.Errorf("FetchedSources() len = %d, want 5", len(FetchedSources()))
	}
}

func TestParseSource(t *testing.T) {
	if s, err := ParseSource("gmail"); err != nil || s != SourceGmail {
		t.Errorf("ParseSource(gmail) = %q, %v", s, err)
	}
	if _, err := ParseSource("GMAIL"); err == nil {
		t.Error("ParseSource() should be case sensitive")
	}
}

func TestHighestPrioritySource(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
		want    Source
		wantErr bool
	}{
		{
			name:    "wakatime beats calendar",
			sources: []Source{SourceCalendar, SourceWakaTime, SourceGmail},
			want:    SourceWakaTime,
		},
		{
			name:    "tie keeps first",
			sources: []Source{SourceCloudEvents, SourceGitHub},
			want:    SourceCloudEvents,
		},
		{
			name:    "unknown source",
			sources: []Source{SourceGitHub, "slack"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HighestPrioritySource(tt.sources)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HighestPrioritySource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("HighestPrioritySource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTimeBlock(t *testing.T) {
	start := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	b, err := NewTimeBlock(start, end, SourceCalendar, "standup", nil)
	if err != nil {
		t.Fatalf("NewTimeBlock() error = %v", err)
	}
	if b.Priority != PriorityCalendar {
		t.Errorf("Priority = %d, want %d", b.Priority, PriorityCalendar)
	}
	if b.Metadata == nil {
		t.Error("Metadata should never be nil")
	}
	if b.Hours() != 1.5 {
		t.Errorf("Hours() = %v, want 1.5", b.Hours())
	}

	if _, err := NewTimeBlock(start, end, "fax", "", nil); !apperrors.IsUnknownSource(err) {
		t.Errorf("NewTimeBlock() with unknown source error = %v", err)
	}
}

func TestTimeBlockOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 1, 6, h, m, 0, 0, time.UTC) }
	base := TimeBlock{Start: at(10, 0), End: at(11, 0)}

	tests := []struct {
		name  string
		other TimeBlock
		want  bool
	}{
		{"inside", TimeBlock{Start: at(10, 15), End: at(10, 45)}, true},
		{"straddles start", TimeBlock{Start: at(9, 30), End: at(10, 30)}, true},
		{"straddles end", TimeBlock{Start: at(10, 30), End: at(11, 30)}, true},
		{"touches end", TimeBlock{Start: at(11, 0), End: at(12, 0)}, false},
		{"touches start", TimeBlock{Start: at(9, 0), End: at(10, 0)}, false},
		{"disjoint", TimeBlock{Start: at(13, 0), End: at(14, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestTotalHoursAndHoursBySource(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 6, h, 0, 0, 0, time.UTC) }
	blocks := []TimeBlock{
		{Start: at(9), End: at(11), Source: SourceWakaTime},
		{Start: at(13), End: at(14), Source: SourceCalendar},
		{Start: at(15), End: at(16), Source: SourceWakaTime},
	}

	if got := TotalHours(blocks); got != 4 {
		t.Errorf("TotalHours() = %v, want 4", got)
	}
	if got := TotalHours(nil); got != 0 {
		t.Errorf("TotalHours(nil) = %v, want 0", got)
	}

	by := HoursBySource(blocks)
	if by[SourceWakaTime] != 3 || by[SourceCalendar] != 1 {
		t.Errorf("HoursBySource() = %v", by)
	}
}
