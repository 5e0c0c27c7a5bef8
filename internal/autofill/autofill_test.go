package autofill

import (
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/calendar"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

var week = calendar.Window{
	Start: time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC),
}

func hoursBlock(source models.Source, desc string, start time.Time, hours float64) models.TimeBlock {
	p, _ := source.Priority()
	return models.TimeBlock{
		Start:       start,
		End:         start.Add(time.Duration(hours * float64(time.Hour))),
		Source:      source,
		Description: desc,
		Priority:    p,
	}
}

func TestFillNoOp(t *testing.T) {
	full := []models.TimeBlock{hoursBlock(models.SourceWakaTime, "tally", week.Start, 40)}
	over := []models.TimeBlock{hoursBlock(models.SourceWakaTime, "tally", week.Start, 45)}

	disabled := models.DefaultSettings()
	disabled.AutoFillEnabled = false

	tests := []struct {
		name     string
		blocks   []models.TimeBlock
		settings models.Settings
	}{
		{"at target", full, models.DefaultSettings()},
		{"over target", over, models.DefaultSettings()},
		{"disabled", nil, disabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, filled, err := Fill(tt.blocks, week, tt.settings)
			if err != nil {
				t.Fatalf("Fill() error = %v", err)
			}
			if filled != 0 {
				t.Errorf("Fill() filled = %v, want 0", filled)
			}
			if len(got) != len(tt.blocks) {
				t.Errorf("Fill() returned %d blocks, want %d", len(got), len(tt.blocks))
			}
		})
	}
}

func TestFillEndOfWeek(t *testing.T) {
	s := models.DefaultSettings()
	blocks := []models.TimeBlock{hoursBlock(models.SourceWakaTime, "tally", time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC), 1.5)}

	got, filled, err := Fill(blocks, week, s)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if filled != 38.5 {
		t.Errorf("filled = %v, want 38.5", filled)
	}
	if len(got) != 2 {
		t.Fatalf("Fill() returned %d blocks, want 2", len(got))
	}

	fill := got[1]
	wantStart := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if !fill.Start.Equal(wantStart) {
		t.Errorf("fill start = %v, want %v", fill.Start, wantStart)
	}
	if fill.Hours() != 38.5 {
		t.Errorf("fill hours = %v, want 38.5", fill.Hours())
	}
	if fill.Source != models.SourceAutoFill || fill.Priority != 0 {
		t.Errorf("fill source = %s (%d)", fill.Source, fill.Priority)
	}
	if fill.Description != "Development: General" {
		t.Errorf("fill description = %q", fill.Description)
	}
	if fill.Metadata[constants.MetadataAutoGenerated] != true || fill.Metadata[constants.MetadataFillHours] != 38.5 {
		t.Errorf("fill metadata = %v", fill.Metadata)
	}
	if models.TotalHours(got) != 40 {
		t.Errorf("total after fill = %v, want 40", models.TotalHours(got))
	}
}

func TestFillEmptySlotsFallsBackToEndOfWeek(t *testing.T) {
	s := models.DefaultSettings()
	s.FillUpDistribution = models.DistributionEmptySlots

	got, filled, err := Fill(nil, week, s)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if filled != 40 || len(got) != 1 {
		t.Fatalf("Fill() = %d blocks, %vh", len(got), filled)
	}
	if !got[0].Start.Equal(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("fill start = %v", got[0].Start)
	}
}

func TestFillDistributed(t *testing.T) {
	s := models.DefaultSettings()
	s.TargetHoursPerWeek = 5
	s.FillUpDistribution = models.DistributionDistributed

	got, filled, err := Fill(nil, week, s)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if filled != 5 {
		t.Errorf("filled = %v, want 5", filled)
	}
	if len(got) != 5 {
		t.Fatalf("Fill() returned %d blocks, want 5", len(got))
	}
	for i, b := range got {
		if b.Hours() != 1.0 {
			t.Errorf("block %d hours = %v, want 1.0", i, b.Hours())
		}
		wantStart := time.Date(2026, 1, 5+i, 17, 0, 0, 0, time.UTC)
		if !b.Start.Equal(wantStart) {
			t.Errorf("block %d start = %v, want %v", i, b.Start, wantStart)
		}
		if b.Metadata[constants.MetadataDistributed] != true {
			t.Errorf("block %d metadata = %v", i, b.Metadata)
		}
	}
}

func TestTopic(t *testing.T) {
	day := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)
	blocks := []models.TimeBlock{
		hoursBlock(models.SourceCalendar, "meetings", day, 1),
		hoursBlock(models.SourceWakaTime, "tally", day.Add(2*time.Hour), 1),
		hoursBlock(models.SourceWakaTime, "tally", day.Add(4*time.Hour), 1.5),
		hoursBlock(models.SourceGmail, "meetings", day.Add(7*time.Hour), 1),
		hoursBlock(models.SourceGitHub, "review", day.Add(9*time.Hour), 2.5),
	}

	tests := []struct {
		name   string
		mode   models.FillUpTopicMode
		blocks []models.TimeBlock
		want   string
	}{
		{"manual", models.TopicManual, blocks, "Research"},
		{"generic matches manual", models.TopicGeneric, blocks, "Research"},
		{"auto with no blocks", models.TopicAuto, nil, "Research"},
		// tally and review both total 2.5h; tally was seen first.
		{"auto tie keeps first seen", models.TopicAuto, blocks, "tally"},
		{"auto clear winner", models.TopicAuto, blocks[:4], "tally"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSettings()
			s.FillUpTopicMode = tt.mode
			s.FillUpDefaultTopic = "Research"
			if got := Topic(tt.blocks, s); got != tt.want {
				t.Errorf("Topic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFillUsesAutoTopic(t *testing.T) {
	s := models.DefaultSettings()
	s.FillUpTopicMode = models.TopicAuto
	blocks := []models.TimeBlock{hoursBlock(models.SourceWakaTime, "tally", week.Start.Add(time.Hour), 2)}

	got, _, err := Fill(blocks, week, s)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if got[len(got)-1].Description != "Development: tally" {
		t.Errorf("fill description = %q", got[len(got)-1].Description)
	}
}
