package settings

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	WorkWeekStartDay   *string `help:"Weekday the work week starts on, e.g. monday."`
	WorkWeekStartTime  *string `help:"Time the work week starts (HH:MM)."`
	WorkWeekEndDay     *string `help:"Weekday the work week ends on, e.g. saturday."`
	WorkWeekEndTime    *string `help:"Time the work week ends (HH:MM)."`
	TargetHoursPerWeek *int    `help:"Hours auto-fill tops a week up to (1-168)."`
	FetchIntervalHours *int    `help:"Hours between scheduled fetch runs (1-24)."`
	AutoFillEnabled    *bool   `help:"Enable or disable auto-fill."`
	Timezone           *string `help:"IANA timezone name, or Local."`

	RoundingMode        *string `help:"Rounding of event durations: up or nearest."`
	GroupSameActivities *bool   `help:"Merge adjacent blocks with the same source and description."`
	FillUpTopicMode     *string `help:"Topic of auto-filled blocks: manual, auto or generic."`
	FillUpDefaultTopic  *string `help:"Topic used by manual and generic fill-up."`
	FillUpDistribution  *string `help:"Placement of filled hours: end_of_week, distributed or empty_slots."`
	OverlapHandling     *string `help:"Overlap strategy: priority, show_both or combine."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	updated := c.apply(&settings)
	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	fmt.Println("A running 'tally serve' picks up schedule changes after a restart.")
	return nil
}

// apply copies every flag that was given onto s and reports whether any was.
func (c *SettingsCmd) apply(s *models.Settings) bool {
	updated := false
	setString := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
			updated = true
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}

	setString(&s.WorkWeekStartDay, c.WorkWeekStartDay)
	setString(&s.WorkWeekStartTime, c.WorkWeekStartTime)
	setString(&s.WorkWeekEndDay, c.WorkWeekEndDay)
	setString(&s.WorkWeekEndTime, c.WorkWeekEndTime)
	setInt(&s.TargetHoursPerWeek, c.TargetHoursPerWeek)
	setInt(&s.FetchIntervalHours, c.FetchIntervalHours)
	setBool(&s.AutoFillEnabled, c.AutoFillEnabled)
	setString(&s.Timezone, c.Timezone)
	setBool(&s.GroupSameActivities, c.GroupSameActivities)
	setString(&s.FillUpDefaultTopic, c.FillUpDefaultTopic)

	var rounding, topicMode, distribution, overlap string
	setString(&rounding, c.RoundingMode)
	setString(&topicMode, c.FillUpTopicMode)
	setString(&distribution, c.FillUpDistribution)
	setString(&overlap, c.OverlapHandling)
	if rounding != "" {
		s.RoundingMode = models.RoundingMode(rounding)
	}
	if topicMode != "" {
		s.FillUpTopicMode = models.FillUpTopicMode(topicMode)
	}
	if distribution != "" {
		s.FillUpDistribution = models.FillUpDistribution(distribution)
	}
	if overlap != "" {
		s.OverlapHandling = models.OverlapStrategy(overlap)
	}

	return updated
}

func printSettings(s models.Settings) {
	fmt.Println("Work Week:")
	fmt.Printf("  Start:                 %s %s\n", s.WorkWeekStartDay, s.WorkWeekStartTime)
	fmt.Printf("  End:                   %s %s\n", s.WorkWeekEndDay, s.WorkWeekEndTime)
	fmt.Printf("  Timezone:              %s\n", s.Timezone)
	fmt.Printf("  Target Hours:          %d\n", s.TargetHoursPerWeek)
	fmt.Printf("  Fetch Interval:        %dh\n", s.FetchIntervalHours)
	fmt.Println("\nProcessing:")
	fmt.Printf("  Rounding Mode:         %s\n", s.RoundingMode)
	fmt.Printf("  Overlap Handling:      %s\n", s.OverlapHandling)
	fmt.Printf("  Group Same Activities: %v\n", s.GroupSameActivities)
	fmt.Println("\nAuto-fill:")
	fmt.Printf("  Enabled:               %v\n", s.AutoFillEnabled)
	fmt.Printf("  Topic Mode:            %s\n", s.FillUpTopicMode)
	fmt.Printf("  Default Topic:         %s\n", s.FillUpDefaultTopic)
	fmt.Printf("  Distribution:          %s\n", s.FillUpDistribution)
}
