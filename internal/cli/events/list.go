package events

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/calendar"
	"github.com/julianstephens/tally/internal/cli"
)

type ListCmd struct {
	Date string `help:"Any date inside the week to list (YYYY-MM-DD or YYYY-MM-DDTHH:MM). Defaults to now."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.LoadSettings()
	if err != nil {
		return err
	}
	ww, err := calendar.FromSettings(settings)
	if err != nil {
		return err
	}
	ref, err := cli.ReferenceDate(c.Date, settings)
	if err != nil {
		return err
	}
	if ref == nil {
		now := time.Now()
		ref = &now
	}
	week := ww.Window(*ref)

	events, err := ctx.Store.FetchRawEvents(week.Start, week.End)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	total, err := ctx.Store.CountRawEvents()
	if err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}

	fmt.Printf("Raw events for week %s (%d of %d stored):\n\n", week, len(events), total)
	for _, e := range events {
		fmt.Printf("  %-25s %-12s %6.0fm  %s\n", e.Timestamp, e.Source, e.DurationMinutes, e.Description)
	}
	return nil
}
