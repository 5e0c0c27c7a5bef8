package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/calendar"
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/pipeline"
)

type ProcessCmd struct {
	Date    string `help:"Any date inside the week to process (YYYY-MM-DD or YYYY-MM-DDTHH:MM). Defaults to now."`
	Replace bool   `help:"Replace the blocks already stored for the week instead of appending."`
}

func (c *ProcessCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.LoadSettings()
	if err != nil {
		return err
	}
	ref, err := cli.ReferenceDate(c.Date, settings)
	if err != nil {
		return err
	}

	if c.Replace {
		ctx.PerformAutomaticBackup()
	}

	result := pipeline.New(ctx.Store).Process(context.Background(), pipeline.Request{
		Settings:  settings,
		Reference: ref,
		Replace:   c.Replace,
	})
	printResult(result)
	if !result.Success {
		return errors.New(result.Error)
	}
	return nil
}

func printResult(r models.ProcessingResult) {
	if r.Success {
		fmt.Println("✓ Week processed")
	} else {
		fmt.Println("❌ Week processing failed")
	}
	if !r.WeekStart.IsZero() {
		fmt.Printf("  Week:         %s\n", calendar.Window{Start: r.WeekStart, End: r.WeekEnd})
	}
	fmt.Printf("  Raw events:   %d\n", r.RawEventsCount)
	fmt.Printf("  Blocks:       %d\n", r.TimeBlocksCreated)
	fmt.Printf("  Total hours:  %.1f\n", r.TotalHours)
	fmt.Printf("  Hours filled: %.1f\n", r.HoursFilled)
}

// resolveWeek returns the work week containing the --date value, or now.
func resolveWeek(ctx *cli.Context, date string) (calendar.Window, error) {
	settings, err := ctx.LoadSettings()
	if err != nil {
		return calendar.Window{}, err
	}
	ww, err := calendar.FromSettings(settings)
	if err != nil {
		return calendar.Window{}, err
	}
	ref, err := cli.ReferenceDate(date, settings)
	if err != nil {
		return calendar.Window{}, err
	}
	if ref == nil {
		now := time.Now().In(ww.Location)
		ref = &now
	}
	return ww.Window(*ref), nil
}
