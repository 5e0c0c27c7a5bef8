package process

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
)

// WeekCmd prints the work-week window a date falls in.
type WeekCmd struct {
	Date string `help:"Any date inside the week (YYYY-MM-DD or YYYY-MM-DDTHH:MM). Defaults to now."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	week, err := resolveWeek(ctx, c.Date)
	if err != nil {
		return err
	}

	fmt.Printf("Week start: %s (%s)\n", week.Start.Format(constants.DateTimeFormat), week.Start.Weekday())
	fmt.Printf("Week end:   %s (%s)\n", week.End.Format(constants.DateTimeFormat), week.End.Weekday())
	fmt.Printf("Length:     %.1f hours\n", week.End.Sub(week.Start).Hours())
	return nil
}
