package process

import (
	"fmt"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

type BlocksCmd struct {
	Date   string `help:"Any date inside the week (YYYY-MM-DD or YYYY-MM-DDTHH:MM). Defaults to now."`
	Delete bool   `help:"Delete the stored blocks of the week instead of listing them."`
}

func (c *BlocksCmd) Run(ctx *cli.Context) error {
	week, err := resolveWeek(ctx, c.Date)
	if err != nil {
		return err
	}

	if c.Delete {
		ctx.PerformAutomaticBackup()
		n, err := ctx.Store.DeleteTimeBlocksForWeek(week.Start)
		if err != nil {
			return fmt.Errorf("failed to delete blocks: %w", err)
		}
		fmt.Printf("✓ Deleted %d block(s) for week starting %s\n", n, week.Start.Format(constants.DateTimeFormat))
		return nil
	}

	blocks, err := ctx.Store.GetTimeBlocksForWeek(week.Start)
	if err != nil {
		return fmt.Errorf("failed to get blocks: %w", err)
	}
	if len(blocks) == 0 {
		fmt.Printf("No blocks stored for week starting %s. Run 'tally process' first.\n", week.Start.Format(constants.DateTimeFormat))
		return nil
	}

	loc := week.Start.Location()
	fmt.Printf("Blocks for week %s:\n\n", week)
	for _, b := range blocks {
		start, end := b.Start.In(loc), b.End.In(loc)
		fmt.Printf("  %s %s-%s  %5.1fh  %-12s %s\n",
			start.Format("Mon 01-02"),
			start.Format(constants.TimeFormat),
			end.Format(constants.TimeFormat),
			b.Hours(), b.Source, b.Description)
	}
	fmt.Printf("\nTotal: %.1f hours in %d block(s)\n", models.TotalHours(blocks), len(blocks))
	return nil
}
