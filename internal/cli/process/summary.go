package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/storage"
)

type SummaryCmd struct {
	Date string `help:"Any date inside the week (YYYY-MM-DD or YYYY-MM-DDTHH:MM). Defaults to now."`
	List int    `help:"List the most recent N summaries instead of one week." default:"0"`
	JSON bool   `help:"Print as JSON." name:"json"`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	if c.List > 0 {
		return c.list(ctx)
	}

	week, err := resolveWeek(ctx, c.Date)
	if err != nil {
		return err
	}
	summary, err := ctx.Store.GetWeekSummary(week.Start)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("No summary for week starting %s. Run 'tally process' first.\n", week.Start.Format(constants.DateTimeFormat))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get summary: %w", err)
	}

	if c.JSON {
		return writeJSON(summary)
	}

	fmt.Printf("Week %s\n", week)
	fmt.Printf("  Total hours:  %.1f\n", summary.TotalHours)
	if filled, ok := summary.Metadata[constants.SummaryKeyHoursFilled]; ok {
		fmt.Printf("  Hours filled: %v\n", filled)
	}
	if bySource, ok := summary.Metadata[constants.SummaryKeyHoursBySource].(map[string]any); ok && len(bySource) > 0 {
		fmt.Println("  By source:")
		sources := make([]string, 0, len(bySource))
		for src := range bySource {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		for _, src := range sources {
			fmt.Printf("    %-12s %v\n", src, bySource[src])
		}
	}
	fmt.Printf("  Updated:      %s\n", summary.UpdatedAt.Local().Format(constants.LegacyTimestampFormat))
	return nil
}

func (c *SummaryCmd) list(ctx *cli.Context) error {
	summaries, err := ctx.Store.GetWeekSummaries(c.List)
	if err != nil {
		return fmt.Errorf("failed to list summaries: %w", err)
	}
	if c.JSON {
		return writeJSON(summaries)
	}
	if len(summaries) == 0 {
		fmt.Println("No summaries stored.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("  %s  %6.1fh\n", s.WeekStart.Local().Format(constants.DateTimeFormat), s.TotalHours)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
