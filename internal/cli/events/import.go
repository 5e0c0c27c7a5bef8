package events

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// ImportCmd loads raw events from a JSON array, the same shape fetchers produce.
type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON file holding an array of raw events."`
}

type importStats struct {
	added      int
	duplicates int
	rejected   int
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	var events []models.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.File, err)
	}

	settings, err := ctx.LoadSettings()
	if err != nil {
		return err
	}

	stats, err := importEvents(ctx, events, settings)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Imported %d event(s) from %s\n", stats.added, c.File)
	if stats.duplicates > 0 {
		fmt.Printf("  %d already stored\n", stats.duplicates)
	}
	if stats.rejected > 0 {
		fmt.Printf("  %d rejected (see log for details)\n", stats.rejected)
	}
	return nil
}

func importEvents(ctx *cli.Context, events []models.RawEvent, settings models.Settings) (importStats, error) {
	var stats importStats
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return stats, err
	}

	for i, e := range events {
		if e.SourceID == "" {
			logger.Warn("Rejecting event without source_id", "index", i)
			stats.rejected++
			continue
		}
		if _, err := e.Source.Priority(); err != nil {
			logger.Warn("Rejecting event", "index", i, "source_id", e.SourceID, "error", err)
			stats.rejected++
			continue
		}
		occurredAt, err := utils.ParseTimestamp(e.Timestamp, loc)
		if err != nil {
			logger.Warn("Rejecting event with malformed timestamp", "index", i, "source_id", e.SourceID, "timestamp", e.Timestamp)
			stats.rejected++
			continue
		}

		added, err := ctx.Store.AddRawEvent(e, occurredAt)
		if err != nil {
			return stats, fmt.Errorf("failed to store event %s/%s: %w", e.Source, e.SourceID, err)
		}
		if added {
			stats.added++
		} else {
			stats.duplicates++
		}
	}
	return stats, nil
}
