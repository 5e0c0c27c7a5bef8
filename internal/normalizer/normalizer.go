// Package normalizer turns raw activity events into rounded, priority-tagged
// time blocks.
package normalizer

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// Stats counts what happened to the events of one batch.
type Stats struct {
	Converted           int
	MalformedTimestamp  int
	NonPositiveDuration int
	OversizedDuration   int
}

// Skipped returns the number of events dropped as non-fatal.
func (s Stats) Skipped() int {
	return s.MalformedTimestamp + s.NonPositiveDuration + s.OversizedDuration
}

// maxBlocks is the largest block count a time.Duration can hold.
const maxBlocks = math.MaxInt64 / int64(constants.BlockSize)

// RoundToHalfHour snaps minutes to a positive multiple of 30 minutes.
// Nearest rounding breaks ties to even; a result of zero is lifted to one
// block so every emitted block keeps a positive duration. Results saturate
// at the largest representable duration.
func RoundToHalfHour(minutes float64, mode models.RoundingMode) time.Duration {
	units := minutes / constants.BlockSizeMinutes

	var blocks float64
	switch mode {
	case models.RoundingNearest:
		blocks = math.RoundToEven(units)
	default:
		blocks = math.Ceil(units)
	}
	if blocks < 1 || math.IsNaN(blocks) {
		blocks = 1
	}
	if blocks > float64(maxBlocks) {
		blocks = float64(maxBlocks)
	}
	return time.Duration(blocks) * constants.BlockSize
}

// Normalize converts events into time blocks in loc. Events with a malformed
// timestamp, a non-positive duration or one longer than a week are skipped
// and counted. An unknown source aborts the whole batch.
func Normalize(events []models.RawEvent, mode models.RoundingMode, loc *time.Location) ([]models.TimeBlock, Stats, error) {
	if loc == nil {
		loc = time.Local
	}

	var stats Stats
	blocks := make([]models.TimeBlock, 0, len(events))

	for _, ev := range events {
		start, err := utils.ParseTimestamp(ev.Timestamp, loc)
		if err != nil {
			stats.MalformedTimestamp++
			logger.Debug("Skipping event", "source", ev.Source, "source_id", ev.SourceID,
				"error", fmt.Errorf("%w: %q", apperrors.ErrMalformedTimestamp, ev.Timestamp))
			continue
		}
		if !(ev.DurationMinutes > 0) {
			stats.NonPositiveDuration++
			logger.Debug("Skipping event", "source", ev.Source, "source_id", ev.SourceID,
				"error", fmt.Errorf("%w: %v", apperrors.ErrNonPositiveDuration, ev.DurationMinutes))
			continue
		}
		if ev.DurationMinutes > constants.MaxEventMinutes {
			stats.OversizedDuration++
			logger.Debug("Skipping event", "source", ev.Source, "source_id", ev.SourceID,
				"error", fmt.Errorf("%w: %v minutes", apperrors.ErrDurationTooLong, ev.DurationMinutes))
			continue
		}

		end := start.Add(RoundToHalfHour(ev.DurationMinutes, mode))
		block, err := models.NewTimeBlock(start, end, ev.Source, ev.Description, copyMetadata(ev.Metadata))
		if err != nil {
			return nil, stats, fmt.Errorf("event %s/%s: %w", ev.Source, ev.SourceID, err)
		}
		blocks = append(blocks, block)
		stats.Converted++
	}

	return blocks, stats, nil
}

func copyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
