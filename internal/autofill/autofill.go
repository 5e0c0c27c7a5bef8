// Package autofill synthesizes blocks that bring a week up to its target hours.
package autofill

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/calendar"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// Fill appends auto_fill blocks to blocks when the week is short of
// s.TargetHoursPerWeek and returns the number of hours added. Nothing is
// added when auto-fill is disabled or the target is already met.
func Fill(blocks []models.TimeBlock, week calendar.Window, s models.Settings) ([]models.TimeBlock, float64, error) {
	if !s.AutoFillEnabled {
		return blocks, 0, nil
	}

	current := models.TotalHours(blocks)
	target := float64(s.TargetHoursPerWeek)
	if current >= target {
		return blocks, 0, nil
	}

	hoursToFill := target - current
	topic := Topic(blocks, s)

	fill, err := fillBlocks(hoursToFill, week, topic, s.FillUpDistribution)
	if err != nil {
		return nil, 0, err
	}

	logger.Debug("Auto-filling week", "current_hours", current, "target_hours", target,
		"hours_to_fill", hoursToFill, "topic", topic, "distribution", s.FillUpDistribution, "blocks", len(fill))

	out := make([]models.TimeBlock, 0, len(blocks)+len(fill))
	out = append(out, blocks...)
	out = append(out, fill...)
	return out, hoursToFill, nil
}

// Topic picks the label for fill blocks. Auto mode uses the description with
// the most accumulated time, the first seen winning a tie, and falls back to
// the default topic when there are no blocks. Generic behaves like manual.
func Topic(blocks []models.TimeBlock, s models.Settings) string {
	if s.FillUpTopicMode != models.TopicAuto || len(blocks) == 0 {
		return s.FillUpDefaultTopic
	}

	var order []string
	totals := make(map[string]time.Duration)
	for _, b := range blocks {
		if _, ok := totals[b.Description]; !ok {
			order = append(order, b.Description)
		}
		totals[b.Description] += b.Duration()
	}

	best := order[0]
	for _, desc := range order[1:] {
		if totals[desc] > totals[best] {
			best = desc
		}
	}
	return best
}

func fillBlocks(hours float64, week calendar.Window, topic string, dist models.FillUpDistribution) ([]models.TimeBlock, error) {
	description := constants.FillTopicPrefix + topic

	switch dist {
	case models.DistributionDistributed:
		days := week.Days()
		if len(days) == 0 {
			return nil, fmt.Errorf("cannot distribute %.2fh over an empty week %s", hours, week)
		}
		perDay := hours / float64(len(days))
		blocks := make([]models.TimeBlock, 0, len(days))
		for _, d := range days {
			start := utils.AtClock(d, constants.DistributedFillHour, 0)
			b, err := newFillBlock(start, perDay, description, map[string]any{
				constants.MetadataAutoGenerated: true,
				constants.MetadataFillHours:     perDay,
				constants.MetadataDistributed:   true,
			})
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
		}
		return blocks, nil

	case models.DistributionEndOfWeek, models.DistributionEmptySlots:
		// empty_slots has no gap search yet and shares the end-of-week placement.
		start := utils.AtClock(week.End.Add(-constants.EndOfWeekFillOffset), constants.EndOfWeekFillHour, 0)
		b, err := newFillBlock(start, hours, description, map[string]any{
			constants.MetadataAutoGenerated: true,
			constants.MetadataFillHours:     hours,
		})
		if err != nil {
			return nil, err
		}
		return []models.TimeBlock{b}, nil

	default:
		return nil, fmt.Errorf("unsupported fill-up distribution %q", dist)
	}
}

func newFillBlock(start time.Time, hours float64, description string, metadata map[string]any) (models.TimeBlock, error) {
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return models.NewTimeBlock(start, end, models.SourceAutoFill, description, metadata)
}
