// Package grouper merges blocks of the same activity on the same day.
package grouper

import (
	"sort"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

type key struct {
	date        string
	source      models.Source
	description string
}

// Group merges blocks that share the calendar date of their start (in the
// block's own location), source and description. A merged block starts at
// the earliest member start and lasts the sum of member durations. Member
// metadata is unioned with later members overwriting earlier keys.
// Singletons pass through unchanged. The result is sorted by start.
func Group(blocks []models.TimeBlock) []models.TimeBlock {
	var order []key
	groups := make(map[key][]models.TimeBlock)

	for _, b := range blocks {
		k := key{
			date:        b.Start.Format(constants.DateFormat),
			source:      b.Source,
			description: b.Description,
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], b)
	}

	result := make([]models.TimeBlock, 0, len(order))
	for _, k := range order {
		members := groups[k]
		if len(members) == 1 {
			result = append(result, members[0])
			continue
		}
		result = append(result, merge(members))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result
}

func merge(members []models.TimeBlock) models.TimeBlock {
	first := members[0]
	start := first.Start
	var total time.Duration
	metadata := make(map[string]any)

	for _, m := range members {
		if m.Start.Before(start) {
			start = m.Start
		}
		total += m.Duration()
		for k, v := range m.Metadata {
			metadata[k] = v
		}
	}

	return models.TimeBlock{
		Start:       start,
		End:         start.Add(total),
		Source:      first.Source,
		Description: first.Description,
		Priority:    first.Priority,
		Metadata:    metadata,
	}
}
