// Package overlap removes or merges time blocks whose intervals intersect.
package overlap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
)

// Resolve applies strategy to blocks and returns a new slice sorted by start.
// The input slice is not modified.
func Resolve(blocks []models.TimeBlock, strategy models.OverlapStrategy) ([]models.TimeBlock, error) {
	if len(blocks) == 0 {
		return []models.TimeBlock{}, nil
	}

	sorted := sortByStartThenPriority(blocks)

	switch strategy {
	case models.OverlapShowBoth:
		return sorted, nil
	case models.OverlapPriority:
		return byPriority(sorted), nil
	case models.OverlapCombine:
		return combine(sorted)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStrategy, strategy)
	}
}

// sortByStartThenPriority orders by start ascending, then priority descending.
// Equal keys keep their input order.
func sortByStartThenPriority(blocks []models.TimeBlock) []models.TimeBlock {
	sorted := make([]models.TimeBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

func sortByStart(blocks []models.TimeBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start.Before(blocks[j].Start)
	})
}

// byPriority is a greedy single pass. A candidate is checked against the
// accepted blocks in order; the first overlap decides, and the accepted block
// is replaced only when the candidate's priority is strictly greater.
// Displaced blocks are never reconsidered.
func byPriority(sorted []models.TimeBlock) []models.TimeBlock {
	accepted := make([]models.TimeBlock, 0, len(sorted))

	for _, candidate := range sorted {
		overlapped := false
		for i := range accepted {
			if !candidate.Overlaps(accepted[i]) {
				continue
			}
			if candidate.Priority > accepted[i].Priority {
				accepted[i] = candidate
			}
			overlapped = true
			break
		}
		if !overlapped {
			accepted = append(accepted, candidate)
		}
	}

	sortByStart(accepted)
	return accepted
}

// combine collects runs of blocks where each block overlaps at least one
// earlier member of its run, and collapses every run longer than one.
func combine(sorted []models.TimeBlock) ([]models.TimeBlock, error) {
	result := make([]models.TimeBlock, 0, len(sorted))
	group := []models.TimeBlock{sorted[0]}

	flush := func() error {
		if len(group) == 1 {
			result = append(result, group[0])
			return nil
		}
		merged, err := Merge(group)
		if err != nil {
			return err
		}
		result = append(result, merged)
		return nil
	}

	for _, b := range sorted[1:] {
		if overlapsAny(b, group) {
			group = append(group, b)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		group = []models.TimeBlock{b}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return result, nil
}

func overlapsAny(b models.TimeBlock, group []models.TimeBlock) bool {
	for _, m := range group {
		if b.Overlaps(m) {
			return true
		}
	}
	return false
}

// Merge collapses blocks into one spanning the earliest start to the latest
// end. The highest-priority member supplies the source, the first one on a
// tie. Descriptions are joined as "source: description" in slice order.
func Merge(blocks []models.TimeBlock) (models.TimeBlock, error) {
	if len(blocks) == 0 {
		return models.TimeBlock{}, fmt.Errorf("cannot merge an empty set of blocks")
	}
	if len(blocks) == 1 {
		return blocks[0], nil
	}

	start, end := blocks[0].Start, blocks[0].End
	sources := make([]models.Source, 0, len(blocks))
	mergedFrom := make([]string, 0, len(blocks))
	descriptions := make([]string, 0, len(blocks))

	for _, b := range blocks {
		if b.Start.Before(start) {
			start = b.Start
		}
		if b.End.After(end) {
			end = b.End
		}
		sources = append(sources, b.Source)
		mergedFrom = append(mergedFrom, string(b.Source))
		descriptions = append(descriptions, fmt.Sprintf(constants.MergedDescriptionFmt, b.Source, b.Description))
	}

	source, err := models.HighestPrioritySource(sources)
	if err != nil {
		return models.TimeBlock{}, err
	}

	return models.NewTimeBlock(start, end, source,
		strings.Join(descriptions, constants.MergedDescriptionSep),
		map[string]any{constants.MetadataMergedFrom: mergedFrom})
}
