package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/utils"
)

// RoundingMode controls how durations snap to 30-minute blocks
type RoundingMode string

const (
	RoundingUp      RoundingMode = "up"      // always round up to the next half hour
	RoundingNearest RoundingMode = "nearest" // round to the nearest half hour, ties to even
)

// OverlapStrategy controls how overlapping blocks are resolved
type OverlapStrategy string

const (
	OverlapPriority OverlapStrategy = "priority"
	OverlapShowBoth OverlapStrategy = "show_both"
	OverlapCombine  OverlapStrategy = "combine"
)

// FillUpTopicMode selects the topic used for auto-filled blocks
type FillUpTopicMode string

const (
	TopicManual  FillUpTopicMode = "manual"
	TopicAuto    FillUpTopicMode = "auto"
	TopicGeneric FillUpTopicMode = "generic"
)

// FillUpDistribution selects where auto-filled hours are placed
type FillUpDistribution string

const (
	DistributionEndOfWeek   FillUpDistribution = "end_of_week"
	DistributionDistributed FillUpDistribution = "distributed"
	DistributionEmptySlots  FillUpDistribution = "empty_slots"
)

// Settings is the immutable configuration snapshot consumed by one processing run
type Settings struct {
	WorkWeekStartDay    string             `json:"work_week_start_day"`   // e.g. "monday"
	WorkWeekStartTime   string             `json:"work_week_start_time"`  // 24-hour "HH:MM"
	WorkWeekEndDay      string             `json:"work_week_end_day"`     // e.g. "saturday"
	WorkWeekEndTime     string             `json:"work_week_end_time"`    // 24-hour "HH:MM"
	TargetHoursPerWeek  int                `json:"target_hours_per_week"` // auto-fill target
	FetchIntervalHours  int                `json:"fetch_interval_hours"`  // scheduler period
	AutoFillEnabled     bool               `json:"auto_fill_enabled"`
	Timezone            string             `json:"timezone"` // IANA name or "Local"
	RoundingMode        RoundingMode       `json:"rounding_mode"`
	GroupSameActivities bool               `json:"group_same_activities"`
	FillUpTopicMode     FillUpTopicMode    `json:"fill_up_topic_mode"`
	FillUpDefaultTopic  string             `json:"fill_up_default_topic"`
	FillUpDistribution  FillUpDistribution `json:"fill_up_distribution"`
	OverlapHandling     OverlapStrategy    `json:"overlap_handling"`
}

// DefaultSettings returns the settings a fresh store is seeded with
func DefaultSettings() Settings {
	return Settings{
		WorkWeekStartDay:    constants.DefaultWorkWeekStartDay,
		WorkWeekStartTime:   constants.DefaultWorkWeekStartTime,
		WorkWeekEndDay:      constants.DefaultWorkWeekEndDay,
		WorkWeekEndTime:     constants.DefaultWorkWeekEndTime,
		TargetHoursPerWeek:  constants.DefaultTargetHoursPerWeek,
		FetchIntervalHours:  constants.DefaultFetchIntervalHours,
		AutoFillEnabled:     constants.DefaultAutoFillEnabled,
		Timezone:            constants.DefaultTimezone,
		RoundingMode:        RoundingMode(constants.DefaultRoundingMode),
		GroupSameActivities: constants.DefaultGroupSameActivities,
		FillUpTopicMode:     FillUpTopicMode(constants.DefaultFillUpTopicMode),
		FillUpDefaultTopic:  constants.DefaultFillUpDefaultTopic,
		FillUpDistribution:  FillUpDistribution(constants.DefaultFillUpDistribution),
		OverlapHandling:     OverlapStrategy(constants.DefaultOverlapHandling),
	}
}

// Validate checks every field and returns all problems joined into one error
// wrapping ErrInvalidSettings.
func (s Settings) Validate() error {
	var problems []string

	if _, err := utils.ParseWeekday(s.WorkWeekStartDay); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", constants.SettingWorkWeekStartDay, err))
	}
	if _, err := utils.ParseWeekday(s.WorkWeekEndDay); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", constants.SettingWorkWeekEndDay, err))
	}
	if !utils.ValidateTimeFormat(s.WorkWeekStartTime) {
		problems = append(problems, fmt.Sprintf("%s: %q is not HH:MM", constants.SettingWorkWeekStartTime, s.WorkWeekStartTime))
	}
	if !utils.ValidateTimeFormat(s.WorkWeekEndTime) {
		problems = append(problems, fmt.Sprintf("%s: %q is not HH:MM", constants.SettingWorkWeekEndTime, s.WorkWeekEndTime))
	}
	if s.TargetHoursPerWeek < constants.MinTargetHoursPerWeek || s.TargetHoursPerWeek > constants.MaxTargetHoursPerWeek {
		problems = append(problems, fmt.Sprintf("%s: must be between %d and %d", constants.SettingTargetHoursPerWeek,
			constants.MinTargetHoursPerWeek, constants.MaxTargetHoursPerWeek))
	}
	if s.FetchIntervalHours < constants.MinFetchIntervalHours || s.FetchIntervalHours > constants.MaxFetchIntervalHours {
		problems = append(problems, fmt.Sprintf("%s: must be between %d and %d", constants.SettingFetchIntervalHours,
			constants.MinFetchIntervalHours, constants.MaxFetchIntervalHours))
	}
	if !utils.ValidateTimezone(s.Timezone) {
		problems = append(problems, fmt.Sprintf("%s: unknown timezone %q", constants.SettingTimezone, s.Timezone))
	}
	if _, err := ParseRoundingMode(string(s.RoundingMode)); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := ParseOverlapStrategy(string(s.OverlapHandling)); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := ParseFillUpTopicMode(string(s.FillUpTopicMode)); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := ParseFillUpDistribution(string(s.FillUpDistribution)); err != nil {
		problems = append(problems, err.Error())
	}
	if len(s.FillUpDefaultTopic) > constants.MaxDefaultTopicLength {
		problems = append(problems, fmt.Sprintf("%s: longer than %d characters", constants.SettingFillUpDefaultTopic, constants.MaxDefaultTopicLength))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

func ParseRoundingMode(v string) (RoundingMode, error) {
	switch m := RoundingMode(strings.ToLower(strings.TrimSpace(v))); m {
	case RoundingUp, RoundingNearest:
		return m, nil
	}
	return "", fmt.Errorf("%s: unsupported value %q (want up or nearest)", constants.SettingRoundingMode, v)
}

func ParseOverlapStrategy(v string) (OverlapStrategy, error) {
	switch s := OverlapStrategy(strings.ToLower(strings.TrimSpace(v))); s {
	case OverlapPriority, OverlapShowBoth, OverlapCombine:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownStrategy, v)
}

func ParseFillUpTopicMode(v string) (FillUpTopicMode, error) {
	switch m := FillUpTopicMode(strings.ToLower(strings.TrimSpace(v))); m {
	case TopicManual, TopicAuto, TopicGeneric:
		return m, nil
	}
	return "", fmt.Errorf("%s: unsupported value %q (want manual, auto or generic)", constants.SettingFillUpTopicMode, v)
}

func ParseFillUpDistribution(v string) (FillUpDistribution, error) {
	switch d := FillUpDistribution(strings.ToLower(strings.TrimSpace(v))); d {
	case DistributionEndOfWeek, DistributionDistributed, DistributionEmptySlots:
		return d, nil
	}
	return "", fmt.Errorf("%s: unsupported value %q (want end_of_week, distributed or empty_slots)", constants.SettingFillUpDistribution, v)
}
