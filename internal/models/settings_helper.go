package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/tally/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Unknown keys are ignored so older databases keep loading.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingWorkWeekStartDay:
			settings.WorkWeekStartDay = value
		case constants.SettingWorkWeekStartTime:
			settings.WorkWeekStartTime = value
		case constants.SettingWorkWeekEndDay:
			settings.WorkWeekEndDay = value
		case constants.SettingWorkWeekEndTime:
			settings.WorkWeekEndTime = value
		case constants.SettingTargetHoursPerWeek:
			if _, err := fmt.Sscanf(value, "%d", &settings.TargetHoursPerWeek); err != nil {
				return Settings{}, fmt.Errorf("parsing target_hours_per_week: %w", err)
			}
		case constants.SettingFetchIntervalHours:
			if _, err := fmt.Sscanf(value, "%d", &settings.FetchIntervalHours); err != nil {
				return Settings{}, fmt.Errorf("parsing fetch_interval_hours: %w", err)
			}
		case constants.SettingAutoFillEnabled:
			settings.AutoFillEnabled = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingRoundingMode:
			settings.RoundingMode = RoundingMode(value)
		case constants.SettingGroupSameActivities:
			settings.GroupSameActivities = value == "true"
		case constants.SettingFillUpTopicMode:
			settings.FillUpTopicMode = FillUpTopicMode(value)
		case constants.SettingFillUpDefaultTopic:
			settings.FillUpDefaultTopic = value
		case constants.SettingFillUpDistribution:
			settings.FillUpDistribution = FillUpDistribution(value)
		case constants.SettingOverlapHandling:
			settings.OverlapHandling = OverlapStrategy(value)
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingWorkWeekStartDay:    settings.WorkWeekStartDay,
		constants.SettingWorkWeekStartTime:   settings.WorkWeekStartTime,
		constants.SettingWorkWeekEndDay:      settings.WorkWeekEndDay,
		constants.SettingWorkWeekEndTime:     settings.WorkWeekEndTime,
		constants.SettingTargetHoursPerWeek:  strconv.Itoa(settings.TargetHoursPerWeek),
		constants.SettingFetchIntervalHours:  strconv.Itoa(settings.FetchIntervalHours),
		constants.SettingAutoFillEnabled:     fmt.Sprintf("%v", settings.AutoFillEnabled),
		constants.SettingTimezone:            settings.Timezone,
		constants.SettingRoundingMode:        string(settings.RoundingMode),
		constants.SettingGroupSameActivities: fmt.Sprintf("%v", settings.GroupSameActivities),
		constants.SettingFillUpTopicMode:     string(settings.FillUpTopicMode),
		constants.SettingFillUpDefaultTopic:  settings.FillUpDefaultTopic,
		constants.SettingFillUpDistribution:  string(settings.FillUpDistribution),
		constants.SettingOverlapHandling:     string(settings.OverlapHandling),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// Booleans are left alone: false is a legitimate stored value.
func ApplyDefaultSettings(settings *Settings) {
	defaults := DefaultSettings()

	if settings.WorkWeekStartDay == "" {
		settings.WorkWeekStartDay = defaults.WorkWeekStartDay
	}
	if settings.WorkWeekStartTime == "" {
		settings.WorkWeekStartTime = defaults.WorkWeekStartTime
	}
	if settings.WorkWeekEndDay == "" {
		settings.WorkWeekEndDay = defaults.WorkWeekEndDay
	}
	if settings.WorkWeekEndTime == "" {
		settings.WorkWeekEndTime = defaults.WorkWeekEndTime
	}
	if settings.TargetHoursPerWeek == 0 {
		settings.TargetHoursPerWeek = defaults.TargetHoursPerWeek
	}
	if settings.FetchIntervalHours == 0 {
		settings.FetchIntervalHours = defaults.FetchIntervalHours
	}
	if settings.Timezone == "" {
		settings.Timezone = defaults.Timezone
	}
	if settings.RoundingMode == "" {
		settings.RoundingMode = defaults.RoundingMode
	}
	if settings.FillUpTopicMode == "" {
		settings.FillUpTopicMode = defaults.FillUpTopicMode
	}
	if settings.FillUpDefaultTopic == "" {
		settings.FillUpDefaultTopic = defaults.FillUpDefaultTopic
	}
	if settings.FillUpDistribution == "" {
		settings.FillUpDistribution = defaults.FillUpDistribution
	}
	if settings.OverlapHandling == "" {
		settings.OverlapHandling = defaults.OverlapHandling
	}
}
