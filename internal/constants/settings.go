package constants

const (
	// Work week settings
	SettingWorkWeekStartDay   = "work_week_start_day"
	SettingWorkWeekStartTime  = "work_week_start_time"
	SettingWorkWeekEndDay     = "work_week_end_day"
	SettingWorkWeekEndTime    = "work_week_end_time"
	SettingTargetHoursPerWeek = "target_hours_per_week"
	SettingFetchIntervalHours = "fetch_interval_hours"
	SettingAutoFillEnabled    = "auto_fill_enabled"
	SettingTimezone           = "timezone"

	// Processing settings
	SettingRoundingMode        = "rounding_mode"
	SettingGroupSameActivities = "group_same_activities"
	SettingFillUpTopicMode     = "fill_up_topic_mode"
	SettingFillUpDefaultTopic  = "fill_up_default_topic"
	SettingFillUpDistribution  = "fill_up_distribution"
	SettingOverlapHandling     = "overlap_handling"

	// Default Settings Values
	DefaultWorkWeekStartDay    = "monday"
	DefaultWorkWeekStartTime   = "18:00"
	DefaultWorkWeekEndDay      = "saturday"
	DefaultWorkWeekEndTime     = "18:00"
	DefaultTargetHoursPerWeek  = 40
	DefaultFetchIntervalHours  = 5
	DefaultAutoFillEnabled     = true
	DefaultTimezone            = "Local" // Use system local timezone by default
	DefaultRoundingMode        = "up"
	DefaultGroupSameActivities = false
	DefaultFillUpTopicMode     = "manual"
	DefaultFillUpDefaultTopic  = "General"
	DefaultFillUpDistribution  = "end_of_week"
	DefaultOverlapHandling     = "priority"

	// Bounds
	MinTargetHoursPerWeek = 1
	MaxTargetHoursPerWeek = 168
	MinFetchIntervalHours = 1
	MaxFetchIntervalHours = 24
	MaxDefaultTopicLength = 100
)
