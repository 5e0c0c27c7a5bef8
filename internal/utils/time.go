package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/constants"
)

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ParseClock parses a 24-hour HH:MM string into hour and minute.
func ParseClock(timeStr string) (int, int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time format %q, expected HH:MM", timeStr)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	h, m, err := ParseClock(timeStr)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(name string) (time.Weekday, error) {
	if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return wd, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %q", name)
}

// WeekdayName is the lowercase full name stored in settings
func WeekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// AtClock returns t's calendar date at hour:minute with seconds cleared.
func AtClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// ParseReferenceDate parses a CLI date (YYYY-MM-DD) or date-time (YYYY-MM-DDTHH:MM)
// in loc. A bare date means noon, which keeps it clear of week boundaries set on the hour.
func ParseReferenceDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(constants.DateTimeFormat, value, loc); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(constants.DateFormat, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM-DDTHH:MM", value)
	}
	return AtClock(d, 12, 0), nil
}

// ParseTimestamp parses an event timestamp. RFC 3339 values keep their offset
// and are converted to loc; values without an offset, ISO or space separated,
// are read as wall time in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !strings.Contains(value, "T") {
		return time.ParseInLocation(constants.LegacyTimestampFormat, value, loc)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{constants.LocalTimestampFormat, constants.DateTimeFormat} {
		if local, lerr := time.ParseInLocation(layout, value, loc); lerr == nil {
			return local, nil
		}
	}
	return time.Time{}, err
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
