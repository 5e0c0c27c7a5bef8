// Package calendar computes the configurable work-week window that a
// processing run aggregates over.
package calendar

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// Window is the closed interval [Start, End] of one work week.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the calendar dates in [Start, End), one per day, each at
// Start's time of day.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (w Window) String() string {
	return fmt.Sprintf("%s → %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// WorkWeek holds the parsed week boundaries from a settings snapshot.
type WorkWeek struct {
	StartDay    time.Weekday
	StartHour   int
	StartMinute int
	EndDay      time.Weekday
	EndHour     int
	EndMinute   int
	Location    *time.Location
}

// FromSettings parses the work-week fields of s.
func FromSettings(s models.Settings) (WorkWeek, error) {
	var ww WorkWeek
	var err error

	if ww.StartDay, err = utils.ParseWeekday(s.WorkWeekStartDay); err != nil {
		return WorkWeek{}, fmt.Errorf("work week start: %w", err)
	}
	if ww.EndDay, err = utils.ParseWeekday(s.WorkWeekEndDay); err != nil {
		return WorkWeek{}, fmt.Errorf("work week end: %w", err)
	}
	if ww.StartHour, ww.StartMinute, err = utils.ParseClock(s.WorkWeekStartTime); err != nil {
		return WorkWeek{}, fmt.Errorf("work week start: %w", err)
	}
	if ww.EndHour, ww.EndMinute, err = utils.ParseClock(s.WorkWeekEndTime); err != nil {
		return WorkWeek{}, fmt.Errorf("work week end: %w", err)
	}
	if ww.Location, err = utils.LoadLocation(s.Timezone); err != nil {
		return WorkWeek{}, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return ww, nil
}

// Window returns the work week containing ref. ref is converted to the
// week's location first so day boundaries follow local wall time.
func (ww WorkWeek) Window(ref time.Time) Window {
	if ww.Location != nil {
		ref = ref.In(ww.Location)
	}
	start := WeekStart(ref, ww.StartDay, ww.StartHour, ww.StartMinute)
	return Window{
		Start: start,
		End:   WeekEnd(start, ww.EndDay, ww.EndHour, ww.EndMinute),
	}
}

// Previous returns the week before the one containing ref.
func (ww WorkWeek) Previous(ref time.Time) Window {
	return ww.Window(ww.Window(ref).Start.Add(-time.Minute))
}

// WeekStart returns the most recent startDay at hour:minute at or before ref,
// in ref's location. When ref is on startDay but earlier than the start time
// the week began seven days before.
func WeekStart(ref time.Time, startDay time.Weekday, hour, minute int) time.Time {
	daysBack := (int(ref.Weekday()) - int(startDay) + 7) % 7
	if daysBack == 0 && ref.Before(utils.AtClock(ref, hour, minute)) {
		daysBack = 7
	}
	return utils.AtClock(ref.AddDate(0, 0, -daysBack), hour, minute)
}

// WeekEnd walks forward from weekStart to endDay at hour:minute. An endDay
// equal to weekStart's weekday lands in the following cycle.
func WeekEnd(weekStart time.Time, endDay time.Weekday, hour, minute int) time.Time {
	daysAhead := (int(endDay) - int(weekStart.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	return utils.AtClock(weekStart.AddDate(0, 0, daysAhead), hour, minute)
}
