package attendance

import (
	"fmt"
	"time"
)

// IsWorkDay reports whether the date is a scheduled working day, holidays
// excluded.
func IsWorkDay(schedule Schedule, date time.Time, holidays []Holiday) bool {
	weekday := int(date.Weekday())
	scheduled := false
	for _, d := range schedule.WorkDays {
		if d == weekday {
			scheduled = true
			break
		}
	}
	if !scheduled {
		return false
	}
	for _, h := range holidays {
		if sameDay(h.Date, date) {
			return false
		}
	}
	return true
}

// LateBy returns the minutes past the scheduled start plus grace, zero when
// the check-in is on time.
func LateBy(schedule Schedule, checkIn time.Time) (int, error) {
	start, err := atClock(checkIn, schedule.StartTime)
	if err != nil {
		return 0, err
	}
	deadline := start.Add(time.Duration(schedule.GraceMinutes) * time.Minute)
	if !checkIn.After(deadline) {
		return 0, nil
	}
	return int(checkIn.Sub(start).Minutes()), nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
