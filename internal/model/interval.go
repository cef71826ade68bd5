package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("model: invalid recurrence interval")

type Interval string

const (
	IntervalNone        Interval = "none"
	IntervalDaily       Interval = "daily"
	IntervalWeekly      Interval = "weekly"
	IntervalFortnightly Interval = "fortnightly"
	IntervalMonthly     Interval = "monthly"
	IntervalYearly      Interval = "yearly"
)

func (i Interval) IsValid() bool {
	switch i {
	case IntervalNone, IntervalDaily, IntervalWeekly, IntervalFortnightly, IntervalMonthly, IntervalYearly:
		return true
	default:
		return false
	}
}

// NextOccurrence advances due by exactly one period of the interval,
// preserving the time-of-day. Monthly and yearly steps clamp to the last
// day of the target month when the source day does not exist there
// (Jan 31 -> Feb 29 on leap years, Feb 29 -> Feb 28 on yearly steps).
func NextOccurrence(due time.Time, interval Interval) (time.Time, error) {
	switch interval {
	case IntervalDaily:
		return addDaysKeepClock(due, 1), nil
	case IntervalWeekly:
		return addDaysKeepClock(due, 7), nil
	case IntervalFortnightly:
		return addDaysKeepClock(due, 14), nil
	case IntervalMonthly:
		return addMonthsClamped(due, 1), nil
	case IntervalYearly:
		return addYearsClamped(due, 1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
}

func addDaysKeepClock(t time.Time, days int) time.Time {
	y, m, d := t.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addMonthsClamped(t time.Time, months int) time.Time {
	// AddDate normalizes Jan 31 + 1 month to Mar 2/3; anchor on the first
	// of the target month instead and clamp the day explicitly.
	anchor := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addYearsClamped(t time.Time, years int) time.Time {
	year := t.Year() + years
	day := t.Day()
	if last := daysInMonth(year, t.Month()); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
