package analytics

import "time"

// ResolvePeriod returns the window [start, now] covered by period
func ResolvePeriod(period Period, now time.Time) (start, end time.Time, err error) {
	switch period {
	case PeriodDay:
		start = now.Add(-24 * time.Hour)
	case PeriodWeek:
		start = now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		start = subMonths(now, 1)
	case PeriodHalfYear:
		start = subMonths(now, 6)
	default:
		return time.Time{}, time.Time{}, NewInvalidArgumentError("unknown period")
	}
	return start, now, nil
}

// ValidatePeriod checks that period is a known token
func ValidatePeriod(period Period) error {
	_, _, err := ResolvePeriod(period, time.Time{})
	return err
}

// subMonths subtracts n calendar months, clamping the day to the target month's
// last day instead of overflowing into the next month like time.AddDate does.
func subMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
