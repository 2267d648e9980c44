package analytics

import (
	"testing"
	"time"
)

func TestResolvePeriod(t *testing.T) {
	now := mustTime("2024-05-15T12:30:00Z")

	tests := []struct {
		name      string
		period    Period
		now       time.Time
		wantStart time.Time
	}{
		{name: "day", period: PeriodDay, now: now, wantStart: now.Add(-24 * time.Hour)},
		{name: "week", period: PeriodWeek, now: now, wantStart: now.Add(-7 * 24 * time.Hour)},
		{name: "month", period: PeriodMonth, now: now, wantStart: mustTime("2024-04-15T12:30:00Z")},
		{name: "half-year", period: PeriodHalfYear, now: now, wantStart: mustTime("2023-11-15T12:30:00Z")},
		{
			name:      "half-year clamps to leap day",
			period:    PeriodHalfYear,
			now:       mustTime("2024-08-31T08:00:00Z"),
			wantStart: mustTime("2024-02-29T08:00:00Z"),
		},
		{
			name:      "half-year clamps in non leap year",
			period:    PeriodHalfYear,
			now:       mustTime("2023-08-31T08:00:00Z"),
			wantStart: mustTime("2023-02-28T08:00:00Z"),
		},
		{
			name:      "month clamps to shorter month",
			period:    PeriodMonth,
			now:       mustTime("2024-03-31T00:00:00Z"),
			wantStart: mustTime("2024-02-29T00:00:00Z"),
		},
		{
			name:      "month crosses year boundary",
			period:    PeriodMonth,
			now:       mustTime("2024-01-31T23:59:59Z"),
			wantStart: mustTime("2023-12-31T23:59:59Z"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ResolvePeriod(tt.period, tt.now)
			if err != nil {
				t.Fatalf("ResolvePeriod() unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.now) {
				t.Errorf("end = %v, want %v", end, tt.now)
			}
			if start.After(end) {
				t.Errorf("start %v is after end %v", start, end)
			}
		})
	}
}

func TestResolvePeriod_Unknown(t *testing.T) {
	for _, period := range []Period{"", "year", "Day", "fortnight"} {
		_, _, err := ResolvePeriod(period, time.Now())
		if !IsInvalidArgumentError(err) {
			t.Errorf("ResolvePeriod(%q) error = %v, want invalid argument", period, err)
		}
	}
}

func TestSubMonths_EveryDayOfYearIsValid(t *testing.T) {
	day := mustTime("2024-01-01T00:00:00Z")
	for i := 0; i < 366; i++ {
		got := subMonths(day, 6)
		wantMonth := time.Month((int(day.Month())+5)%12 + 1)
		if got.Month() != wantMonth {
			t.Fatalf("subMonths(%s, 6) landed in %s, want %s", day.Format(dayLayout), got.Month(), wantMonth)
		}
		if got.Day() > day.Day() {
			t.Fatalf("subMonths(%s, 6) = %s moved the day forward", day.Format(dayLayout), got.Format(dayLayout))
		}
		day = day.AddDate(0, 0, 1)
	}
}
