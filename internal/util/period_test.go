package util

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same month", date(2024, time.January, 1), date(2024, time.January, 31), 1},
		{"quarter", date(2024, time.January, 1), date(2024, time.March, 31), 3},
		{"full year", date(2024, time.January, 1), date(2024, time.December, 31), 12},
		{"across year boundary", date(2023, time.November, 15), date(2024, time.February, 10), 4},
		{"mid-month days ignored", date(2024, time.January, 31), date(2024, time.February, 1), 2},
		{"end before start", date(2024, time.March, 1), date(2024, time.January, 31), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("MonthsBetween(%s, %s) = %d, want %d", tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestPreviousMonth(t *testing.T) {
	year, month := PreviousMonth(2024, 1)
	if year != 2023 || month != 12 {
		t.Errorf("expected 2023/12, got %d/%d", year, month)
	}

	year, month = PreviousMonth(2024, 6)
	if year != 2024 || month != 5 {
		t.Errorf("expected 2024/5, got %d/%d", year, month)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, time.February)
	if first.Day() != 1 {
		t.Errorf("expected first day 1, got %d", first.Day())
	}
	if last.Day() != 29 {
		t.Errorf("expected last day 29 (leap year), got %d", last.Day())
	}
}
