package util

import "time"

// MonthsBetween returns the number of calendar months spanned by the
// inclusive range [start, end]: January 1st to March 31st spans 3 months.
// Days of month are ignored; advance payments are monthly, so a period that
// touches a month counts it. Returns 0 when end is in a month before start.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if months < 1 {
		return 0
	}
	return months
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthBounds returns the first and last day of the given month
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}
