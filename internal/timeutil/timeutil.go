package timeutil

import "time"

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Date returns midnight UTC on the first day of the month.
func (ym YearMonth) Date() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Day normalizes the timestamp to midnight UTC, which is how the service
// represents calendar dates internally.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// MonthSpan enumerates every calendar month touched by [start, end]
// inclusive, in order. An inverted range yields nil.
func MonthSpan(start, end time.Time) []YearMonth {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	var out []YearMonth
	y, m := start.Year(), start.Month()
	for y < end.Year() || (y == end.Year() && m <= end.Month()) {
		out = append(out, YearMonth{Year: y, Month: m})
		if m == time.December {
			y++
			m = time.January
		} else {
			m++
		}
	}
	return out
}

// InRange reports whether d falls within [start, end] inclusive, comparing
// whole days.
func InRange(d, start, end time.Time) bool {
	d, start, end = Day(d), Day(start), Day(end)
	return !d.Before(start) && !d.After(end)
}
