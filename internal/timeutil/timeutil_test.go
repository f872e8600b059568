package timeutil

import (
	"testing"
	"time"
)

func TestMonthSpanSingleMonth(t *testing.T) {
	start := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.November, 28, 0, 0, 0, 0, time.UTC)
	span := MonthSpan(start, end)
	if len(span) != 1 {
		t.Fatalf("expected one month, got %v", span)
	}
	if span[0] != (YearMonth{Year: 2025, Month: time.November}) {
		t.Fatalf("unexpected month %v", span[0])
	}
}

func TestMonthSpanAcrossYearBoundary(t *testing.T) {
	start := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	span := MonthSpan(start, end)
	want := []YearMonth{
		{2025, time.November},
		{2025, time.December},
		{2026, time.January},
		{2026, time.February},
	}
	if len(span) != len(want) {
		t.Fatalf("expected %d months, got %d (%v)", len(want), len(span), span)
	}
	for i := range want {
		if span[i] != want[i] {
			t.Fatalf("month %d: expected %v, got %v", i, want[i], span[i])
		}
	}
}

func TestMonthSpanInvertedRange(t *testing.T) {
	start := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	if span := MonthSpan(start, end); span != nil {
		t.Fatalf("expected nil span, got %v", span)
	}
}

func TestInRangeInclusiveBounds(t *testing.T) {
	start := time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC)
	if !InRange(start, start, end) || !InRange(end, start, end) {
		t.Fatalf("bounds must be inclusive")
	}
	if InRange(end.AddDate(0, 0, 1), start, end) {
		t.Fatalf("day after end must be excluded")
	}
	// Time-of-day must not matter.
	noon := time.Date(2025, time.November, 8, 12, 30, 0, 0, time.UTC)
	if !InRange(noon, start, end) {
		t.Fatalf("comparison must ignore time of day")
	}
}

func TestDayNormalizes(t *testing.T) {
	d := Day(time.Date(2025, time.March, 9, 23, 59, 59, 4e8, time.UTC))
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 || d.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", d)
	}
	if !SameDay(d, time.Date(2025, time.March, 9, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("SameDay mismatch")
	}
}
