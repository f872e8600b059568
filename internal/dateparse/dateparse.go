// Package dateparse normalizes the date spellings found in the workbook:
// spreadsheet serial numbers, a handful of text layouts, and header cells
// prefixed with a weekday name.
package dateparse

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// serialEpoch is the day-zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var weekdayPrefix = regexp.MustCompile(`(?i)^\s*(Mon|Tue|Wed|Thu|Fri|Sat|Sun|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s*,\s*`)

var dayMonthOnly = regexp.MustCompile(`^\s*(\d{1,2})\s+([A-Za-z]+)\s*$`)

// layouts are tried in order; the first successful parse wins.
var layouts = []string{
	"2-Jan-06",
	"2-Jan-2006",
	"2/1/2006",
	"2/1/06",
	"2006-1-2",
	"2 Jan 2006",
	"2 Jan 06",
}

// CycleDateLayout is the format used when writing cycle dates back to the
// ledger tab.
const CycleDateLayout = "02-Jan-2006"

// Parse converts a raw cell value into a calendar date. Numeric values are
// spreadsheet serials (days since 1899-12-30, fraction dropped). Text values
// may carry a leading weekday prefix and one of the supported layouts; a bare
// "<day> <month>" borrows the year of ref. Unparseable input reports ok=false,
// never an error.
func Parse(raw any, ref time.Time) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case int:
		return FromSerial(float64(v)), true
	case int64:
		return FromSerial(float64(v)), true
	case float64:
		return FromSerial(v), true
	case string:
		return parseText(v, ref)
	default:
		return parseText(fmt.Sprint(raw), ref)
	}
}

// ParseText handles only the textual spellings.
func ParseText(s string, ref time.Time) (time.Time, bool) {
	return parseText(s, ref)
}

func parseText(s string, ref time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = weekdayPrefix.ReplaceAllString(s, "")

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}

	if m := dayMonthOnly.FindStringSubmatch(s); m != nil {
		spelled := fmt.Sprintf("%s-%s-%d", m[1], titleCase(m[2]), ref.Year())
		for _, layout := range []string{"2-Jan-2006", "2-January-2006"} {
			if t, err := time.Parse(layout, spelled); err == nil {
				return day(t), true
			}
		}
	}
	return time.Time{}, false
}

// FromSerial converts a spreadsheet serial number to a date, truncating any
// fractional day.
func FromSerial(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial)))
}

// FormatCycleDate renders a date the way the ledger stores it (02-Nov-2025).
func FormatCycleDate(t time.Time) string {
	return t.Format(CycleDateLayout)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
