// Package cycle computes the next billing window: paused days from the
// previous cycle are made up first, then a fixed-length run of service days.
package cycle

import (
	"time"

	"github.com/friskawellness/billing-service/internal/timeutil"
)

// skippedWeekday is the one day of the week the service does not deliver.
const skippedWeekday = time.Sunday

// Window is the planned next cycle. AdjustmentDates come first and
// compensate for prior pauses; BillingDates are the contractual cycle.
// Concatenated they form one contiguous run of service days strictly after
// the previous cycle's end.
type Window struct {
	AdjustmentDates []time.Time `json:"adjustment_dates"`
	BillingDates    []time.Time `json:"billing_dates"`
}

// NextStart is the first day of the new billing cycle; zero when the window
// is empty.
func (w Window) NextStart() time.Time {
	if len(w.BillingDates) == 0 {
		return time.Time{}
	}
	return w.BillingDates[0]
}

// NextEnd is the last day of the new billing cycle; zero when the window is
// empty.
func (w Window) NextEnd() time.Time {
	if len(w.BillingDates) == 0 {
		return time.Time{}
	}
	return w.BillingDates[len(w.BillingDates)-1]
}

// Plan projects service dates forward from the day after `after`, skipping
// the non-operating weekday, and partitions them into pausedDays adjustment
// dates followed by billingLength billing dates.
func Plan(after time.Time, pausedDays, billingLength int) Window {
	if pausedDays < 0 {
		pausedDays = 0
	}
	if billingLength < 0 {
		billingLength = 0
	}
	dates := ServiceDates(after, pausedDays+billingLength)
	return Window{
		AdjustmentDates: dates[:pausedDays],
		BillingDates:    dates[pausedDays:],
	}
}

// ServiceDates returns the first n service dates strictly after `after`, in
// increasing order, excluding the skipped weekday.
func ServiceDates(after time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	cur := timeutil.Day(after).AddDate(0, 0, 1)
	for len(out) < n {
		if cur.Weekday() != skippedWeekday {
			out = append(out, cur)
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return out
}
