// Package models holds the value types shared across the billing services.
package models

// UsageTotals is the per-category selection count for a client over a date
// range. Fixed fields rather than a map so a mistyped category cannot
// silently create a new bucket.
type UsageTotals struct {
	Meal1     int `json:"meal1"`
	Meal2     int `json:"meal2"`
	Snack     int `json:"snack"`
	Juice1    int `json:"juice1"`
	Juice2    int `json:"juice2"`
	Breakfast int `json:"breakfast"`
	Seafood   int `json:"seafood"`
}

// MealsTotal sums both meal slots.
func (t UsageTotals) MealsTotal() int { return t.Meal1 + t.Meal2 }

// JuicesTotal sums both juice slots.
func (t UsageTotals) JuicesTotal() int { return t.Juice1 + t.Juice2 }

// SlotSum is the activity count that decides whether a day was served.
// The seafood add-on rides on top of a meal slot and is deliberately
// excluded.
func (t UsageTotals) SlotSum() int {
	return t.Meal1 + t.Meal2 + t.Snack + t.Juice1 + t.Juice2 + t.Breakfast
}

// Add accumulates other into t.
func (t *UsageTotals) Add(other UsageTotals) {
	t.Meal1 += other.Meal1
	t.Meal2 += other.Meal2
	t.Snack += other.Snack
	t.Juice1 += other.Juice1
	t.Juice2 += other.Juice2
	t.Breakfast += other.Breakfast
	t.Seafood += other.Seafood
}
