// Package pricing decides what a client pays per delivered day based on the
// delivery-type and price cells of their rows in a month tab.
package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode explains how the per-day price was derived from the client's rows.
type Mode string

const (
	// ModeNone means the client had no rows in the tab.
	ModeNone Mode = "none"
	// ModeSingleIdentical means duplicate rows of one delivery type; the
	// price is the max of the duplicates.
	ModeSingleIdentical Mode = "single_identical"
	// ModeSumShifts means distinct morning/evening shifts billed together.
	ModeSumShifts Mode = "sum_shifts"
	// ModeSingleMismatch means inconsistent type labels; billed once at the
	// highest rate rather than double-billed.
	ModeSingleMismatch Mode = "single_mismatch"
)

// RowPricing is one contributing row, kept for operator display.
type RowPricing struct {
	Row   int             `json:"row"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

// Delivery is the resolved per-service-day delivery price.
type Delivery struct {
	PerDay  decimal.Decimal `json:"per_day"`
	Mode    Mode            `json:"mode"`
	Details []RowPricing    `json:"details,omitempty"`
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParsePrice extracts a price from free text, stripping currency symbols and
// other noise. Unparseable text is zero, never an error.
func ParsePrice(raw string) decimal.Decimal {
	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeType collapses whitespace and lower-cases a delivery-type label.
func NormalizeType(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Resolve determines the per-day delivery price and mode for the client's
// rows in one month tab. The rules, in order: no rows at all; all rows the
// same type (duplicates of one delivery, max wins); morning/evening shift
// labels (one shift consistently labeled bills once, mixed shifts sum);
// anything else is a mismatch billed at the single highest rate.
func Resolve(rows []RowPricing) Delivery {
	if len(rows) == 0 {
		return Delivery{PerDay: decimal.Zero, Mode: ModeNone}
	}

	normTypes := make([]string, len(rows))
	for i, r := range rows {
		normTypes[i] = NormalizeType(r.Type)
	}

	if allEqual(normTypes) {
		return Delivery{PerDay: maxPrice(rows), Mode: ModeSingleIdentical, Details: rows}
	}

	hasShift := false
	for _, t := range normTypes {
		if strings.Contains(t, "morning") || strings.Contains(t, "evening") {
			hasShift = true
			break
		}
	}
	if hasShift {
		if allExactly(normTypes, "morning delivery") || allExactly(normTypes, "evening delivery") {
			return Delivery{PerDay: maxPrice(rows), Mode: ModeSingleIdentical, Details: rows}
		}
		return Delivery{PerDay: sumPrices(rows), Mode: ModeSumShifts, Details: rows}
	}

	return Delivery{PerDay: maxPrice(rows), Mode: ModeSingleMismatch, Details: rows}
}

func allEqual(vals []string) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func allExactly(vals []string, want string) bool {
	for _, v := range vals {
		if v != want {
			return false
		}
	}
	return true
}

func maxPrice(rows []RowPricing) decimal.Decimal {
	max := rows[0].Price
	for _, r := range rows[1:] {
		if r.Price.GreaterThan(max) {
			max = r.Price
		}
	}
	return max
}

func sumPrices(rows []RowPricing) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Price)
	}
	return sum
}
