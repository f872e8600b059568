package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(n int, typ string, price float64) RowPricing {
	return RowPricing{Row: n, Type: typ, Price: decimal.NewFromFloat(price)}
}

func TestResolveNoRows(t *testing.T) {
	d := Resolve(nil)
	assert.Equal(t, ModeNone, d.Mode)
	assert.True(t, d.PerDay.IsZero())
}

func TestResolveSingleRow(t *testing.T) {
	d := Resolve([]RowPricing{row(4, "Evening Delivery", 80)})
	assert.Equal(t, ModeSingleIdentical, d.Mode)
	assert.True(t, d.PerDay.Equal(decimal.NewFromInt(80)), "per day %s", d.PerDay)
}

func TestResolveDuplicateIdenticalTypesTakesMax(t *testing.T) {
	d := Resolve([]RowPricing{
		row(4, "Evening Delivery", 80),
		row(9, "evening  delivery", 90),
	})
	assert.Equal(t, ModeSingleIdentical, d.Mode)
	assert.True(t, d.PerDay.Equal(decimal.NewFromInt(90)), "per day %s", d.PerDay)
}

func TestResolveMixedShiftsSums(t *testing.T) {
	d := Resolve([]RowPricing{
		row(4, "Morning Delivery", 50),
		row(9, "Evening Delivery", 60),
	})
	assert.Equal(t, ModeSumShifts, d.Mode)
	assert.True(t, d.PerDay.Equal(decimal.NewFromInt(110)), "per day %s", d.PerDay)
}

func TestResolveShiftWithStrayLabelSums(t *testing.T) {
	d := Resolve([]RowPricing{
		row(4, "Morning Delivery", 50),
		row(9, "Lunch Drop", 40),
	})
	assert.Equal(t, ModeSumShifts, d.Mode)
	assert.True(t, d.PerDay.Equal(decimal.NewFromInt(90)), "per day %s", d.PerDay)
}

func TestResolveMismatchTakesMax(t *testing.T) {
	d := Resolve([]RowPricing{
		row(4, "Standard", 70),
		row(9, "Premium", 95),
	})
	assert.Equal(t, ModeSingleMismatch, d.Mode)
	assert.True(t, d.PerDay.Equal(decimal.NewFromInt(95)), "per day %s", d.PerDay)
}

// Any non-empty row set must resolve to exactly one of the three non-none
// modes.
func TestResolveExhaustive(t *testing.T) {
	sets := [][]RowPricing{
		{row(1, "Evening Delivery", 80)},
		{row(1, "Evening Delivery", 80), row(2, "Evening Delivery", 80)},
		{row(1, "Morning Delivery", 50), row(2, "Evening Delivery", 60)},
		{row(1, "Morning Delivery", 50), row(2, "Other", 10)},
		{row(1, "A", 1), row(2, "B", 2)},
		{row(1, "", 0), row(2, "", 0)},
	}
	for i, rows := range sets {
		d := Resolve(rows)
		require.NotEqual(t, ModeNone, d.Mode, "set %d", i)
		switch d.Mode {
		case ModeSingleIdentical, ModeSumShifts, ModeSingleMismatch:
		default:
			t.Fatalf("set %d: unexpected mode %q", i, d.Mode)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"80":        "80",
		"₹ 80.50": "80.5",
		"120/-":   "0", // trailing dash survives the strip and defeats the parse
		" 60 ":    "60",
		"-15":     "-15",
		"free":    "0",
		"":        "0",
	}
	for in, want := range cases {
		got := ParsePrice(in)
		wantDec, err := decimal.NewFromString(want)
		if err != nil {
			wantDec = decimal.Zero
		}
		assert.True(t, got.Equal(wantDec), "ParsePrice(%q) = %s, want %s", in, got, wantDec)
	}
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "evening delivery", NormalizeType("  Evening   DELIVERY "))
	assert.Equal(t, "", NormalizeType("   "))
}
