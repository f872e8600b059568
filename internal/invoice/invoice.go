// Package invoice computes the draft bill for a finished cycle from the
// aggregated usage report and the operator-set meal prices.
package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/friskawellness/billing-service/internal/config"
	"github.com/friskawellness/billing-service/internal/services/usage"
)

// Plan selects which per-meal price applies to the client.
type Plan string

const (
	PlanNutri       Plan = "nutri"
	PlanHighProtein Plan = "high_protein"
)

// Draft is the itemized bill. Amounts are exact decimals except GrandTotal,
// which is rounded to whole currency for the operator to quote.
type Draft struct {
	Plan          Plan            `json:"plan"`
	MealsTotal    int             `json:"meals_total"`
	MealPrice     decimal.Decimal `json:"meal_price"`
	MealAmount    decimal.Decimal `json:"meal_amount"`
	SeafoodUnits  int             `json:"seafood_units"`
	SeafoodAmount decimal.Decimal `json:"seafood_amount"`
	Taxable       decimal.Decimal `json:"taxable"`
	GSTPercent    decimal.Decimal `json:"gst_percent"`
	GSTAmount     decimal.Decimal `json:"gst_amount"`
	DeliveryTotal decimal.Decimal `json:"delivery_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// Calculator holds the configured prices. Construct once and share; it has
// no mutable state.
type Calculator struct {
	nutri       decimal.Decimal
	highProtein decimal.Decimal
	seafood     decimal.Decimal
	gstPercent  decimal.Decimal
	override    *decimal.Decimal
}

func NewCalculator(cfg config.PricingConfig) *Calculator {
	c := &Calculator{
		nutri:       decimal.NewFromFloat(cfg.NutriMeal),
		highProtein: decimal.NewFromFloat(cfg.HighProteinMeal),
		seafood:     decimal.NewFromFloat(cfg.SeafoodAddon),
		gstPercent:  decimal.NewFromFloat(cfg.GSTPercent),
	}
	if cfg.DeliveryOverride != nil {
		d := decimal.NewFromFloat(*cfg.DeliveryOverride)
		c.override = &d
	}
	return c
}

// Build prices the report on the given plan. GST applies to the food amount
// only; delivery is charged as-is. When a delivery override is configured it
// replaces the sheet-derived total with override × active days.
func (c *Calculator) Build(plan Plan, report usage.Report) (Draft, error) {
	var mealPrice decimal.Decimal
	switch plan {
	case PlanNutri:
		mealPrice = c.nutri
	case PlanHighProtein:
		mealPrice = c.highProtein
	default:
		return Draft{}, fmt.Errorf("invoice: unknown plan %q", plan)
	}

	mealAmount := mealPrice.Mul(decimal.NewFromInt(int64(report.Totals.MealsTotal())))
	seafoodAmount := c.seafood.Mul(decimal.NewFromInt(int64(report.Totals.Seafood)))
	taxable := mealAmount.Add(seafoodAmount)
	gstAmount := taxable.Mul(c.gstPercent).Div(decimal.NewFromInt(100))

	deliveryTotal := report.DeliveryTotal
	if c.override != nil {
		deliveryTotal = c.override.Mul(decimal.NewFromInt(int64(report.ActiveDays)))
	}

	return Draft{
		Plan:          plan,
		MealsTotal:    report.Totals.MealsTotal(),
		MealPrice:     mealPrice,
		MealAmount:    mealAmount,
		SeafoodUnits:  report.Totals.Seafood,
		SeafoodAmount: seafoodAmount,
		Taxable:       taxable,
		GSTPercent:    c.gstPercent,
		GSTAmount:     gstAmount,
		DeliveryTotal: deliveryTotal,
		GrandTotal:    taxable.Add(gstAmount).Add(deliveryTotal).Round(0),
	}, nil
}
