// Package usage aggregates a client's meal selections and delivery cost over
// a billing range by walking the month tabs.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/friskawellness/billing-service/internal/cache"
	"github.com/friskawellness/billing-service/internal/grid"
	"github.com/friskawellness/billing-service/internal/models"
	"github.com/friskawellness/billing-service/internal/pricing"
	"github.com/friskawellness/billing-service/internal/sheets"
	"github.com/friskawellness/billing-service/internal/timeutil"
)

var ErrInvalidRange = errors.New("usage: end date before start date")

// Seafood add-on labels: riding on a meal slot, counted in addition to it.
const (
	seafoodMeal1Label = "seafood 1"
	seafoodMeal2Label = "seafood 2"
)

// Source is what the aggregator needs from the spreadsheet collaborator.
type Source interface {
	FindClientListTab(ctx context.Context, month time.Month) (string, error)
	FetchValues(ctx context.Context, a1Range string) ([][]any, error)
}

// MonthPricing records how one month tab priced the client's deliveries.
type MonthPricing struct {
	Tab      string           `json:"tab"`
	Delivery pricing.Delivery `json:"delivery"`
}

// Report is the aggregation result for one (client, range) pair. Transient
// and owned by the request; nothing here is shared or mutated afterwards.
type Report struct {
	Client        string             `json:"client"`
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	Totals        models.UsageTotals `json:"totals"`
	ActiveDays    int                `json:"active_days"`
	PausedDays    int                `json:"paused_days"`
	TotalDays     int                `json:"total_days"`
	PausedDates   []time.Time        `json:"paused_dates"`
	DeliveryTotal decimal.Decimal    `json:"delivery_total"`
	Months        []MonthPricing     `json:"months"`
}

// Service walks month tabs and accumulates a Report.
type Service struct {
	source  Source
	cache   *cache.GridCache
	layout  grid.Layout
	maxRows int
	tracer  trace.Tracer
}

func NewService(source Source, gridCache *cache.GridCache, layout grid.Layout, maxRows int) *Service {
	if maxRows <= 0 {
		maxRows = 2000
	}
	return &Service{
		source:  source,
		cache:   gridCache,
		layout:  layout,
		maxRows: maxRows,
		tracer:  otel.Tracer("billing-service/usage"),
	}
}

// Aggregate counts per-category usage, classifies each confirmed date as
// active or paused, and accumulates the delivery cost for [start, end]
// inclusive. Months whose tab is missing contribute nothing and do not fail
// the aggregation; transport failures abort it. The month loop honors ctx
// cancellation, since every month costs at least one network round trip.
func (s *Service) Aggregate(ctx context.Context, client string, start, end time.Time) (Report, error) {
	if s == nil || s.source == nil {
		return Report{}, errors.New("usage service not initialized")
	}
	start, end = timeutil.Day(start), timeutil.Day(end)
	if end.Before(start) {
		return Report{}, ErrInvalidRange
	}

	ctx, span := s.tracer.Start(ctx, "usage.Aggregate")
	defer span.End()
	span.SetAttributes(
		attribute.String("billing.client", client),
		attribute.String("billing.range_start", start.Format("2006-01-02")),
		attribute.String("billing.range_end", end.Format("2006-01-02")),
	)

	report := Report{
		Client:        client,
		Start:         start,
		End:           end,
		PausedDates:   make([]time.Time, 0),
		DeliveryTotal: decimal.Zero,
		Months:        make([]MonthPricing, 0),
	}

	for _, ym := range timeutil.MonthSpan(start, end) {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		tab, err := s.source.FindClientListTab(ctx, ym.Month)
		if err != nil {
			if errors.Is(err, sheets.ErrTabNotFound) {
				continue
			}
			return Report{}, err
		}

		g, err := s.readGrid(ctx, tab)
		if err != nil {
			return Report{}, err
		}
		if len(g) == 0 {
			continue
		}

		s.aggregateMonth(&report, g, tab, client, start, end)
	}

	report.PausedDays = report.TotalDays - report.ActiveDays
	span.SetAttributes(
		attribute.Int("billing.active_days", report.ActiveDays),
		attribute.Int("billing.paused_days", report.PausedDays),
	)
	return report, nil
}

func (s *Service) aggregateMonth(report *Report, g grid.Grid, tab, client string, start, end time.Time) {
	// The range end anchors the year of bare "<day> <month>" header labels.
	confirmed, blocks := g.HeaderDates(s.layout, start, end, end)
	clientRows := g.ClientRows(s.layout, client)

	delivery := pricing.Resolve(s.pricingRows(g, clientRows))
	report.Months = append(report.Months, MonthPricing{Tab: tab, Delivery: delivery})

	activeThisMonth := 0
	for _, d := range confirmed {
		block, ok := blocks[d]
		if !ok {
			continue
		}
		day := s.countDay(g, clientRows, block)
		report.Totals.Add(day)
		if day.SlotSum() > 0 {
			activeThisMonth++
		} else {
			// Zero selections on a confirmed date is a pause, including the
			// degenerate case of a client with no rows in this tab.
			report.PausedDates = append(report.PausedDates, d)
		}
	}

	report.TotalDays += len(confirmed)
	report.ActiveDays += activeThisMonth
	report.DeliveryTotal = report.DeliveryTotal.Add(
		delivery.PerDay.Mul(decimal.NewFromInt(int64(activeThisMonth))))
}

// countDay inspects the six slot cells of one date block across every client
// row. Short rows read as empty cells.
func (s *Service) countDay(g grid.Grid, clientRows []int, block int) models.UsageTotals {
	var day models.UsageTotals
	for _, r := range clientRows {
		row := g.Row(r)

		meal1 := grid.Cell(row, block)
		if meal1 != "" {
			day.Meal1++
			if grid.NormalizeName(meal1) == seafoodMeal1Label {
				day.Seafood++
			}
		}
		meal2 := grid.Cell(row, block+1)
		if meal2 != "" {
			day.Meal2++
			if grid.NormalizeName(meal2) == seafoodMeal2Label {
				day.Seafood++
			}
		}
		if grid.Cell(row, block+2) != "" {
			day.Snack++
		}
		if grid.Cell(row, block+3) != "" {
			day.Juice1++
		}
		if grid.Cell(row, block+4) != "" {
			day.Juice2++
		}
		if grid.Cell(row, block+5) != "" {
			day.Breakfast++
		}
	}
	return day
}

func (s *Service) pricingRows(g grid.Grid, clientRows []int) []pricing.RowPricing {
	rows := make([]pricing.RowPricing, 0, len(clientRows))
	for _, r := range clientRows {
		row := g.Row(r)
		rows = append(rows, pricing.RowPricing{
			Row:   r + 1,
			Type:  grid.Cell(row, s.layout.TypeColumn),
			Price: pricing.ParsePrice(grid.Cell(row, s.layout.DeliveryPriceColumn)),
		})
	}
	return rows
}

func (s *Service) readGrid(ctx context.Context, tab string) (grid.Grid, error) {
	if g, ok := s.cache.Get(ctx, tab); ok {
		return g, nil
	}
	values, err := s.source.FetchValues(ctx, fmt.Sprintf("%s!A1:ZZ%d", tab, s.maxRows))
	if err != nil {
		return nil, err
	}
	g := grid.Grid(values)
	s.cache.Set(ctx, tab, g)
	return g, nil
}
