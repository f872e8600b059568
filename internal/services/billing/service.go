// Package billing orchestrates a billing run: read the client's current
// cycle from the ledger, aggregate usage across month tabs, plan the next
// window, and price the draft invoice.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/friskawellness/billing-service/internal/invoice"
	"github.com/friskawellness/billing-service/internal/services/cycle"
	"github.com/friskawellness/billing-service/internal/services/ledger"
	"github.com/friskawellness/billing-service/internal/services/usage"
	"github.com/friskawellness/billing-service/internal/timeutil"
)

// SaveMode selects how ConfirmSaveNextCycle writes the ledger.
type SaveMode string

const (
	SaveModeAppend SaveMode = "append"
	SaveModeUpdate SaveMode = "update"
)

var (
	// ErrMissingDates means the client is not in the ledger and the caller
	// supplied no explicit range to bill against.
	ErrMissingDates = errors.New("billing: client not in ledger and no explicit dates given")
	// ErrInvalidSaveMode is returned for a mode other than append or update.
	ErrInvalidSaveMode = errors.New("billing: save mode must be append or update")
)

// Ledger is the cycle-row store the orchestrator reads and writes.
type Ledger interface {
	CurrentCycle(ctx context.Context, client string) (ledger.Entry, error)
	Append(ctx context.Context, client string, start, end time.Time) error
	Update(ctx context.Context, row int, client string, start, end time.Time) error
}

// Aggregator walks the month tabs for one client and date range.
type Aggregator interface {
	Aggregate(ctx context.Context, client string, start, end time.Time) (usage.Report, error)
}

// PlanRequest asks for a billing run. Start/End override the ledger when
// set; without them the client must already have a cycle row.
type PlanRequest struct {
	Client string       `json:"client"`
	Plan   invoice.Plan `json:"plan"`
	Start  *time.Time   `json:"start,omitempty"`
	End    *time.Time   `json:"end,omitempty"`
}

// PlanResult is everything the operator needs to review before confirming:
// the usage report, the planned next window, the draft bill, and the ledger
// row the previous cycle lives in (0 when the dates were supplied
// explicitly).
type PlanResult struct {
	Report    usage.Report  `json:"report"`
	Window    cycle.Window  `json:"window"`
	Draft     invoice.Draft `json:"draft"`
	LedgerRow int           `json:"ledger_row"`
}

// SaveRequest confirms a planned window into the ledger.
type SaveRequest struct {
	Client string    `json:"client"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Mode   SaveMode  `json:"mode"`
	Row    int       `json:"row,omitempty"`
}

// Service wires the collaborators together. Each run is tagged with a
// generated operation id so the log lines of one run can be correlated.
type Service struct {
	ledger        Ledger
	usage         Aggregator
	calc          *invoice.Calculator
	billingLength int
	logger        *slog.Logger
	tracer        trace.Tracer
}

func NewService(lg Ledger, agg Aggregator, calc *invoice.Calculator, billingLength int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if billingLength <= 0 {
		billingLength = 26
	}
	return &Service{
		ledger:        lg,
		usage:         agg,
		calc:          calc,
		billingLength: billingLength,
		logger:        logger,
		tracer:        otel.Tracer("billing-service/billing"),
	}
}

// FetchUsageAndPlan resolves the cycle dates, aggregates usage over them,
// plans the next window so paused days are made up first, and prices the
// draft invoice. Read-only; nothing is written until the operator confirms.
func (s *Service) FetchUsageAndPlan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	opID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "billing.fetch_usage_and_plan",
		trace.WithAttributes(attribute.String("billing.client", req.Client)))
	defer span.End()

	start, end, row, err := s.resolveDates(ctx, req)
	if err != nil {
		return PlanResult{}, err
	}

	report, err := s.usage.Aggregate(ctx, req.Client, start, end)
	if err != nil {
		return PlanResult{}, fmt.Errorf("aggregate usage: %w", err)
	}

	window := cycle.Plan(end, report.PausedDays, s.billingLength)

	plan := req.Plan
	if plan == "" {
		plan = invoice.PlanNutri
	}
	draft, err := s.calc.Build(plan, report)
	if err != nil {
		return PlanResult{}, err
	}

	s.logger.Info("billing run planned",
		slog.String("operation_id", opID),
		slog.String("client", req.Client),
		slog.Time("cycle_start", start),
		slog.Time("cycle_end", end),
		slog.Int("active_days", report.ActiveDays),
		slog.Int("paused_days", report.PausedDays),
		slog.Time("next_start", window.NextStart()),
		slog.Time("next_end", window.NextEnd()),
		slog.String("grand_total", draft.GrandTotal.String()),
	)

	return PlanResult{
		Report:    report,
		Window:    window,
		Draft:     draft,
		LedgerRow: row,
	}, nil
}

// ConfirmSaveNextCycle writes the confirmed window to the ledger. One write,
// no retry; on failure the ledger is unchanged and the operator re-confirms.
func (s *Service) ConfirmSaveNextCycle(ctx context.Context, req SaveRequest) error {
	opID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "billing.confirm_save_next_cycle",
		trace.WithAttributes(
			attribute.String("billing.client", req.Client),
			attribute.String("billing.save_mode", string(req.Mode)),
		))
	defer span.End()

	if req.Client == "" {
		return errors.New("billing: client is required")
	}
	start, end := timeutil.Day(req.Start), timeutil.Day(req.End)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return errors.New("billing: start and end must form a valid range")
	}

	var err error
	switch req.Mode {
	case SaveModeAppend:
		err = s.ledger.Append(ctx, req.Client, start, end)
	case SaveModeUpdate:
		err = s.ledger.Update(ctx, req.Row, req.Client, start, end)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSaveMode, req.Mode)
	}
	if err != nil {
		return fmt.Errorf("save cycle: %w", err)
	}

	s.logger.Info("billing cycle saved",
		slog.String("operation_id", opID),
		slog.String("client", req.Client),
		slog.String("mode", string(req.Mode)),
		slog.Int("row", req.Row),
		slog.Time("start", start),
		slog.Time("end", end),
	)
	return nil
}

// resolveDates prefers explicit request dates; otherwise the ledger's
// current cycle for the client supplies them along with its row locator.
func (s *Service) resolveDates(ctx context.Context, req PlanRequest) (start, end time.Time, row int, err error) {
	if req.Start != nil && req.End != nil {
		start, end = timeutil.Day(*req.Start), timeutil.Day(*req.End)
		if end.Before(start) {
			return time.Time{}, time.Time{}, 0, errors.New("billing: end date precedes start date")
		}
		return start, end, 0, nil
	}

	entry, err := s.ledger.CurrentCycle(ctx, req.Client)
	if err != nil {
		if errors.Is(err, ledger.ErrClientNotFound) {
			return time.Time{}, time.Time{}, 0, fmt.Errorf("%w: %q", ErrMissingDates, req.Client)
		}
		return time.Time{}, time.Time{}, 0, err
	}
	return entry.Start, entry.End, entry.Row, nil
}
