package httpserver

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/friskawellness/billing-service/internal/dateparse"
	"github.com/friskawellness/billing-service/internal/httpserver/httputil"
	"github.com/friskawellness/billing-service/internal/invoice"
	"github.com/friskawellness/billing-service/internal/observability"
	"github.com/friskawellness/billing-service/internal/services/billing"
)

// billingAPI is the slice of the billing service the handlers need.
type billingAPI interface {
	FetchUsageAndPlan(ctx context.Context, req billing.PlanRequest) (billing.PlanResult, error)
	ConfirmSaveNextCycle(ctx context.Context, req billing.SaveRequest) error
}

type planRequest struct {
	Client string `json:"client"`
	Plan   string `json:"plan"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

type saveRequest struct {
	Client string `json:"client"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Mode   string `json:"mode"`
	Row    int    `json:"row,omitempty"`
}

func registerBillingRoutes(app *fiber.App, svc billingAPI, obs *observability.Provider) {
	group := app.Group("/v1/billing")

	group.Post("/plan", func(c *fiber.Ctx) error {
		var body planRequest
		if err := c.BodyParser(&body); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid JSON body")
		}
		if body.Client == "" {
			return httputil.WriteError(c, fiber.StatusBadRequest, "client is required")
		}

		req := billing.PlanRequest{Client: body.Client, Plan: invoice.Plan(body.Plan)}
		if body.Start != "" || body.End != "" {
			start, okStart := dateparse.Parse(body.Start, time.Now())
			end, okEnd := dateparse.Parse(body.End, time.Now())
			if !okStart || !okEnd {
				return httputil.WriteError(c, fiber.StatusBadRequest, "start and end must both be dates like 02-Nov-2025")
			}
			if end.Before(start) {
				return httputil.WriteError(c, fiber.StatusBadRequest, "end date precedes start date")
			}
			req.Start, req.End = &start, &end
		}

		result, err := svc.FetchUsageAndPlan(c.UserContext(), req)
		if err != nil {
			obs.RecordBillingRun("plan", "error")
			return httputil.WriteServiceError(c, err)
		}
		obs.RecordBillingRun("plan", "ok")
		return c.JSON(result)
	})

	group.Post("/cycles", func(c *fiber.Ctx) error {
		var body saveRequest
		if err := c.BodyParser(&body); err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid JSON body")
		}
		if body.Client == "" {
			return httputil.WriteError(c, fiber.StatusBadRequest, "client is required")
		}
		start, okStart := dateparse.Parse(body.Start, time.Now())
		end, okEnd := dateparse.Parse(body.End, time.Now())
		if !okStart || !okEnd {
			return httputil.WriteError(c, fiber.StatusBadRequest, "start and end must both be dates like 02-Nov-2025")
		}
		if end.Before(start) {
			return httputil.WriteError(c, fiber.StatusBadRequest, "end date precedes start date")
		}

		err := svc.ConfirmSaveNextCycle(c.UserContext(), billing.SaveRequest{
			Client: body.Client,
			Start:  start,
			End:    end,
			Mode:   billing.SaveMode(body.Mode),
			Row:    body.Row,
		})
		if err != nil {
			obs.RecordBillingRun("save", "error")
			return httputil.WriteServiceError(c, err)
		}
		obs.RecordBillingRun("save", "ok")
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "saved"})
	})
}
