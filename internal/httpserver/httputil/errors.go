// Package httputil shapes service errors into the API's JSON envelope.
package httputil

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/friskawellness/billing-service/internal/services/billing"
	"github.com/friskawellness/billing-service/internal/services/ledger"
	"github.com/friskawellness/billing-service/internal/services/usage"
	"github.com/friskawellness/billing-service/internal/sheets"
)

// WriteError sends the standard JSON error envelope with an explicit status.
func WriteError(c *fiber.Ctx, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "unknown error"
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// WriteServiceError classifies a billing-domain error and writes it. The
// distinction between 424 and 502 is whether the spreadsheet content is
// wrong (operator can fix the sheet) or the transport failed (retry later).
func WriteServiceError(c *fiber.Ctx, err error) error {
	return WriteError(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var malformed *ledger.MalformedRowError

	switch {
	case errors.Is(err, billing.ErrMissingDates), errors.Is(err, ledger.ErrClientNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &malformed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrLedgerInvalid), errors.Is(err, sheets.ErrTabNotFound):
		return fiber.StatusFailedDependency
	case errors.Is(err, sheets.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, usage.ErrInvalidRange), errors.Is(err, billing.ErrInvalidSaveMode):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadGateway
	}
}
