package serverutils

import (
	"errors"

	"sow-studio-be/internal/repository/contract"
	"sow-studio-be/internal/service"
	"sow-studio-be/pkg/assistant"
	"sow-studio-be/pkg/pricing"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbled out of controllers into
// the shared response envelope. Controllers may still map errors
// themselves; this is the fallback for anything they return raw.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, message := classify(err)
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var transportErr *assistant.TransportError
	if errors.As(err, &transportErr) {
		return fiber.StatusBadGateway, transportErr.Error()
	}

	switch {
	case errors.Is(err, service.ErrRateLimited):
		return fiber.StatusTooManyRequests, err.Error()
	case errors.Is(err, service.ErrNoTurnInFlight):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, contract.ErrThreadNotFound), errors.Is(err, contract.ErrDocumentNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, pricing.ErrNoPricingData):
		return fiber.StatusUnprocessableEntity, err.Error()
	}

	return fiber.StatusInternalServerError, err.Error()
}
