package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
	"github.com/jhoicas/Caisse-api/internal/domain"
)

// errorStatus traduce un error de dominio a status HTTP y código estable.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict, "INVALID_STATE_TRANSITION"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return fiber.StatusConflict, "ALREADY_CANCELLED"
	case errors.Is(err, domain.ErrActiveSession):
		return fiber.StatusConflict, "ACTIVE_SESSION"
	case errors.Is(err, domain.ErrHasReferences):
		return fiber.StatusConflict, "HAS_REFERENCES"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidPaymentReference):
		return fiber.StatusBadRequest, "INVALID_PAYMENT_REFERENCE"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fiber.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, domain.ErrDatabase):
		return fiber.StatusServiceUnavailable, "DATABASE_UNAVAILABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// respondError escribe el ErrorResponse del error. Los 5xx se registran con la causa
// y no la exponen al cliente.
func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	body := dto.ErrorResponse{Code: code, Message: err.Error()}
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		body.Details = dto.InsufficientStockDetails{
			ProductID: stockErr.ProductID,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
		}
	}
	if status >= fiber.StatusInternalServerError {
		requestLogger(c).Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("code", code).
			Msg("petición fallida")
		body.Message = "error interno, intente más tarde"
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
