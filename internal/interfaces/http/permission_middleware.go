package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/application/dto"
)

// permissionChecker contrato mínimo del oráculo de autorización.
// Lo implementa *authz.PermissionService.
type permissionChecker interface {
	UserCan(ctx context.Context, userID, code string) (bool, error)
}

// RequirePermission verifica que el actor del token tenga el permiso code.
// Debe usarse DESPUÉS de AuthMiddleware.
//
//   - 401 si no hay actor en el contexto.
//   - 403 si el conjunto efectivo no incluye code.
//   - 503 si el oráculo no pudo consultar sus datos.
func RequirePermission(checker permissionChecker, code string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "actor no encontrado en el token",
			})
		}

		ok, err := checker.UserCan(c.UserContext(), userID, code)
		if err != nil {
			requestLogger(c).Error().Err(err).Str("user_id", userID).Str("permission", code).Msg("verificación de permiso fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + code,
			})
		}
		return c.Next()
	}
}
