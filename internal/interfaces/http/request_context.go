package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/pkg/logger"
)

// LocalLogger clave de Locals con el logger de la petición.
const LocalLogger = "logger"

// RequestContext instala el logger de la petición y, si timeout > 0, un plazo sobre
// c.UserContext(). Al vencer, la transacción en curso se revierte con el contexto.
func RequestContext(log *logger.Logger, timeout time.Duration) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		c.Locals(LocalLogger, log)
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func requestLogger(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(LocalLogger).(*logger.Logger); ok && l != nil {
		return l
	}
	return logger.Nop()
}
