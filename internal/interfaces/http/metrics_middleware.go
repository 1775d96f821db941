package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// httpRecorder lo implementa *metrics.Metrics.
type httpRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// MetricsMiddleware registra conteo y latencia por ruta. Usa el patrón de la ruta
// (/api/sales/:id) y no la URL concreta para no disparar la cardinalidad.
func MetricsMiddleware(rec httpRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		rec.RecordHTTPRequest(c.Method(), path, status, time.Since(start))
		return err
	}
}
