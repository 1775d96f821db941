package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Caisse-api/internal/domain"
)

// queryTime lee un parámetro RFC3339 o YYYY-MM-DD (UTC). Vacío devuelve nil.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: fecha inválida %q", domain.ErrInvalidInput, key, raw)
	}
	return &t, nil
}

// queryRange lee from/to.
func queryRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = queryTime(c, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(c, "to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
