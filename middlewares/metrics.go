package middlewares

import (
	"strconv"
	"time"

	"salesassistant-backend/observability"

	"github.com/gofiber/fiber/v2"
)

// Metrics records per-request counters and latency. Route pattern (not the
// raw path) keeps cardinality bounded.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		observability.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		observability.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
