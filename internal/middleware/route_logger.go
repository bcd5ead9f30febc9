package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs one line per completed request with method, path,
// status, and elapsed time, tagged with the trace ID.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := log.With().
			Str("trace_id", GetTraceID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()

		logger.Info().Msg("Request received")
		start := time.Now()
		err := c.Next()

		logger.Info().
			Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("Request completed")
		return err
	}
}
