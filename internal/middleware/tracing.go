package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	traceHeader = "X-Trace-Id"
	traceLocal  = "trace_id"
)

// Tracing assigns each request a trace ID, echoed in the response header.
// An inbound X-Trace-Id from an upstream proxy is kept so traces join up
// across services.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(traceHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals(traceLocal, id)
		c.Set(traceHeader, id)
		return c.Next()
	}
}

// GetTraceID returns the request's trace ID, or "" before Tracing has run.
func GetTraceID(c *fiber.Ctx) string {
	id, _ := c.Locals(traceLocal).(string)
	return id
}
