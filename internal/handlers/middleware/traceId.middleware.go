package middleware

import (
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDHeader is the HTTP header for trace ID
	TraceIDHeader = "X-Trace-ID"

	// TraceIDLocalKey is the Fiber locals key for trace ID
	TraceIDLocalKey = "traceID"
)

// requestCarrier exposes fiber request headers to the otel propagator.
type requestCarrier struct {
	c *fiber.Ctx
}

func (r requestCarrier) Get(key string) string {
	return r.c.Get(key)
}

func (r requestCarrier) Set(key, value string) {
	r.c.Request().Header.Set(key, value)
}

func (r requestCarrier) Keys() []string {
	keys := make([]string, 0, 4)
	for key := range r.c.GetReqHeaders() {
		keys = append(keys, key)
	}
	return keys
}

// TraceID continues an incoming W3C trace when there is one, so outbound
// calls and log lines share the caller's trace. The log trace id comes from
// X-Trace-ID, then the traceparent trace id, then a fresh uuid.
func (m *Middleware) TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), requestCarrier{c: c})

		traceID := c.Get(TraceIDHeader)
		if traceID == "" {
			if span := trace.SpanContextFromContext(ctx); span.HasTraceID() {
				traceID = span.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDHeader, traceID)
		c.Locals(TraceIDLocalKey, traceID)
		c.SetUserContext(logger.ContextWithTraceID(ctx, traceID))

		return c.Next()
	}
}

// GetTraceID retrieves the trace ID from Fiber context
func GetTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals(TraceIDLocalKey).(string); ok {
		return traceID
	}
	return ""
}
