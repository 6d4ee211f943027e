package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Headers carrying the request correlation identifier. The first non-empty
// incoming header wins; the response always echoes HeaderCorrelationID.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"

	localCorrelationID = "correlation_id"
	maxCorrelationLen  = 128
)

type correlationIDKey struct{}

// CorrelationID tags every request with an identifier that ends up in logs
// and audit-adjacent warnings for the same request.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(localCorrelationID, id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(ContextWithCorrelation(c.UserContext(), id))

		return c.Next()
	}
}

func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range []string{HeaderCorrelationID, HeaderRequestID} {
		value := strings.TrimSpace(c.Get(header))
		if value != "" && len(value) <= maxCorrelationLen {
			return value
		}
	}
	return ""
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localCorrelationID).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation attaches the correlation identifier to the provided context.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}
