package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/athlete-assessment-api/internal/utils"
)

// RateLimit creates a per-user rate limiter middleware instance. Anonymous
// callers are keyed by IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			userID, _ := c.Locals(LocalUserID).(string)
			if strings.TrimSpace(userID) == "" {
				userID = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, userID)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	})
}
