package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/athlete-assessment-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny      = "any"
	AuthRoleAdmin    = RoleAdmin
	AuthRoleAssessor = RoleAssessor
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role           string
	AllowAnonymous bool
}

// WithAuth wraps a single handler with authentication and role guards. Admins
// satisfy the assessor role.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}
	allowAnonymous := opts.AllowAnonymous && role == AuthRoleAny

	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(LocalUserID).(string)
		if strings.TrimSpace(userID) == "" {
			if allowAnonymous {
				return handler(c)
			}
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		currentRole := normalizeRoleValue(c.Locals(LocalUserRole))
		switch role {
		case AuthRoleAny:
		case AuthRoleAssessor:
			if currentRole != RoleAssessor && currentRole != RoleAdmin {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		default:
			if currentRole != role {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		}

		return handler(c)
	}
}
