package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalUser     = "user"
)

// PermissionChecker is satisfied by *auth.RBACService.
type PermissionChecker interface {
	CheckPermission(role domain.UserRole, resource, action string) bool
}

// AuthRequired validates a bearer access token. Websocket clients that cannot
// set headers may pass it as the "token" query parameter instead.
func AuthRequired(service ports.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		user, err := service.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, user.Role)
		c.Locals(LocalUser, user)

		return c.Next()
	}
}

// RequirePermission must run after AuthRequired.
func RequirePermission(rbac PermissionChecker, resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(domain.UserRole)
		if !rbac.CheckPermission(role, resource, action) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// BearerToken exposes the token extraction to handlers such as logout.
func BearerToken(c *fiber.Ctx) (string, bool) {
	return bearerToken(c)
}
