package middleware

import (
	"strings"

	"dungji/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRole     = "role"
)

// TokenValidator validates access tokens presented by API clients.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (jwt.MapClaims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT access token.
func AuthRequired(validator TokenValidator, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := validator.ValidateAccessToken(parts[1])
		if err != nil {
			log.WithField("path", c.Path()).Debugf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   "token has no subject",
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, claims["username"])
		c.Locals(LocalRole, claims["role"])

		return c.Next()
	}
}

// UserID returns the authenticated caller set by AuthRequired, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// RequireRole admits callers whose token carries one of roles. It runs after
// AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		for _, allowed := range roles {
			if models.Role(role) == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "This action is not allowed for your account",
		})
	}
}
