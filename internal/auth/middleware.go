package auth

import (
	"errors"
	"strings"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/config"
	"procurement-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxUserNameKey = "user_name"
	CtxEmailKey    = "user_email"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Principal is the authenticated caller of a request.
type Principal struct {
	ID       uint
	Email    string
	FullName string
	Role     models.UserRole
}

func (p Principal) Actor() audit.Actor {
	return audit.Actor{ID: p.ID, Name: p.FullName}
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxUserNameKey, claims.FullName)
		c.Locals(CtxEmailKey, claims.Email)

		return c.Next()
	}
}

func RequireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role information missing")
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

// CurrentUser resolves the caller set by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (Principal, error) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || id == 0 {
		return Principal{}, ErrNotAuthenticated
	}
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	name, _ := c.Locals(CtxUserNameKey).(string)
	email, _ := c.Locals(CtxEmailKey).(string)
	return Principal{ID: id, Email: email, FullName: name, Role: role}, nil
}

// MustCurrentUser is CurrentUser for handlers that write; it fails with 401.
func MustCurrentUser(c *fiber.Ctx) (Principal, error) {
	p, err := CurrentUser(c)
	if err != nil {
		return Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return p, nil
}
