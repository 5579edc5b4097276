package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"docaudit/internal/rbac"
)

// Authorizer answers whether a user holds a permission.
type Authorizer interface {
	HasPermission(ctx context.Context, userID string, p rbac.Permission) (bool, error)
}

// RequirePermission must run after Auth. It rejects callers lacking p with 403.
func RequirePermission(authz Authorizer, p rbac.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := UserID(c)
		if uid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		ok, err := authz.HasPermission(c.UserContext(), uid, p)
		if err != nil {
			return err
		}
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "missing permission "+string(p))
		}
		return c.Next()
	}
}
