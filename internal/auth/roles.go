package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

// RequireStaff ensures the caller is a moderator or admin.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Role.IsStaff() {
			return apperrors.NewForbidden("moderator rights required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.User.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin rights required")
		}
		return c.Next()
	}
}
