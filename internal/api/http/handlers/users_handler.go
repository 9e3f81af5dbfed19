package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/api/dto"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/service"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

// UsersHandler manages user lookup and moderation endpoints.
type UsersHandler struct {
	users      repository.UserRepository
	moderation *service.ModerationService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users repository.UserRepository, moderation *service.ModerationService) *UsersHandler {
	return &UsersHandler{users: users, moderation: moderation}
}

// ListUsers GET /users. Admin only (route guarded).
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": items})
}

// GetUser GET /users/:username. Staff and the account owner get the full
// record; everyone else a public subset.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	username := strings.ToLower(c.Params("username"))

	user, err := h.users.GetByUsername(c.Context(), username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return apperrors.MapError(err)
	}

	if !principal.User.Role.IsStaff() && principal.User.Username != user.Username {
		return c.JSON(fiber.Map{"user": dto.PublicUserResponse{
			Username:  user.Username,
			Faction:   user.Faction,
			CreatedAt: user.CreatedAt,
		}})
	}
	return c.JSON(fiber.Map{"user": userResponse(user)})
}

// Ban POST /users/:username/ban.
func (h *UsersHandler) Ban(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	target, err := h.moderation.Ban(c.Context(), principal.User, c.Params("username"), req.Until, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": userResponse(target)})
}

// Unban POST /users/:username/unban.
func (h *UsersHandler) Unban(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	target, err := h.moderation.Unban(c.Context(), principal.User, c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": userResponse(target)})
}

// Mute POST /users/:username/mute.
func (h *UsersHandler) Mute(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.MuteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Duration == "" {
		return apperrors.NewValidationError("mute duration required", nil)
	}

	target, err := h.moderation.Mute(c.Context(), principal.User, c.Params("username"), req.Duration, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": userResponse(target)})
}

// Unmute POST /users/:username/unmute.
func (h *UsersHandler) Unmute(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	target, err := h.moderation.Unmute(c.Context(), principal.User, c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": userResponse(target)})
}

// Warn POST /users/:username/warn.
func (h *UsersHandler) Warn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.WarnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	count, autoBanned, err := h.moderation.Warn(c.Context(), principal.User, c.Params("username"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"warn": dto.WarnResult{Count: count, AutoBanApplied: autoBanned}})
}

// ChangeRole PATCH /users/:username/role. Admin only (route guarded).
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	target, err := h.moderation.ChangeRole(c.Context(), principal.User, c.Params("username"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": userResponse(target)})
}
