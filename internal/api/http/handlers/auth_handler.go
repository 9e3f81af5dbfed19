package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/api/dto"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/service"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

// AuthHandler manages registration, login and profile endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" || req.Faction == "" {
		return apperrors.NewValidationError("username, password and faction required", nil)
	}

	user, token, exp, err := h.service.Register(c.Context(), req.Username, req.Password, req.Faction, req.Discord)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, token, exp, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": userResponse(principal.User)})
}

// Logout POST /auth/logout. Tokens are stateless; clients discard them.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "logged out"})
}

// UpdateProfile PATCH /auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.service.UpdateProfile(c.Context(), principal.User, req.Faction, req.Discord)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": userResponse(user)})
}

func userResponse(user *domain.User) dto.UserResponse {
	warns := dto.WarnsResponse{Count: user.Warns.Count, History: []dto.WarnEntry{}}
	for _, w := range user.Warns.History {
		warns.History = append(warns.History, dto.WarnEntry{Reason: w.Reason, At: w.At})
	}
	return dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Faction:  user.Faction,
		Discord:  user.Discord,
		Role:     user.Role,
		IsAdmin:  user.Role == domain.RoleAdmin,
		IsMuted:  user.IsMuted(time.Now()),
		Ban: dto.BanResponse{
			Active: user.Ban.Active,
			Until:  user.Ban.Until,
			Reason: user.Ban.Reason,
		},
		Mute: dto.MuteResponse{
			Until:  user.Mute.Until,
			Reason: user.Mute.Reason,
		},
		Warns:     warns,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}
