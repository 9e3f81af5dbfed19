package dto

import (
	"time"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Faction  domain.Faction `json:"faction"`
	Discord  string         `json:"discord"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest payload for self-service profile edits.
type UpdateProfileRequest struct {
	Faction domain.Faction `json:"faction"`
	Discord string         `json:"discord"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
