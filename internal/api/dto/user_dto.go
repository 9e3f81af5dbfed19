package dto

import (
	"time"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

// BanResponse mirrors the user's ban state.
type BanResponse struct {
	Active bool       `json:"active"`
	Until  *time.Time `json:"until"`
	Reason string     `json:"reason,omitempty"`
}

// MuteResponse mirrors the user's mute state.
type MuteResponse struct {
	Until  *time.Time `json:"until"`
	Reason string     `json:"reason,omitempty"`
}

// WarnEntry is one recorded infraction.
type WarnEntry struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// WarnsResponse mirrors the user's warn state.
type WarnsResponse struct {
	Count   int         `json:"count"`
	History []WarnEntry `json:"history"`
}

// UserResponse is the full account view, shown to staff and the account owner.
type UserResponse struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Faction   domain.Faction `json:"faction"`
	Discord   string         `json:"discord"`
	Role      domain.Role    `json:"role"`
	IsAdmin   bool           `json:"is_admin"`
	IsMuted   bool           `json:"is_muted"`
	Ban       BanResponse    `json:"ban"`
	Mute      MuteResponse   `json:"mute"`
	Warns     WarnsResponse  `json:"warns"`
	CreatedAt time.Time      `json:"created_at"`
	LastLogin *time.Time     `json:"last_login,omitempty"`
}

// PublicUserResponse is the reduced view other users may see.
type PublicUserResponse struct {
	Username  string         `json:"username"`
	Faction   domain.Faction `json:"faction"`
	CreatedAt time.Time      `json:"created_at"`
}

// BanRequest payload for POST /users/:username/ban.
type BanRequest struct {
	Until  *time.Time `json:"until"`
	Reason string     `json:"reason"`
}

// MuteRequest payload for POST /users/:username/mute.
type MuteRequest struct {
	Duration string `json:"duration"`
	Reason   string `json:"reason"`
}

// WarnRequest payload for POST /users/:username/warn.
type WarnRequest struct {
	Reason string `json:"reason"`
}

// WarnResult reports whether the escalation ban fired.
type WarnResult struct {
	Count          int  `json:"count"`
	AutoBanApplied bool `json:"auto_ban_applied"`
}

// RoleRequest payload for PATCH /users/:username/role.
type RoleRequest struct {
	Role domain.Role `json:"role"`
}
