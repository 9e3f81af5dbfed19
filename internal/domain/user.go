package domain

import (
	"regexp"
	"time"
)

// Role enumerates account roles. Staff is moderator or admin.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	// RoleSystem is a message-author sentinel, never assigned to an account.
	RoleSystem Role = "system"
)

// IsStaff reports whether the role carries moderation powers.
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// ValidRole reports whether the role is assignable to an account.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// BanState captures an account ban. Until == nil means permanent.
type BanState struct {
	Active bool
	Until  *time.Time
	Reason string
}

// MuteState captures a time-bounded posting suspension.
type MuteState struct {
	Until  *time.Time
	Reason string
}

// Warn is a single recorded infraction.
type Warn struct {
	Reason string
	At     time.Time
}

// WarnState accumulates infractions. Three warns trigger a 30-day ban.
type WarnState struct {
	Count   int
	History []Warn
}

// User is the single source of truth for identity, role and sanction state.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Faction      Faction
	Discord      string
	Role         Role
	Ban          BanState
	Mute         MuteState
	Warns        WarnState
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// IsBanned reports whether the ban is in effect at the given instant.
func (u *User) IsBanned(now time.Time) bool {
	if !u.Ban.Active {
		return false
	}
	if u.Ban.Until == nil {
		return true
	}
	return now.Before(*u.Ban.Until)
}

// IsMuted reports whether the mute is in effect at the given instant.
func (u *User) IsMuted(now time.Time) bool {
	if u.Mute.Until == nil {
		return false
	}
	return now.Before(*u.Mute.Until)
}

// DisplayName renders the username with the role suffix shown in chat threads.
func (u *User) DisplayName() string {
	switch u.Role {
	case RoleAdmin:
		return u.Username + " (Administrator)"
	case RoleModerator:
		return u.Username + " (Moderator)"
	default:
		return u.Username
	}
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// ValidUsername reports whether the username satisfies the account constraints.
func ValidUsername(name string) bool {
	return usernameRe.MatchString(name)
}
