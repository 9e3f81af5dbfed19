package auth

import "github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"

// Authorization predicates, evaluated per request. They are pure functions of
// the caller and target; handlers and services turn a false result into a
// FORBIDDEN error.

// CanViewChat allows staff and the chat owner.
func CanViewChat(caller *domain.User, chat *domain.Chat) bool {
	if caller == nil || chat == nil {
		return false
	}
	return caller.Role.IsStaff() || chat.OwnerUsername == caller.Username
}

// CanModerateChats gates issue edits and status changes.
func CanModerateChats(caller *domain.User) bool {
	return caller != nil && caller.Role.IsStaff()
}

// CanBan allows moderators to ban non-admins and admins to ban anyone.
func CanBan(caller, target *domain.User) bool {
	if caller == nil || target == nil || !caller.Role.IsStaff() {
		return false
	}
	if target.Role == domain.RoleAdmin {
		return caller.Role == domain.RoleAdmin
	}
	return true
}

// CanMute allows any staff member, any target.
func CanMute(caller *domain.User) bool {
	return caller != nil && caller.Role.IsStaff()
}

// CanWarn allows any staff member, any target.
func CanWarn(caller *domain.User) bool {
	return caller != nil && caller.Role.IsStaff()
}

// CanChangeRole is admin only.
func CanChangeRole(caller *domain.User) bool {
	return caller != nil && caller.Role == domain.RoleAdmin
}
