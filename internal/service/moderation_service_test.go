package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

func seedUser(t *testing.T, users *memUserRepo, username string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		PasswordHash: "x",
		Faction:      domain.FactionHanza,
		Role:         role,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func newTestModerationService(users *memUserRepo, chats *memChatRepo) *ModerationService {
	return NewModerationService(ModerationDependencies{UserRepo: users, ChatRepo: chats})
}

func TestWarnEscalationBansOnThird(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	mod := seedUser(t, users, "mod_1", domain.RoleModerator)
	seedUser(t, users, "scout_1", domain.RoleUser)

	for i := 1; i <= 2; i++ {
		count, autoBanned, err := svc.Warn(ctx, mod, "scout_1", "flood")
		require.NoError(t, err)
		require.Equal(t, i, count)
		require.False(t, autoBanned)
	}
	target, err := users.GetByUsername(ctx, "scout_1")
	require.NoError(t, err)
	require.False(t, target.IsBanned(fixed), "two warns must not ban")

	count, autoBanned, err := svc.Warn(ctx, mod, "scout_1", "flood again")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.True(t, autoBanned)

	target, err = users.GetByUsername(ctx, "scout_1")
	require.NoError(t, err)
	require.True(t, target.IsBanned(fixed))
	require.Equal(t, repository.WarnBanReason, target.Ban.Reason)
	require.NotNil(t, target.Ban.Until)
	require.Equal(t, fixed.Add(repository.WarnBanWindow), *target.Ban.Until)
	require.Len(t, target.Warns.History, 3)
}

func TestWarnRequiresStaff(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	ctx := context.Background()

	regular := seedUser(t, users, "scout_1", domain.RoleUser)
	seedUser(t, users, "scout_2", domain.RoleUser)

	_, _, err := svc.Warn(ctx, regular, "scout_2", "whatever")
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestBanHierarchy(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	ctx := context.Background()

	admin := seedUser(t, users, "admin", domain.RoleAdmin)
	mod := seedUser(t, users, "mod_1", domain.RoleModerator)
	seedUser(t, users, "scout_1", domain.RoleUser)

	// Moderators cannot touch admins.
	_, err := svc.Ban(ctx, mod, "admin", nil, "coup attempt")
	requireCode(t, err, apperrors.CodeForbidden)

	// But they can ban regular users.
	banned, err := svc.Ban(ctx, mod, "scout_1", nil, "spam")
	require.NoError(t, err)
	require.True(t, banned.Ban.Active)
	require.Nil(t, banned.Ban.Until, "nil until means permanent")

	// Admins can ban moderators.
	until := time.Now().Add(24 * time.Hour)
	banned, err = svc.Ban(ctx, admin, "mod_1", &until, "abuse")
	require.NoError(t, err)
	require.True(t, banned.Ban.Active)

	unbanned, err := svc.Unban(ctx, admin, "scout_1")
	require.NoError(t, err)
	require.False(t, unbanned.Ban.Active)
}

func TestBanUnknownTarget(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	mod := seedUser(t, users, "mod_1", domain.RoleModerator)

	_, err := svc.Ban(context.Background(), mod, "ghost", nil, "")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestMuteParsesDuration(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	mod := seedUser(t, users, "mod_1", domain.RoleModerator)
	seedUser(t, users, "scout_1", domain.RoleUser)

	muted, err := svc.Mute(ctx, mod, "scout_1", "30m", "flood")
	require.NoError(t, err)
	require.NotNil(t, muted.Mute.Until)
	require.Equal(t, fixed.Add(30*time.Minute), *muted.Mute.Until)
	require.True(t, muted.IsMuted(fixed))
	require.False(t, muted.IsMuted(fixed.Add(31*time.Minute)), "mute expires on its own")

	unmuted, err := svc.Unmute(ctx, mod, "scout_1")
	require.NoError(t, err)
	require.False(t, unmuted.IsMuted(fixed))
}

func TestMuteRejectsBadDuration(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	ctx := context.Background()

	mod := seedUser(t, users, "mod_1", domain.RoleModerator)
	seedUser(t, users, "scout_1", domain.RoleUser)

	_, err := svc.Mute(ctx, mod, "scout_1", "soon", "flood")
	requireCode(t, err, apperrors.CodeValidationFailed)

	target, err := users.GetByUsername(ctx, "scout_1")
	require.NoError(t, err)
	require.Nil(t, target.Mute.Until, "a rejected mute must not leave any state behind")
}

func TestMuteFromChatRecordsAnnouncement(t *testing.T) {
	users := newMemUserRepo()
	chats := newMemChatRepo()
	svc := newTestModerationService(users, chats)
	ctx := context.Background()

	mod := seedUser(t, users, "mod_1", domain.RoleModerator)
	seedUser(t, users, "scout_1", domain.RoleUser)

	chat := &domain.Chat{OwnerUsername: "scout_1", Discord: "d", Issue: "i", Urgency: domain.ChatUrgencyLow, Status: domain.ChatStatusOpen}
	require.NoError(t, chats.Create(ctx, chat, domain.NewSystemMessage("", domain.ChatRules)))

	require.NoError(t, svc.MuteFromChat(ctx, mod, chat.ID, "scout_1", "1h", "profanity"))

	stored, err := chats.GetByID(ctx, chat.ID)
	require.NoError(t, err)
	last := stored.Messages[len(stored.Messages)-1]
	require.True(t, last.IsSystem)
	require.Equal(t, domain.SystemSender, last.Sender)
	require.Contains(t, last.Body, "scout_1 has been muted for 1h")
	require.Contains(t, last.Body, "Reason: profanity")
}

func TestChangeRole(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestModerationService(users, newMemChatRepo())
	ctx := context.Background()

	admin := seedUser(t, users, "admin", domain.RoleAdmin)
	mod := seedUser(t, users, "mod_1", domain.RoleModerator)
	seedUser(t, users, "scout_1", domain.RoleUser)

	promoted, err := svc.ChangeRole(ctx, admin, "scout_1", domain.RoleModerator)
	require.NoError(t, err)
	require.Equal(t, domain.RoleModerator, promoted.Role)

	_, err = svc.ChangeRole(ctx, mod, "scout_1", domain.RoleUser)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.ChangeRole(ctx, admin, "scout_1", "overlord")
	requireCode(t, err, apperrors.CodeValidationFailed)
}
