package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/events"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

// ModerationService owns the sanction rules: bans, mutes, warns and the
// three-warns escalation. The user repository holds state and derived
// predicates; the rules live here.
type ModerationService struct {
	users      repository.UserRepository
	chats      repository.ChatRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ModerationDependencies bundles repositories for the moderation service.
type ModerationDependencies struct {
	UserRepo   repository.UserRepository
	ChatRepo   repository.ChatRepository
	Dispatcher events.Dispatcher
}

// NewModerationService constructs the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	return &ModerationService{
		users:      deps.UserRepo,
		chats:      deps.ChatRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Ban blocks the target account until the given instant, or permanently when
// until is nil. Moderators may not ban admins.
func (s *ModerationService) Ban(ctx context.Context, actor *domain.User, targetUsername string, until *time.Time, reason string) (*domain.User, error) {
	target, err := s.loadTarget(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if !auth.CanBan(actor, target) {
		return nil, apperrors.NewForbidden("insufficient rights to ban this user")
	}

	ban := domain.BanState{Active: true, Until: until, Reason: reason}
	if err := s.users.SetBan(ctx, target.Username, ban); err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Ban = ban

	s.publish(ctx, events.EventUserBanned, actor.Username, events.ModerationPayload{
		Target: target.Username,
		Reason: reason,
		Until:  until,
	})
	return target, nil
}

// Unban lifts the target's ban.
func (s *ModerationService) Unban(ctx context.Context, actor *domain.User, targetUsername string) (*domain.User, error) {
	target, err := s.loadTarget(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if !auth.CanBan(actor, target) {
		return nil, apperrors.NewForbidden("insufficient rights to unban this user")
	}

	if err := s.users.SetBan(ctx, target.Username, domain.BanState{}); err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Ban = domain.BanState{}

	s.publish(ctx, events.EventUserUnbanned, actor.Username, events.ModerationPayload{Target: target.Username})
	return target, nil
}

// Mute suspends the target's posting for the parsed duration. A bad duration
// string rejects the whole action.
func (s *ModerationService) Mute(ctx context.Context, actor *domain.User, targetUsername, durationStr, reason string) (*domain.User, error) {
	if !auth.CanMute(actor) {
		return nil, apperrors.NewForbidden("moderator rights required")
	}
	dur, err := domain.ParseDuration(durationStr)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid mute duration", map[string]any{"duration": durationStr})
	}
	target, err := s.loadTarget(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	until := s.now().Add(dur)
	mute := domain.MuteState{Until: &until, Reason: reason}
	if err := s.users.SetMute(ctx, target.Username, mute); err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Mute = mute

	s.publish(ctx, events.EventUserMuted, actor.Username, events.ModerationPayload{
		Target: target.Username,
		Reason: reason,
		Until:  &until,
	})
	return target, nil
}

// MuteFromChat applies a mute issued inside a chat thread and records the
// action as a system message in that chat. The announcement replaces the
// issuing message; the directive itself is never stored.
func (s *ModerationService) MuteFromChat(ctx context.Context, actor *domain.User, chatID, targetUsername, durationStr, reason string) error {
	target, err := s.Mute(ctx, actor, targetUsername, durationStr, reason)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("User %s has been muted for %s.", target.Username, durationStr)
	if reason != "" {
		body += " Reason: " + reason
	}
	sysMsg := domain.NewSystemMessage(chatID, body)
	if err := s.chats.AppendMessage(ctx, chatID, &sysMsg); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("chat", map[string]any{"id": chatID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Unmute clears the target's mute.
func (s *ModerationService) Unmute(ctx context.Context, actor *domain.User, targetUsername string) (*domain.User, error) {
	if !auth.CanMute(actor) {
		return nil, apperrors.NewForbidden("moderator rights required")
	}
	target, err := s.loadTarget(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetMute(ctx, target.Username, domain.MuteState{}); err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Mute = domain.MuteState{}

	s.publish(ctx, events.EventUserUnmuted, actor.Username, events.ModerationPayload{Target: target.Username})
	return target, nil
}

// Warn records an infraction. The repository applies the warn increment and
// the escalation ban in one atomic step, so concurrent warns cannot both skip
// the threshold.
func (s *ModerationService) Warn(ctx context.Context, actor *domain.User, targetUsername, reason string) (count int, autoBanned bool, err error) {
	if !auth.CanWarn(actor) {
		return 0, false, apperrors.NewForbidden("moderator rights required")
	}
	target, err := s.loadTarget(ctx, targetUsername)
	if err != nil {
		return 0, false, err
	}

	count, autoBanned, err = s.users.AddWarn(ctx, target.Username, reason, s.now())
	if err != nil {
		return 0, false, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserWarned, actor.Username, events.ModerationPayload{
		Target:     target.Username,
		Reason:     reason,
		WarnCount:  count,
		AutoBanned: autoBanned,
	})
	return count, autoBanned, nil
}

// ChangeRole assigns a new role to the target. Admin only.
func (s *ModerationService) ChangeRole(ctx context.Context, actor *domain.User, targetUsername string, role domain.Role) (*domain.User, error) {
	if !auth.CanChangeRole(actor) {
		return nil, apperrors.NewForbidden("admin rights required")
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	target, err := s.loadTarget(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRole(ctx, target.Username, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	target.Role = role
	return target, nil
}

func (s *ModerationService) loadTarget(ctx context.Context, username string) (*domain.User, error) {
	target, err := s.users.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

func (s *ModerationService) publish(ctx context.Context, eventType events.EventType, actor string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
