package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/events"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/persistence"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

// MuteCommandPrefix marks a staff message body as an in-band mute directive.
// Such bodies are parsed and dispatched to the moderation service before
// persistence; they are never stored as the issuer's message.
const MuteCommandPrefix = "/mute "

// ChatService coordinates support chat workflows.
type ChatService struct {
	chats      repository.ChatRepository
	moderation *ModerationService
	cache      *persistence.ChatCache
	dispatcher events.Dispatcher
	maxOpen    int
	now        func() time.Time
}

// ChatDependencies bundles collaborators for the chat service.
type ChatDependencies struct {
	ChatRepo   repository.ChatRepository
	Moderation *ModerationService
	Cache      *persistence.ChatCache
	Dispatcher events.Dispatcher
	MaxOpen    int
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	maxOpen := deps.MaxOpen
	if maxOpen <= 0 {
		maxOpen = 3
	}
	return &ChatService{
		chats:      deps.ChatRepo,
		moderation: deps.Moderation,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		maxOpen:    maxOpen,
		now:        time.Now,
	}
}

// CreateChat opens a new support chat for the owner, seeded with the rules
// system message. Muted users cannot open chats; non-staff are bounded by the
// open-chat quota.
func (s *ChatService) CreateChat(ctx context.Context, owner *domain.User, discord, issue string, urgency domain.ChatUrgency) (*domain.Chat, error) {
	discord = strings.TrimSpace(discord)
	issue = strings.TrimSpace(issue)
	if discord == "" || issue == "" {
		return nil, apperrors.NewValidationError("discord and issue are required", nil)
	}
	if urgency == "" {
		urgency = domain.ChatUrgencyMedium
	}
	if !domain.ValidChatUrgency(urgency) {
		return nil, apperrors.NewValidationError("invalid urgency", map[string]any{"urgency": urgency})
	}

	if owner.IsMuted(s.now()) {
		return nil, apperrors.NewMuted("you are muted", muteDetails(owner.Mute))
	}

	if !owner.Role.IsStaff() {
		open, err := s.chats.CountOpenByOwner(ctx, owner.Username)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if open >= s.maxOpen {
			return nil, apperrors.NewQuotaExceeded(
				fmt.Sprintf("open chat limit reached (%d); close one of the existing chats", s.maxOpen),
				map[string]any{"max_open": s.maxOpen})
		}
	}

	chat := &domain.Chat{
		OwnerUsername: owner.Username,
		Discord:       discord,
		Issue:         issue,
		Urgency:       urgency,
		Status:        domain.ChatStatusOpen,
	}
	seed := domain.NewSystemMessage("", domain.ChatRules)
	if err := s.chats.Create(ctx, chat, seed); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventChatCreated, owner.Username, events.ChatCreatedPayload{
		ChatID:  chat.ID,
		Owner:   owner.Username,
		Urgency: chat.Urgency,
	})
	return chat, nil
}

// ListChats returns every chat for staff callers and only the caller's own
// chats otherwise.
func (s *ChatService) ListChats(ctx context.Context, caller *domain.User) ([]domain.Chat, error) {
	var (
		chats []domain.Chat
		err   error
	)
	if caller.Role.IsStaff() {
		chats, err = s.chats.ListAll(ctx)
	} else {
		chats, err = s.chats.ListByOwner(ctx, caller.Username)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return chats, nil
}

// GetChat fetches one chat, enforcing visibility.
func (s *ChatService) GetChat(ctx context.Context, caller *domain.User, chatID string) (*domain.Chat, error) {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewChat(caller, chat) {
		return nil, apperrors.NewForbidden("no access to this chat")
	}
	return chat, nil
}

// PostMessage appends a message to the chat, or intercepts a staff mute
// directive. Returns the refreshed chat.
func (s *ChatService) PostMessage(ctx context.Context, sender *domain.User, chatID, body string, file *domain.FileRef) (*domain.Chat, error) {
	body = strings.TrimSpace(body)
	if body == "" && file == nil {
		return nil, apperrors.NewEmptyMessage()
	}

	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewChat(sender, chat) {
		return nil, apperrors.NewForbidden("no access to this chat")
	}

	isStaff := sender.Role.IsStaff()
	if chat.Status == domain.ChatStatusClosed && !isStaff {
		return nil, apperrors.NewChatClosed()
	}
	if sender.IsMuted(s.now()) {
		return nil, apperrors.NewMuted("you are muted", muteDetails(sender.Mute))
	}

	if isStaff && strings.HasPrefix(body, MuteCommandPrefix) {
		if err := s.dispatchMuteCommand(ctx, sender, chat.ID, body); err != nil {
			return nil, err
		}
		return s.refresh(ctx, chat.ID)
	}

	if body == "" && file != nil {
		body = "Attached file: " + file.Name
	}
	msg := domain.ChatMessage{
		Sender:     sender.Username,
		SenderName: sender.DisplayName(),
		SenderRole: sender.Role,
		Body:       body,
		File:       file,
	}
	if err := s.chats.AppendMessage(ctx, chat.ID, &msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, chat.ID)

	s.publish(ctx, events.EventChatMessageAdded, sender.Username, events.ChatMessageAddedPayload{
		ChatID:      chat.ID,
		MessageID:   msg.ID,
		Sender:      msg.Sender,
		IsSystem:    msg.IsSystem,
		BodyPreview: bodyPreview(msg.Body, 120),
	})
	return s.refresh(ctx, chat.ID)
}

// UpdateChat edits the issue text and/or flips the status. Staff only for
// effective changes; a status flip records a system message in the same
// transaction as the status update.
func (s *ChatService) UpdateChat(ctx context.Context, caller *domain.User, chatID string, issue *string, status *domain.ChatStatus) (*domain.Chat, error) {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewChat(caller, chat) {
		return nil, apperrors.NewForbidden("no access to this chat")
	}
	if (issue != nil || status != nil) && !auth.CanModerateChats(caller) {
		return nil, apperrors.NewForbidden("moderator rights required")
	}

	if issue != nil {
		trimmed := strings.TrimSpace(*issue)
		if trimmed == "" {
			return nil, apperrors.NewValidationError("issue cannot be empty", nil)
		}
		if err := s.chats.UpdateIssue(ctx, chat.ID, trimmed); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if status != nil {
		if !domain.ValidChatStatus(*status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *status})
		}
		if *status != chat.Status {
			verb := "reopened"
			if *status == domain.ChatStatusClosed {
				verb = "closed"
			}
			sysMsg := domain.NewSystemMessage(chat.ID, fmt.Sprintf("Chat %s by staff.", verb))
			if err := s.chats.SetStatus(ctx, chat.ID, *status, sysMsg); err != nil {
				return nil, apperrors.MapError(err)
			}
			s.publish(ctx, events.EventChatStatusChanged, caller.Username, events.ChatStatusChangedPayload{
				ChatID:    chat.ID,
				OldStatus: chat.Status,
				NewStatus: *status,
			})
		}
	}

	s.cache.Invalidate(ctx, chat.ID)
	return s.refresh(ctx, chat.ID)
}

// dispatchMuteCommand parses "/mute <username> <duration> [reason...]" and
// hands it to the moderation service.
func (s *ChatService) dispatchMuteCommand(ctx context.Context, actor *domain.User, chatID, body string) error {
	parts := strings.Fields(strings.TrimPrefix(body, MuteCommandPrefix))
	if len(parts) < 2 {
		return apperrors.NewValidationError("usage: /mute <username> <duration> <reason>", nil)
	}
	target := parts[0]
	duration := parts[1]
	reason := strings.Join(parts[2:], " ")

	if err := s.moderation.MuteFromChat(ctx, actor, chatID, target, duration, reason); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, chatID)
	return nil
}

// loadChat reads through the cache; the store stays authoritative.
func (s *ChatService) loadChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	if chat, ok := s.cache.Get(ctx, chatID); ok {
		return chat, nil
	}
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("chat", map[string]any{"id": chatID})
		}
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, chat)
	return chat, nil
}

// refresh reloads the chat after a mutation, bypassing the cache.
func (s *ChatService) refresh(ctx context.Context, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, chat)
	return chat, nil
}

func (s *ChatService) publish(ctx context.Context, eventType events.EventType, actor string, payload any) {
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

func muteDetails(mute domain.MuteState) map[string]any {
	details := map[string]any{}
	if mute.Until != nil {
		details["until"] = mute.Until
	}
	if mute.Reason != "" {
		details["reason"] = mute.Reason
	}
	return details
}

// bodyPreview truncates on a rune boundary so event payloads stay valid UTF-8.
func bodyPreview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	cut := max
	ellipsis := ""
	if max > 3 {
		cut = max - 3
		ellipsis = "..."
	}
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + ellipsis
}
