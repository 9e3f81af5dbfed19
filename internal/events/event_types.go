package events

import (
	"time"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventChatCreated       EventType = "chat_created"
	EventChatMessageAdded  EventType = "chat_message_added"
	EventChatStatusChanged EventType = "chat_status_changed"
	EventUserBanned        EventType = "user_banned"
	EventUserUnbanned      EventType = "user_unbanned"
	EventUserMuted         EventType = "user_muted"
	EventUserUnmuted       EventType = "user_unmuted"
	EventUserWarned        EventType = "user_warned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ChatCreatedPayload payload.
type ChatCreatedPayload struct {
	ChatID  string             `json:"chat_id"`
	Owner   string             `json:"owner"`
	Urgency domain.ChatUrgency `json:"urgency"`
}

// ChatMessageAddedPayload payload.
type ChatMessageAddedPayload struct {
	ChatID      string `json:"chat_id"`
	MessageID   string `json:"message_id"`
	Sender      string `json:"sender"`
	IsSystem    bool   `json:"is_system"`
	BodyPreview string `json:"body_preview"`
}

// ChatStatusChangedPayload payload.
type ChatStatusChangedPayload struct {
	ChatID    string            `json:"chat_id"`
	OldStatus domain.ChatStatus `json:"old_status"`
	NewStatus domain.ChatStatus `json:"new_status"`
}

// ModerationPayload covers ban/mute/warn actions against a user.
type ModerationPayload struct {
	Target     string     `json:"target"`
	Reason     string     `json:"reason,omitempty"`
	Until      *time.Time `json:"until,omitempty"`
	WarnCount  int        `json:"warn_count,omitempty"`
	AutoBanned bool       `json:"auto_banned,omitempty"`
}
