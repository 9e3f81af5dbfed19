package domain

import "time"

// SystemSender is the sender sentinel for service-generated messages.
const SystemSender = "system"

// SystemSenderName is the display name used for system messages.
const SystemSenderName = "System"

// FileRef describes an attachment carried by a message.
type FileRef struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

// ChatMessage is one entry in a chat's append-only log. Seq is assigned by the
// store and is strictly increasing within a chat.
type ChatMessage struct {
	ID         string
	ChatID     string
	Seq        int64
	Sender     string
	SenderName string
	SenderRole Role
	Body       string
	File       *FileRef
	IsSystem   bool
	CreatedAt  time.Time
}

// NewSystemMessage builds an unsaved system entry for the given chat.
func NewSystemMessage(chatID, body string) ChatMessage {
	return ChatMessage{
		ChatID:     chatID,
		Sender:     SystemSender,
		SenderName: SystemSenderName,
		SenderRole: RoleSystem,
		Body:       body,
		IsSystem:   true,
	}
}
