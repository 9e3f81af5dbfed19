package dto

import (
	"time"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

// CreateChatRequest payload.
type CreateChatRequest struct {
	Discord string             `json:"discord"`
	Issue   string             `json:"issue"`
	Urgency domain.ChatUrgency `json:"urgency"`
}

// PostMessageRequest payload.
type PostMessageRequest struct {
	Message string          `json:"message"`
	File    *FileRefRequest `json:"file,omitempty"`
}

// FileRefRequest describes an attachment.
type FileRefRequest struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

// UpdateChatRequest payload; both fields optional.
type UpdateChatRequest struct {
	Issue  *string            `json:"issue,omitempty"`
	Status *domain.ChatStatus `json:"status,omitempty"`
}

// ChatResponse provides the full chat with its message log.
type ChatResponse struct {
	ID        string             `json:"id"`
	Owner     string             `json:"owner"`
	Discord   string             `json:"discord"`
	Issue     string             `json:"issue"`
	Urgency   domain.ChatUrgency `json:"urgency"`
	Status    domain.ChatStatus  `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Messages  []MessageResponse  `json:"messages"`
}

// MessageResponse represents one thread message.
type MessageResponse struct {
	ID         string          `json:"id"`
	Sender     string          `json:"sender"`
	SenderName string          `json:"sender_name"`
	SenderRole domain.Role     `json:"sender_role"`
	Body       string          `json:"message"`
	File       *domain.FileRef `json:"file,omitempty"`
	IsSystem   bool            `json:"is_system"`
	CreatedAt  time.Time       `json:"timestamp"`
}
