package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/api/dto"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/service"
	apperrors "github.com/XAKEP-CMEPTU/Coldfire-Site/pkg/util"
)

// ChatsHandler manages support chat endpoints.
type ChatsHandler struct {
	service *service.ChatService
}

// NewChatsHandler constructs the handler.
func NewChatsHandler(chatService *service.ChatService) *ChatsHandler {
	return &ChatsHandler{service: chatService}
}

// ListChats GET /chats.
func (h *ChatsHandler) ListChats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chats, err := h.service.ListChats(c.Context(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.ChatResponse, 0, len(chats))
	for i := range chats {
		items = append(items, chatResponse(&chats[i]))
	}
	return c.JSON(fiber.Map{"chats": items})
}

// GetChat GET /chats/:id.
func (h *ChatsHandler) GetChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	chat, err := h.service.GetChat(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"chat": chatResponse(chat)})
}

// CreateChat POST /chats.
func (h *ChatsHandler) CreateChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	chat, err := h.service.CreateChat(c.Context(), principal.User, req.Discord, req.Issue, req.Urgency)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"chat": chatResponse(chat)})
}

// PostMessage POST /chats/:id/messages.
func (h *ChatsHandler) PostMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var file *domain.FileRef
	if req.File != nil {
		file = &domain.FileRef{
			Name:     req.File.Name,
			Size:     req.File.Size,
			MimeType: req.File.MimeType,
			URL:      req.File.URL,
		}
	}

	chat, err := h.service.PostMessage(c.Context(), principal.User, c.Params("id"), req.Message, file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"chat": chatResponse(chat)})
}

// UpdateChat PATCH /chats/:id.
func (h *ChatsHandler) UpdateChat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	chat, err := h.service.UpdateChat(c.Context(), principal.User, c.Params("id"), req.Issue, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"chat": chatResponse(chat)})
}

func chatResponse(chat *domain.Chat) dto.ChatResponse {
	msgs := make([]dto.MessageResponse, 0, len(chat.Messages))
	for i := range chat.Messages {
		msg := &chat.Messages[i]
		msgs = append(msgs, dto.MessageResponse{
			ID:         msg.ID,
			Sender:     msg.Sender,
			SenderName: msg.SenderName,
			SenderRole: msg.SenderRole,
			Body:       msg.Body,
			File:       msg.File,
			IsSystem:   msg.IsSystem,
			CreatedAt:  msg.CreatedAt,
		})
	}
	return dto.ChatResponse{
		ID:        chat.ID,
		Owner:     chat.OwnerUsername,
		Discord:   chat.Discord,
		Issue:     chat.Issue,
		Urgency:   chat.Urgency,
		Status:    chat.Status,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
		Messages:  msgs,
	}
}
