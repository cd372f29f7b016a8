package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gig-escrow/internal/http/handlers/common"
	"github.com/ignatzorin/gig-escrow/internal/service"
)

// ChatHandler обслуживает историю переписки по контрактам.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler создаёт хэндлер чата.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// CreateMessageRequest - тело POST /chats/messages.
type CreateMessageRequest struct {
	ContractID uuid.UUID `json:"contract_id" binding:"required"`
	Message    string    `json:"message" binding:"required"`
}

// ListChats обрабатывает GET /chats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	chats, err := h.chat.ListChats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": chats})
}

// ListMessages обрабатывает GET /chats/:contractId/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contractID, err := common.ParseUUIDParam(c, "contractId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	messages, err := h.chat.ListMessages(c.Request.Context(), contractID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// CreateMessage обрабатывает POST /chats/messages.
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req CreateMessageRequest
	if err := common.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	msg, err := h.chat.CreateMessage(c.Request.Context(), req.ContractID, userID, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
