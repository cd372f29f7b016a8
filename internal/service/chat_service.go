package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/validation"
)

// ChatRepository описывает хранилище сообщений.
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, contractID, receiverID uuid.UUID, through, at time.Time) (int64, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]models.ChatSummary, error)
}

// ChatService - сохранение и чтение переписки по контракту.
type ChatService struct {
	contracts ContractRepository
	messages  ChatRepository
	now       func() time.Time
}

// NewChatService создаёт сервис чата.
func NewChatService(contracts ContractRepository, messages ChatRepository) *ChatService {
	return &ChatService{contracts: contracts, messages: messages, now: time.Now}
}

// CreateMessage сохраняет сообщение от стороны контракта. Получатель - вторая сторона.
func (s *ChatService) CreateMessage(ctx context.Context, contractID, senderID uuid.UUID, text string) (*models.ChatMessage, error) {
	text, err := validation.ValidateRequired("сообщение", text, validation.MaxMessageLength)
	if err != nil {
		return nil, invalid(err)
	}

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, translateError(err)
	}
	if !contract.HasParty(senderID) {
		return nil, apperror.Forbidden("писать в чат могут только стороны контракта")
	}

	msg := &models.ChatMessage{
		ContractID: contract.ID,
		SenderID:   senderID,
		ReceiverID: contract.Counterpart(senderID),
		Message:    text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, translateError(err)
	}
	return msg, nil
}

// ListMessages возвращает историю переписки и отмечает прочитанными
// адресованные пользователю сообщения из этой выборки. Сообщения, пришедшие
// после чтения истории, остаются непрочитанными.
func (s *ChatService) ListMessages(ctx context.Context, contractID, userID uuid.UUID) ([]models.ChatMessage, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, translateError(err)
	}
	if !contract.HasParty(userID) {
		return nil, apperror.ErrContractNotFound
	}

	messages, err := s.messages.ListByContract(ctx, contractID)
	if err != nil {
		return nil, translateError(err)
	}

	if len(messages) == 0 {
		return messages, nil
	}

	readAt := s.now().UTC()
	through := messages[len(messages)-1].CreatedAt
	flipped, err := s.messages.MarkRead(ctx, contractID, userID, through, readAt)
	if err != nil {
		return nil, translateError(err)
	}
	if flipped > 0 {
		for i := range messages {
			if messages[i].ReceiverID == userID && !messages[i].Read {
				messages[i].Read = true
				messages[i].ReadAt = &readAt
			}
		}
	}
	return messages, nil
}

// ListChats возвращает чаты по контрактам в работе.
func (s *ChatService) ListChats(ctx context.Context, userID uuid.UUID) ([]models.ChatSummary, error) {
	chats, err := s.messages.ListChats(ctx, userID)
	if err != nil {
		return nil, translateError(err)
	}
	return chats, nil
}

// IsContractParty сообщает, является ли пользователь стороной контракта.
// Используется WebSocket relay для проверки подписки на канал контракта.
func (s *ChatService) IsContractParty(ctx context.Context, contractID, userID uuid.UUID) (bool, error) {
	ok, err := s.contracts.IsParty(ctx, contractID, userID)
	if err != nil {
		return false, translateError(err)
	}
	return ok, nil
}
