package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-escrow/internal/models"
)

// ChatRepository хранит сообщения чатов по контрактам.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository создаёт репозиторий сообщений.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create добавляет сообщение.
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	query := `
		INSERT INTO chat_messages (id, contract_id, sender_id, receiver_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING read, read_at, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		msg.ID, msg.ContractID, msg.SenderID, msg.ReceiverID, msg.Message,
	).Scan(&msg.Read, &msg.ReadAt, &msg.CreatedAt); err != nil {
		return fmt.Errorf("chat repository: create: %w", err)
	}
	return nil
}

// ListByContract возвращает историю сообщений в порядке создания.
func (r *ChatRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	query := `
		SELECT ` + chatMessageColumns + `
		FROM chat_messages
		WHERE contract_id = $1
		ORDER BY created_at ASC, id
	`
	if err := r.db.SelectContext(ctx, &messages, query, contractID); err != nil {
		return nil, fmt.Errorf("chat repository: list by contract: %w", err)
	}
	return messages, nil
}

// MarkRead отмечает прочитанными непрочитанные сообщения контракта,
// адресованные получателю и созданные не позже through.
// Возвращает число изменённых сообщений.
func (r *ChatRepository) MarkRead(ctx context.Context, contractID, receiverID uuid.UUID, through, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE chat_messages SET read = TRUE, read_at = $4
		WHERE contract_id = $1 AND receiver_id = $2 AND read = FALSE AND created_at <= $3
	`, contractID, receiverID, through, at)
	if err != nil {
		return 0, fmt.Errorf("chat repository: mark read: %w", err)
	}
	return res.RowsAffected()
}

// ListChats возвращает чаты пользователя по контрактам в работе
// с числом непрочитанных и последним сообщением.
func (r *ChatRepository) ListChats(ctx context.Context, userID uuid.UUID) ([]models.ChatSummary, error) {
	var rows []struct {
		models.ChatSummary
		LastID         *uuid.UUID `db:"last_id"`
		LastSenderID   *uuid.UUID `db:"last_sender_id"`
		LastReceiverID *uuid.UUID `db:"last_receiver_id"`
		LastText       *string    `db:"last_message"`
		LastRead       *bool      `db:"last_read"`
		LastReadAt     *time.Time `db:"last_read_at"`
		LastCreatedAt  *time.Time `db:"last_created_at"`
	}

	query := `
		SELECT c.id AS contract_id, c.gig_id, g.title AS gig_title, c.status AS contract_status,
		       cp.id AS counterpart_id, cp.name AS counterpart_name, c.created_at AS contract_created_at,
		       (SELECT COUNT(*) FROM chat_messages m
		         WHERE m.contract_id = c.id AND m.receiver_id = $1 AND m.read = FALSE) AS unread_count,
		       lm.id AS last_id, lm.sender_id AS last_sender_id, lm.receiver_id AS last_receiver_id,
		       lm.message AS last_message, lm.read AS last_read, lm.read_at AS last_read_at,
		       lm.created_at AS last_created_at
		FROM contracts c
		JOIN gigs g ON g.id = c.gig_id
		JOIN users cp ON cp.id = CASE WHEN c.client_id = $1 THEN c.freelancer_id ELSE c.client_id END
		LEFT JOIN LATERAL (
			SELECT id, sender_id, receiver_id, message, read, read_at, created_at
			FROM chat_messages
			WHERE contract_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		WHERE (c.client_id = $1 OR c.freelancer_id = $1) AND c.status IN ($2, $3)
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID,
		models.ContractStatusActive, models.ContractStatusWorkSubmitted); err != nil {
		return nil, fmt.Errorf("chat repository: list chats: %w", err)
	}

	chats := make([]models.ChatSummary, 0, len(rows))
	for _, row := range rows {
		summary := row.ChatSummary
		if row.LastID != nil {
			summary.LastMessage = &models.ChatMessage{
				ID:         *row.LastID,
				ContractID: summary.ContractID,
				SenderID:   *row.LastSenderID,
				ReceiverID: *row.LastReceiverID,
				Message:    *row.LastText,
				Read:       *row.LastRead,
				ReadAt:     row.LastReadAt,
				CreatedAt:  *row.LastCreatedAt,
			}
		}
		chats = append(chats, summary)
	}
	return chats, nil
}
