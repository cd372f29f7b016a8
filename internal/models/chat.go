package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage описывает сообщение в чате контракта.
type ChatMessage struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ContractID uuid.UUID  `db:"contract_id" json:"contract_id"`
	SenderID   uuid.UUID  `db:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID  `db:"receiver_id" json:"receiver_id"`
	Message    string     `db:"message" json:"message"`
	Read       bool       `db:"read" json:"read"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ChatSummary - элемент списка чатов пользователя.
type ChatSummary struct {
	ContractID        uuid.UUID    `db:"contract_id" json:"contract_id"`
	GigID             uuid.UUID    `db:"gig_id" json:"gig_id"`
	GigTitle          string       `db:"gig_title" json:"gig_title"`
	ContractStatus    string       `db:"contract_status" json:"contract_status"`
	CounterpartID     uuid.UUID    `db:"counterpart_id" json:"counterpart_id"`
	CounterpartName   string       `db:"counterpart_name" json:"counterpart_name"`
	UnreadCount       int          `db:"unread_count" json:"unread_count"`
	LastMessage       *ChatMessage `db:"-" json:"last_message,omitempty"`
	ContractCreatedAt time.Time    `db:"contract_created_at" json:"-"`
}
