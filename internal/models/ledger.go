package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Escrow хранит средства, заблокированные под контракт.
type Escrow struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	ContractID uuid.UUID       `db:"contract_id" json:"contract_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	FromUserID uuid.UUID       `db:"from_user_id" json:"from_user_id"`
	ToUserID   uuid.UUID       `db:"to_user_id" json:"to_user_id"`
	Status     string          `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction - неизменяемая запись журнала операций по кошельку.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Type        string          `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Source      string          `db:"source" json:"source"`
	ReferenceID *uuid.UUID      `db:"reference_id" json:"reference_id,omitempty"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Wallet - сводка по кошельку пользователя.
type Wallet struct {
	UserID       uuid.UUID       `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	LockedEscrow decimal.Decimal `json:"locked_escrow"`
}
