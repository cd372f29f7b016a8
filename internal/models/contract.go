package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract фиксирует договорённость по принятому предложению.
type Contract struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	GigID             uuid.UUID       `db:"gig_id" json:"gig_id"`
	ProposalID        uuid.UUID       `db:"proposal_id" json:"proposal_id"`
	ClientID          uuid.UUID       `db:"client_id" json:"client_id"`
	FreelancerID      uuid.UUID       `db:"freelancer_id" json:"freelancer_id"`
	AgreedAmount      decimal.Decimal `db:"agreed_amount" json:"agreed_amount"`
	Status            string          `db:"status" json:"status"`
	SubmissionMessage *string         `db:"submission_message" json:"submission_message,omitempty"`
	SubmissionFileURL *string         `db:"submission_file_url" json:"submission_file_url,omitempty"`
	SubmittedAt       *time.Time      `db:"submitted_at" json:"submitted_at,omitempty"`
	Rating            *int            `db:"rating" json:"rating,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// HasParty сообщает, является ли пользователь стороной контракта.
func (c *Contract) HasParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

// Counterpart возвращает вторую сторону контракта.
func (c *Contract) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.ClientID == userID {
		return c.FreelancerID
	}
	return c.ClientID
}

// ContractDetails - контракт с названием заказа и именами сторон.
type ContractDetails struct {
	Contract
	GigTitle       string `db:"gig_title" json:"gig_title"`
	ClientName     string `db:"client_name" json:"client_name"`
	FreelancerName string `db:"freelancer_name" json:"freelancer_name"`
}

// ContractListFilter задаёт фильтр списка контрактов пользователя.
type ContractListFilter struct {
	Status        string
	ExcludeStatus string
}
