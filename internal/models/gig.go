package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gig описывает заказ, опубликованный клиентом.
type Gig struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ClientID    uuid.UUID       `db:"client_id" json:"client_id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Budget      decimal.Decimal `db:"budget" json:"budget"`
	Status      string          `db:"status" json:"status"`
	DeadlineAt  *time.Time      `db:"deadline_at" json:"deadline_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Proposal представляет отклик фрилансера на заказ.
type Proposal struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	GigID          uuid.UUID       `db:"gig_id" json:"gig_id"`
	FreelancerID   uuid.UUID       `db:"freelancer_id" json:"freelancer_id"`
	CoverLetter    string          `db:"cover_letter" json:"cover_letter"`
	ProposedAmount decimal.Decimal `db:"proposed_amount" json:"proposed_amount"`
	DeliveryDays   int             `db:"delivery_days" json:"delivery_days"`
	Status         string          `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ProposalWithFreelancer - предложение вместе с краткими данными автора.
type ProposalWithFreelancer struct {
	Proposal
	FreelancerName         string          `db:"freelancer_name" json:"freelancer_name"`
	FreelancerRating       decimal.Decimal `db:"freelancer_rating" json:"freelancer_rating"`
	FreelancerTotalReviews int             `db:"freelancer_total_reviews" json:"freelancer_total_reviews"`
}
