package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository/common"
)

// ProposalRepository - чтение предложений вне транзакций.
type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return common.GetOne[models.Proposal](ctx, r.db, ErrProposalNotFound,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
}

// ListByGig возвращает предложения по заказу, самые дорогие первыми.
func (r *ProposalRepository) ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.ProposalWithFreelancer, error) {
	proposals := []models.ProposalWithFreelancer{}
	query := `
		SELECT p.id, p.gig_id, p.freelancer_id, p.cover_letter, p.proposed_amount, p.delivery_days,
		       p.status, p.created_at, p.updated_at,
		       u.name AS freelancer_name, u.rating AS freelancer_rating,
		       u.total_reviews AS freelancer_total_reviews
		FROM proposals p
		JOIN users u ON u.id = p.freelancer_id
		WHERE p.gig_id = $1
		ORDER BY p.proposed_amount DESC, p.created_at ASC
	`
	if err := r.db.SelectContext(ctx, &proposals, query, gigID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by gig: %w", err)
	}
	return proposals, nil
}

// ListByFreelancer возвращает предложения исполнителя.
func (r *ProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	proposals := []models.Proposal{}
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE freelancer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &proposals, query, freelancerID); err != nil {
		return nil, fmt.Errorf("proposal repository: list by freelancer: %w", err)
	}
	return proposals, nil
}
