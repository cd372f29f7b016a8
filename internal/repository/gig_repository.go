package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository/common"
)

// GigRepository инкапсулирует работу с заказами.
type GigRepository struct {
	db *sqlx.DB
}

// NewGigRepository создаёт репозиторий заказов.
func NewGigRepository(db *sqlx.DB) *GigRepository {
	return &GigRepository{db: db}
}

// Create сохраняет новый заказ в статусе open.
func (r *GigRepository) Create(ctx context.Context, gig *models.Gig) error {
	if gig.ID == uuid.Nil {
		gig.ID = uuid.New()
	}
	query := `
		INSERT INTO gigs (id, client_id, title, description, budget, status, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		gig.ID, gig.ClientID, gig.Title, gig.Description, gig.Budget, gig.Status, gig.DeadlineAt,
	).Scan(&gig.CreatedAt, &gig.UpdatedAt); err != nil {
		return fmt.Errorf("gig repository: create: %w", err)
	}
	return nil
}

// GetByID возвращает заказ по ID.
func (r *GigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	return common.GetOne[models.Gig](ctx, r.db, ErrGigNotFound,
		`SELECT `+gigColumns+` FROM gigs WHERE id = $1`, id)
}

// ListOpen возвращает открытые заказы, новые первыми.
func (r *GigRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Gig, error) {
	gigs := []models.Gig{}
	query := `
		SELECT ` + gigColumns + `
		FROM gigs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &gigs, query, models.GigStatusOpen, limit, offset); err != nil {
		return nil, fmt.Errorf("gig repository: list open: %w", err)
	}
	return gigs, nil
}

// ListByClient возвращает заказы клиента.
func (r *GigRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error) {
	gigs := []models.Gig{}
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE client_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &gigs, query, clientID); err != nil {
		return nil, fmt.Errorf("gig repository: list by client: %w", err)
	}
	return gigs, nil
}
