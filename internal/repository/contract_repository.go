package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository/common"
)

// ContractRepository - чтение контрактов вне транзакций.
type ContractRepository struct {
	db *sqlx.DB
}

// NewContractRepository создаёт репозиторий контрактов.
func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractDetailsSelect = `
	SELECT c.id, c.gig_id, c.proposal_id, c.client_id, c.freelancer_id, c.agreed_amount, c.status,
	       c.submission_message, c.submission_file_url, c.submitted_at, c.rating, c.created_at, c.updated_at,
	       g.title AS gig_title, cu.name AS client_name, fu.name AS freelancer_name
	FROM contracts c
	JOIN gigs g ON g.id = c.gig_id
	JOIN users cu ON cu.id = c.client_id
	JOIN users fu ON fu.id = c.freelancer_id
`

// GetByID возвращает контракт по ID.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return common.GetOne[models.Contract](ctx, r.db, ErrContractNotFound,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
}

// GetDetails возвращает контракт с названием заказа и именами сторон.
func (r *ContractRepository) GetDetails(ctx context.Context, id uuid.UUID) (*models.ContractDetails, error) {
	return common.GetOne[models.ContractDetails](ctx, r.db, ErrContractNotFound,
		contractDetailsSelect+` WHERE c.id = $1`, id)
}

// GetDetailsByGig возвращает контракт, заключённый по заказу.
func (r *ContractRepository) GetDetailsByGig(ctx context.Context, gigID uuid.UUID) (*models.ContractDetails, error) {
	return common.GetOne[models.ContractDetails](ctx, r.db, ErrContractNotFound,
		contractDetailsSelect+` WHERE c.gig_id = $1`, gigID)
}

// ListForUser возвращает контракты, где пользователь - заказчик или исполнитель,
// новые первыми. Фильтр по статусу и исключение статуса необязательны.
func (r *ContractRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter models.ContractListFilter) ([]models.ContractDetails, error) {
	conditions := []string{"(c.client_id = $1 OR c.freelancer_id = $1)"}
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.ExcludeStatus != "" {
		args = append(args, filter.ExcludeStatus)
		conditions = append(conditions, fmt.Sprintf("c.status <> $%d", len(args)))
	}

	query := contractDetailsSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY c.created_at DESC`

	contracts := []models.ContractDetails{}
	if err := r.db.SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, fmt.Errorf("contract repository: list for user: %w", err)
	}
	return contracts, nil
}

// IsParty проверяет, является ли пользователь стороной контракта.
// Используется релеем чата для авторизации подписки.
func (r *ContractRepository) IsParty(ctx context.Context, contractID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM contracts WHERE id = $1 AND (client_id = $2 OR freelancer_id = $2)
		)
	`, contractID, userID)
	if err != nil {
		return false, fmt.Errorf("contract repository: is party: %w", err)
	}
	return ok, nil
}
