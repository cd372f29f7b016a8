package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository/common"
)

// LedgerRepository - чтение эскроу и журнала операций.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository создаёт репозиторий журнала.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetEscrowByContract возвращает эскроу контракта.
func (r *LedgerRepository) GetEscrowByContract(ctx context.Context, contractID uuid.UUID) (*models.Escrow, error) {
	return common.GetOne[models.Escrow](ctx, r.db, ErrEscrowNotFound,
		`SELECT `+escrowColumns+` FROM escrows WHERE contract_id = $1`, contractID)
}

// LockedAmount - сумма средств клиента, заблокированных в активных эскроу.
func (r *LedgerRepository) LockedAmount(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM escrows WHERE from_user_id = $1 AND status = $2`,
		userID, models.EscrowStatusLocked)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger repository: locked amount: %w", err)
	}
	return total, nil
}

// ListTransactions возвращает операции пользователя, новые первыми.
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("ledger repository: list transactions: %w", err)
	}
	return txs, nil
}
