package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/models"
)

// UserReader читает пользователей.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetPublicProfile(ctx context.Context, id uuid.UUID) (*models.PublicProfile, error)
}

// LedgerReader читает журнал операций.
type LedgerReader interface {
	LockedAmount(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// WalletService показывает баланс, журнал операций и публичные профили.
type WalletService struct {
	users  UserReader
	ledger LedgerReader
}

// NewWalletService создаёт сервис кошелька.
func NewWalletService(users UserReader, ledger LedgerReader) *WalletService {
	return &WalletService{users: users, ledger: ledger}
}

// GetWallet возвращает баланс и сумму, заблокированную в эскроу.
func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translateError(err)
	}
	locked, err := s.ledger.LockedAmount(ctx, userID)
	if err != nil {
		return nil, translateError(err)
	}
	return &models.Wallet{
		UserID:       user.ID,
		Balance:      user.WalletBalance,
		LockedEscrow: locked,
	}, nil
}

// ListTransactions возвращает операции пользователя, новые первыми.
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	txs, err := s.ledger.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, translateError(err)
	}
	return txs, nil
}

// GetPublicProfile возвращает профиль с рейтингом и числом отзывов.
func (s *WalletService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*models.PublicProfile, error) {
	profile, err := s.users.GetPublicProfile(ctx, userID)
	if err != nil {
		return nil, translateError(err)
	}
	return profile, nil
}
