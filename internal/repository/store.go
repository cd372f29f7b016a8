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

// Tx - операции, выполняемые внутри одной транзакции БД.
// Методы *ForUpdate блокируют строку до конца транзакции.
type Tx interface {
	GetUserForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetGigForUpdate(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetEscrowByContractForUpdate(ctx context.Context, contractID uuid.UUID) (*models.Escrow, error)

	ProposalExists(ctx context.Context, gigID, freelancerID uuid.UUID) (bool, error)
	CreateProposal(ctx context.Context, p *models.Proposal) error
	UpdateProposalStatus(ctx context.Context, id uuid.UUID, status string) error
	RejectPendingProposals(ctx context.Context, gigID, exceptID uuid.UUID) (int64, error)

	UpdateGigStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateContract(ctx context.Context, c *models.Contract) error
	UpdateContract(ctx context.Context, c *models.Contract) error
	RatedContractStats(ctx context.Context, freelancerID, excludeContractID uuid.UUID) (sum int, count int, err error)

	CreateEscrow(ctx context.Context, e *models.Escrow) error
	UpdateEscrowStatus(ctx context.Context, id uuid.UUID, status string) error

	AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error
	UpdateUserRating(ctx context.Context, userID uuid.UUID, rating decimal.Decimal, totalReviews int) error
	AppendTransaction(ctx context.Context, t *models.Transaction) error
}

// Store открывает транзакции поверх PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// NewStore создаёт транзакционное хранилище.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// WithinTx выполняет fn в одной транзакции: любая ошибка откатывает все изменения.
func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return common.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&sqlTx{tx: tx})
	})
}

type sqlTx struct {
	tx *sqlx.Tx
}

func (t *sqlTx) GetUserForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetOne[models.User](ctx, t.tx, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (t *sqlTx) GetGigForUpdate(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	return common.GetOne[models.Gig](ctx, t.tx, ErrGigNotFound,
		`SELECT `+gigColumns+` FROM gigs WHERE id = $1 FOR UPDATE`, id)
}

func (t *sqlTx) GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return common.GetOne[models.Proposal](ctx, t.tx, ErrProposalNotFound,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, id)
}

func (t *sqlTx) GetContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return common.GetOne[models.Contract](ctx, t.tx, ErrContractNotFound,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id)
}

func (t *sqlTx) GetEscrowByContractForUpdate(ctx context.Context, contractID uuid.UUID) (*models.Escrow, error) {
	return common.GetOne[models.Escrow](ctx, t.tx, ErrEscrowNotFound,
		`SELECT `+escrowColumns+` FROM escrows WHERE contract_id = $1 FOR UPDATE`, contractID)
}

func (t *sqlTx) ProposalExists(ctx context.Context, gigID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM proposals WHERE gig_id = $1 AND freelancer_id = $2)`, gigID, freelancerID)
	if err != nil {
		return false, fmt.Errorf("store: proposal exists: %w", err)
	}
	return exists, nil
}

func (t *sqlTx) CreateProposal(ctx context.Context, p *models.Proposal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO proposals (id, gig_id, freelancer_id, cover_letter, proposed_amount, delivery_days, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := t.tx.QueryRowxContext(ctx, query,
		p.ID, p.GigID, p.FreelancerID, p.CoverLetter, p.ProposedAmount, p.DeliveryDays, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if constraint, ok := common.UniqueViolation(err); ok && constraint == common.ConstraintProposalPerGig {
			return ErrDuplicateProposal
		}
		return fmt.Errorf("store: create proposal: %w", err)
	}
	return nil
}

func (t *sqlTx) UpdateProposalStatus(ctx context.Context, id uuid.UUID, status string) error {
	err := common.ExecAffectingOne(ctx, t.tx, ErrProposalNotFound,
		`UPDATE proposals SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return wrapExec("update proposal status", err)
}

func (t *sqlTx) RejectPendingProposals(ctx context.Context, gigID, exceptID uuid.UUID) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE proposals SET status = $3, updated_at = NOW()
		WHERE gig_id = $1 AND id <> $2 AND status = $4
	`, gigID, exceptID, models.ProposalStatusRejected, models.ProposalStatusPending)
	if err != nil {
		return 0, fmt.Errorf("store: reject pending proposals: %w", err)
	}
	return res.RowsAffected()
}

func (t *sqlTx) UpdateGigStatus(ctx context.Context, id uuid.UUID, status string) error {
	err := common.ExecAffectingOne(ctx, t.tx, ErrGigNotFound,
		`UPDATE gigs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return wrapExec("update gig status", err)
}

func (t *sqlTx) CreateContract(ctx context.Context, c *models.Contract) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO contracts (id, gig_id, proposal_id, client_id, freelancer_id, agreed_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := t.tx.QueryRowxContext(ctx, query,
		c.ID, c.GigID, c.ProposalID, c.ClientID, c.FreelancerID, c.AgreedAmount, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if constraint, ok := common.UniqueViolation(err); ok && constraint == common.ConstraintContractPerGig {
			return ErrDuplicateContract
		}
		return fmt.Errorf("store: create contract: %w", err)
	}
	return nil
}

func (t *sqlTx) UpdateContract(ctx context.Context, c *models.Contract) error {
	query := `
		UPDATE contracts
		SET status = $2, submission_message = $3, submission_file_url = $4, submitted_at = $5,
		    rating = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := t.tx.QueryRowxContext(ctx, query,
		c.ID, c.Status, c.SubmissionMessage, c.SubmissionFileURL, c.SubmittedAt, c.Rating,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return wrapExec("update contract", notFoundOnNoRows(err, ErrContractNotFound))
	}
	return nil
}

func (t *sqlTx) RatedContractStats(ctx context.Context, freelancerID, excludeContractID uuid.UUID) (int, int, error) {
	var stats struct {
		Sum   int `db:"sum"`
		Count int `db:"count"`
	}
	err := t.tx.GetContext(ctx, &stats, `
		SELECT COALESCE(SUM(rating), 0) AS sum, COUNT(*) AS count
		FROM contracts
		WHERE freelancer_id = $1 AND status = $2 AND rating IS NOT NULL AND id <> $3
	`, freelancerID, models.ContractStatusApproved, excludeContractID)
	if err != nil {
		return 0, 0, fmt.Errorf("store: rated contract stats: %w", err)
	}
	return stats.Sum, stats.Count, nil
}

func (t *sqlTx) CreateEscrow(ctx context.Context, e *models.Escrow) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	query := `
		INSERT INTO escrows (id, contract_id, amount, from_user_id, to_user_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := t.tx.QueryRowxContext(ctx, query,
		e.ID, e.ContractID, e.Amount, e.FromUserID, e.ToUserID, e.Status,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if constraint, ok := common.UniqueViolation(err); ok && constraint == common.ConstraintEscrowPerContract {
			return ErrDuplicateEscrow
		}
		return fmt.Errorf("store: create escrow: %w", err)
	}
	return nil
}

func (t *sqlTx) UpdateEscrowStatus(ctx context.Context, id uuid.UUID, status string) error {
	err := common.ExecAffectingOne(ctx, t.tx, ErrEscrowNotFound,
		`UPDATE escrows SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return wrapExec("update escrow status", err)
}

// AdjustBalance меняет баланс на delta (отрицательная - списание).
// CHECK (wallet_balance >= 0) в схеме не даст уйти в минус.
func (t *sqlTx) AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	err := common.ExecAffectingOne(ctx, t.tx, ErrUserNotFound,
		`UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = NOW() WHERE id = $1`, userID, delta)
	return wrapExec("adjust balance", err)
}

func (t *sqlTx) UpdateUserRating(ctx context.Context, userID uuid.UUID, rating decimal.Decimal, totalReviews int) error {
	err := common.ExecAffectingOne(ctx, t.tx, ErrUserNotFound,
		`UPDATE users SET rating = $2, total_reviews = $3, updated_at = NOW() WHERE id = $1`, userID, rating, totalReviews)
	return wrapExec("update user rating", err)
}

func (t *sqlTx) AppendTransaction(ctx context.Context, tr *models.Transaction) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	query := `
		INSERT INTO transactions (id, user_id, type, amount, source, reference_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	if err := t.tx.QueryRowxContext(ctx, query,
		tr.ID, tr.UserID, tr.Type, tr.Amount, tr.Source, tr.ReferenceID, tr.Description,
	).Scan(&tr.CreatedAt); err != nil {
		return fmt.Errorf("store: append transaction: %w", err)
	}
	return nil
}
