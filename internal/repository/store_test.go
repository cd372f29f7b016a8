package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gig-escrow/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestStore_WithinTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	gigID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE gigs SET status`).
		WithArgs(gigID, models.GigStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		return tx.UpdateGigStatus(context.Background(), gigID, models.GigStatusInProgress)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET wallet_balance = wallet_balance \+ \$2`).
		WithArgs(userID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		return tx.AdjustBalance(context.Background(), userID, decimal.NewFromInt(-100))
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTxRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.WithinTx(context.Background(), func(tx Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateProposalDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO proposals`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "proposals_gig_freelancer_key"})
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		return tx.CreateProposal(context.Background(), &models.Proposal{
			GigID:          uuid.New(),
			FreelancerID:   uuid.New(),
			CoverLetter:    "hello",
			ProposedAmount: decimal.NewFromInt(100),
			DeliveryDays:   3,
			Status:         models.ProposalStatusPending,
		})
	})
	assert.ErrorIs(t, err, ErrDuplicateProposal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateContractDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO contracts`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "contracts_gig_key"})
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		return tx.CreateContract(context.Background(), &models.Contract{GigID: uuid.New()})
	})
	assert.ErrorIs(t, err, ErrDuplicateContract)
}

func TestStore_GetGigForUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	gigID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM gigs WHERE id = \$1 FOR UPDATE`).
		WithArgs(gigID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		_, err := tx.GetGigForUpdate(context.Background(), gigID)
		return err
	})
	assert.ErrorIs(t, err, ErrGigNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RejectPendingProposals(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	gigID, acceptedID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE proposals SET status = \$3`).
		WithArgs(gigID, acceptedID, models.ProposalStatusRejected, models.ProposalStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	var rejected int64
	err := store.WithinTx(context.Background(), func(tx Tx) error {
		var err error
		rejected, err = tx.RejectPendingProposals(context.Background(), gigID, acceptedID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), rejected)
}

func TestStore_RatedContractStats(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db)
	freelancerID, contractID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(rating\), 0\) AS sum, COUNT\(\*\) AS count`).
		WithArgs(freelancerID, models.ContractStatusApproved, contractID).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow(9, 2))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		sum, count, err := tx.RatedContractStats(context.Background(), freelancerID, contractID)
		require.NoError(t, err)
		assert.Equal(t, 9, sum)
		assert.Equal(t, 2, count)
		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository_CreateEmailTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Email: "Taken@Example.com", Role: models.RoleClient})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLedgerRepository_LockedAmount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM escrows`).
		WithArgs(userID, models.EscrowStatusLocked).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("450.50"))

	total, err := repo.LockedAmount(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("450.5")))
}

func TestChatRepository_MarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepository(db)
	contractID, receiverID := uuid.New(), uuid.New()
	through := time.Date(2026, 2, 1, 9, 58, 0, 0, time.UTC)
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE chat_messages SET read = TRUE, read_at = \$4\s+WHERE .* AND created_at <= \$3`).
		WithArgs(contractID, receiverID, through, at).
		WillReturnResult(sqlmock.NewResult(0, 2))

	flipped, err := repo.MarkRead(context.Background(), contractID, receiverID, through, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), flipped)
}

func TestContractRepository_IsParty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContractRepository(db)
	contractID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(contractID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsParty(context.Background(), contractID, userID)
	require.NoError(t, err)
	assert.True(t, ok)
}
