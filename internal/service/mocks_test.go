package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/gig-escrow/internal/models"
)

type mockGigRepository struct {
	mock.Mock
}

func (m *mockGigRepository) Create(ctx context.Context, gig *models.Gig) error {
	args := m.Called(ctx, gig)
	return args.Error(0)
}

func (m *mockGigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gig), args.Error(1)
}

func (m *mockGigRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Gig, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Gig), args.Error(1)
}

func (m *mockGigRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Gig), args.Error(1)
}

type mockProposalRepository struct {
	mock.Mock
}

func (m *mockProposalRepository) ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.ProposalWithFreelancer, error) {
	args := m.Called(ctx, gigID)
	return args.Get(0).([]models.ProposalWithFreelancer), args.Error(1)
}

func (m *mockProposalRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).([]models.Proposal), args.Error(1)
}

type mockContractRepository struct {
	mock.Mock
}

func (m *mockContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepository) GetDetails(ctx context.Context, id uuid.UUID) (*models.ContractDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContractDetails), args.Error(1)
}

func (m *mockContractRepository) GetDetailsByGig(ctx context.Context, gigID uuid.UUID) (*models.ContractDetails, error) {
	args := m.Called(ctx, gigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContractDetails), args.Error(1)
}

func (m *mockContractRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter models.ContractListFilter) ([]models.ContractDetails, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]models.ContractDetails), args.Error(1)
}

func (m *mockContractRepository) IsParty(ctx context.Context, contractID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, contractID, userID)
	return args.Bool(0), args.Error(1)
}

type mockChatRepository struct {
	mock.Mock
}

func (m *mockChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockChatRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ChatMessage, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *mockChatRepository) MarkRead(ctx context.Context, contractID, receiverID uuid.UUID, through, at time.Time) (int64, error) {
	args := m.Called(ctx, contractID, receiverID, through, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockChatRepository) ListChats(ctx context.Context, userID uuid.UUID) ([]models.ChatSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.ChatSummary), args.Error(1)
}

type mockEscrowReader struct {
	mock.Mock
}

func (m *mockEscrowReader) GetEscrowByContract(ctx context.Context, contractID uuid.UUID) (*models.Escrow, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Escrow), args.Error(1)
}

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserReader) GetPublicProfile(ctx context.Context, id uuid.UUID) (*models.PublicProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicProfile), args.Error(1)
}

type mockLedgerReader struct {
	mock.Mock
}

func (m *mockLedgerReader) LockedAmount(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockLedgerReader) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Transaction), args.Error(1)
}
