package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/repository"
	"github.com/ignatzorin/gig-escrow/internal/validation"
)

// ProposalRepository описывает чтение предложений.
type ProposalRepository interface {
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.ProposalWithFreelancer, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error)
}

// ProposalService обрабатывает отклики исполнителей на заказы.
type ProposalService struct {
	store     TxRunner
	gigs      GigRepository
	proposals ProposalRepository
	hub       WSNotifier
}

// NewProposalService создаёт сервис предложений.
func NewProposalService(store TxRunner, gigs GigRepository, proposals ProposalRepository) *ProposalService {
	return &ProposalService{store: store, gigs: gigs, proposals: proposals}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *ProposalService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// SubmitProposalInput - отклик исполнителя.
type SubmitProposalInput struct {
	GigID          uuid.UUID
	FreelancerID   uuid.UUID
	Role           string
	CoverLetter    string
	ProposedAmount decimal.Decimal
	DeliveryDays   int
}

// SubmitProposal создаёт предложение в статусе pending.
func (s *ProposalService) SubmitProposal(ctx context.Context, in SubmitProposalInput) (*models.Proposal, error) {
	if in.Role != models.RoleFreelancer {
		return nil, apperror.Forbidden("откликаться на заказы могут только исполнители")
	}

	coverLetter, err := validation.ValidateRequired("сопроводительное письмо", in.CoverLetter, validation.MaxCoverLetterLength)
	if err != nil {
		return nil, invalid(err)
	}
	amount, err := valueobject.NewAmount("предлагаемая сумма", in.ProposedAmount)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateDeliveryDays(in.DeliveryDays); err != nil {
		return nil, invalid(err)
	}

	var (
		proposal *models.Proposal
		gig      *models.Gig
	)
	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		gig, err = tx.GetGigForUpdate(ctx, in.GigID)
		if err != nil {
			return err
		}
		if gig.Status != models.GigStatusOpen {
			return apperror.Validation("заказ не принимает предложения")
		}
		if gig.ClientID == in.FreelancerID {
			return apperror.Validation("нельзя откликнуться на собственный заказ")
		}

		exists, err := tx.ProposalExists(ctx, gig.ID, in.FreelancerID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrDuplicateProposal
		}

		proposal = &models.Proposal{
			GigID:          gig.ID,
			FreelancerID:   in.FreelancerID,
			CoverLetter:    coverLetter,
			ProposedAmount: amount,
			DeliveryDays:   in.DeliveryDays,
			Status:         models.ProposalStatusPending,
		}
		return tx.CreateProposal(ctx, proposal)
	})
	if err != nil {
		return nil, translateError(err)
	}

	notify(s.hub, gig.ClientID, EventNewProposal, proposal)
	return proposal, nil
}

// ListProposals возвращает предложения по заказу, самые дорогие первыми.
// Доступно только автору заказа.
func (s *ProposalService) ListProposals(ctx context.Context, gigID, clientID uuid.UUID) ([]models.ProposalWithFreelancer, error) {
	gig, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		return nil, translateError(err)
	}
	if gig.ClientID != clientID {
		return nil, apperror.Forbidden("просматривать предложения может только автор заказа")
	}

	proposals, err := s.proposals.ListByGig(ctx, gigID)
	if err != nil {
		return nil, translateError(err)
	}
	return proposals, nil
}

// ListMyProposals возвращает предложения исполнителя.
func (s *ProposalService) ListMyProposals(ctx context.Context, freelancerID uuid.UUID) ([]models.Proposal, error) {
	proposals, err := s.proposals.ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, translateError(err)
	}
	return proposals, nil
}

// RejectProposal отклоняет ожидающее предложение открытого заказа.
func (s *ProposalService) RejectProposal(ctx context.Context, gigID, proposalID, clientID uuid.UUID) (*models.Proposal, error) {
	var proposal *models.Proposal

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		gig, err := tx.GetGigForUpdate(ctx, gigID)
		if err != nil {
			return err
		}
		if gig.ClientID != clientID {
			return apperror.Forbidden("отклонить предложение может только автор заказа")
		}
		if gig.Status != models.GigStatusOpen {
			return apperror.State("заказ уже не принимает предложения")
		}

		proposal, err = tx.GetProposalForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if proposal.GigID != gig.ID {
			return apperror.Validation("предложение относится к другому заказу")
		}
		if !valueobject.ProposalStatus(proposal.Status).CanTransitionTo(valueobject.ProposalStatusRejected) {
			return apperror.State("предложение уже рассмотрено")
		}

		proposal.Status = models.ProposalStatusRejected
		return tx.UpdateProposalStatus(ctx, proposal.ID, models.ProposalStatusRejected)
	})
	if err != nil {
		return nil, translateError(err)
	}

	notify(s.hub, proposal.FreelancerID, EventProposalRejected, proposal)
	return proposal, nil
}
