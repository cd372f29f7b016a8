package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/gig-escrow/internal/logger"
	"github.com/ignatzorin/gig-escrow/internal/metrics"
	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/repository"
)

// EscrowService выполняет атомарные переходы контракта, связанные с деньгами:
// принятие предложения (блокировка средств), приёмку работы (выплата) и отмену (возврат).
type EscrowService struct {
	store TxRunner
	hub   WSNotifier
}

// NewEscrowService создаёт сервис эскроу.
func NewEscrowService(store TxRunner) *EscrowService {
	return &EscrowService{store: store}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *EscrowService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// AcceptResult - итог принятия предложения.
type AcceptResult struct {
	Contract          *models.Contract `json:"contract"`
	Escrow            *models.Escrow   `json:"escrow"`
	RejectedProposals int64            `json:"rejected_proposals"`
}

// SettlementResult - итог приёмки или отмены контракта.
type SettlementResult struct {
	Contract *models.Contract `json:"contract"`
	Escrow   *models.Escrow   `json:"escrow"`
}

// AcceptProposal принимает предложение: в одной транзакции помечает предложение
// принятым, переводит заказ в работу, создаёт контракт и эскроу, списывает средства
// клиента, пишет две записи журнала и отклоняет остальные ожидающие предложения.
func (s *EscrowService) AcceptProposal(ctx context.Context, gigID, proposalID, clientID uuid.UUID) (*AcceptResult, error) {
	var result AcceptResult

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		gig, err := tx.GetGigForUpdate(ctx, gigID)
		if err != nil {
			return err
		}
		if gig.ClientID != clientID {
			return apperror.Forbidden("принять предложение может только автор заказа")
		}
		if gig.Status != models.GigStatusOpen {
			return apperror.State("заказ уже не принимает предложения")
		}

		proposal, err := tx.GetProposalForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if proposal.GigID != gig.ID {
			return apperror.Validation("предложение относится к другому заказу")
		}
		if !valueobject.ProposalStatus(proposal.Status).CanTransitionTo(valueobject.ProposalStatusAccepted) {
			return apperror.State("предложение уже рассмотрено")
		}

		client, err := tx.GetUserForUpdate(ctx, clientID)
		if err != nil {
			return err
		}
		amount := proposal.ProposedAmount
		if client.WalletBalance.LessThan(amount) {
			return apperror.ErrInsufficientFunds
		}

		if err := tx.UpdateProposalStatus(ctx, proposal.ID, models.ProposalStatusAccepted); err != nil {
			return err
		}
		if err := tx.UpdateGigStatus(ctx, gig.ID, models.GigStatusInProgress); err != nil {
			return err
		}

		contract := &models.Contract{
			GigID:        gig.ID,
			ProposalID:   proposal.ID,
			ClientID:     clientID,
			FreelancerID: proposal.FreelancerID,
			AgreedAmount: amount,
			Status:       models.ContractStatusActive,
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			return err
		}

		escrow := &models.Escrow{
			ContractID: contract.ID,
			Amount:     contract.AgreedAmount,
			FromUserID: clientID,
			ToUserID:   proposal.FreelancerID,
			Status:     models.EscrowStatusLocked,
		}
		if err := tx.CreateEscrow(ctx, escrow); err != nil {
			return err
		}

		if err := tx.AdjustBalance(ctx, clientID, amount.Neg()); err != nil {
			return err
		}

		if err := tx.AppendTransaction(ctx, &models.Transaction{
			UserID:      clientID,
			Type:        models.TransactionTypeDebit,
			Amount:      amount,
			Source:      models.TransactionSourceWallet,
			ReferenceID: &escrow.ID,
			Description: "Оплата за заказ: " + gig.Title,
		}); err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, &models.Transaction{
			UserID:      proposal.FreelancerID,
			Type:        models.TransactionTypeCredit,
			Amount:      amount,
			Source:      models.TransactionSourceEscrow,
			ReferenceID: &escrow.ID,
			Description: "Средства заблокированы в эскроу: " + gig.Title,
		}); err != nil {
			return err
		}

		rejected, err := tx.RejectPendingProposals(ctx, gig.ID, proposal.ID)
		if err != nil {
			return err
		}

		result = AcceptResult{Contract: contract, Escrow: escrow, RejectedProposals: rejected}
		return nil
	})
	if err != nil {
		return nil, s.fail("accept", err)
	}

	s.succeed("accept", result.Escrow.Amount)
	notify(s.hub, result.Contract.FreelancerID, EventContractCreated, result.Contract)
	notify(s.hub, result.Contract.ClientID, EventContractCreated, result.Contract)
	return &result, nil
}

// ApproveWork принимает сданную работу: контракт одобрен, заказ завершён,
// эскроу выплачено исполнителю, рейтинг исполнителя пересчитан (если оценка указана).
func (s *EscrowService) ApproveWork(ctx context.Context, contractID, clientID uuid.UUID, rating *int) (*SettlementResult, error) {
	if rating != nil {
		if err := valueobject.ValidateRating(*rating); err != nil {
			return nil, err
		}
	}

	var result SettlementResult

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		contract, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if contract.ClientID != clientID {
			return apperror.Forbidden("принять работу может только заказчик")
		}
		if contract.Status != models.ContractStatusWorkSubmitted {
			return apperror.State("работа ещё не сдана")
		}

		gig, err := tx.GetGigForUpdate(ctx, contract.GigID)
		if err != nil {
			return err
		}
		escrow, err := tx.GetEscrowByContractForUpdate(ctx, contract.ID)
		if err != nil {
			return err
		}
		if !valueobject.EscrowStatus(escrow.Status).CanTransitionTo(valueobject.EscrowStatusReleased) {
			return apperror.State("средства по контракту уже распределены")
		}

		contract.Status = models.ContractStatusApproved
		contract.Rating = rating
		if err := tx.UpdateContract(ctx, contract); err != nil {
			return err
		}
		if err := tx.UpdateGigStatus(ctx, gig.ID, models.GigStatusCompleted); err != nil {
			return err
		}
		if err := tx.UpdateEscrowStatus(ctx, escrow.ID, models.EscrowStatusReleased); err != nil {
			return err
		}
		escrow.Status = models.EscrowStatusReleased

		if err := tx.AdjustBalance(ctx, escrow.ToUserID, escrow.Amount); err != nil {
			return err
		}

		if rating != nil {
			if err := s.updateRating(ctx, tx, contract, *rating); err != nil {
				return err
			}
		}

		if err := tx.AppendTransaction(ctx, &models.Transaction{
			UserID:      escrow.ToUserID,
			Type:        models.TransactionTypeCredit,
			Amount:      escrow.Amount,
			Source:      models.TransactionSourceEscrow,
			ReferenceID: &escrow.ID,
			Description: "Выплата за заказ: " + gig.Title,
		}); err != nil {
			return err
		}

		result = SettlementResult{Contract: contract, Escrow: escrow}
		return nil
	})
	if err != nil {
		return nil, s.fail("approve", err)
	}

	s.succeed("approve", result.Escrow.Amount)
	notify(s.hub, result.Contract.FreelancerID, EventContractApproved, result.Contract)
	return &result, nil
}

// updateRating пересчитывает средний рейтинг по прошлым одобренным контрактам с оценкой.
func (s *EscrowService) updateRating(ctx context.Context, tx repository.Tx, contract *models.Contract, rating int) error {
	freelancer, err := tx.GetUserForUpdate(ctx, contract.FreelancerID)
	if err != nil {
		return err
	}
	sum, count, err := tx.RatedContractStats(ctx, contract.FreelancerID, contract.ID)
	if err != nil {
		return err
	}
	average := valueobject.RollingAverage(sum, count, rating)
	return tx.UpdateUserRating(ctx, freelancer.ID, average, freelancer.TotalReviews+1)
}

// CancelContract отменяет контракт до сдачи работы и возвращает средства клиенту.
func (s *EscrowService) CancelContract(ctx context.Context, contractID, clientID uuid.UUID) (*SettlementResult, error) {
	var result SettlementResult

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		contract, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if contract.ClientID != clientID {
			return apperror.Forbidden("отменить контракт может только заказчик")
		}
		if !valueobject.ContractStatus(contract.Status).CanTransitionTo(valueobject.ContractStatusCancelled) {
			return apperror.State("отменить можно только контракт, по которому ещё не сдана работа")
		}

		gig, err := tx.GetGigForUpdate(ctx, contract.GigID)
		if err != nil {
			return err
		}
		escrow, err := tx.GetEscrowByContractForUpdate(ctx, contract.ID)
		if err != nil {
			return err
		}
		if !valueobject.EscrowStatus(escrow.Status).CanTransitionTo(valueobject.EscrowStatusRefunded) {
			return apperror.State("средства по контракту уже распределены")
		}

		contract.Status = models.ContractStatusCancelled
		if err := tx.UpdateContract(ctx, contract); err != nil {
			return err
		}
		if err := tx.UpdateGigStatus(ctx, gig.ID, models.GigStatusCancelled); err != nil {
			return err
		}
		if err := tx.UpdateEscrowStatus(ctx, escrow.ID, models.EscrowStatusRefunded); err != nil {
			return err
		}
		escrow.Status = models.EscrowStatusRefunded

		if err := tx.AdjustBalance(ctx, escrow.FromUserID, escrow.Amount); err != nil {
			return err
		}

		if err := tx.AppendTransaction(ctx, &models.Transaction{
			UserID:      escrow.FromUserID,
			Type:        models.TransactionTypeCredit,
			Amount:      escrow.Amount,
			Source:      models.TransactionSourceEscrow,
			ReferenceID: &escrow.ID,
			Description: "Возврат средств за заказ: " + gig.Title,
		}); err != nil {
			return err
		}
		// Сторнируем запись о блокировке у исполнителя.
		if err := tx.AppendTransaction(ctx, &models.Transaction{
			UserID:      escrow.ToUserID,
			Type:        models.TransactionTypeDebit,
			Amount:      escrow.Amount,
			Source:      models.TransactionSourceEscrow,
			ReferenceID: &escrow.ID,
			Description: "Блокировка снята, контракт отменён: " + gig.Title,
		}); err != nil {
			return err
		}

		result = SettlementResult{Contract: contract, Escrow: escrow}
		return nil
	})
	if err != nil {
		return nil, s.fail("cancel", err)
	}

	s.succeed("cancel", result.Escrow.Amount)
	notify(s.hub, result.Contract.FreelancerID, EventContractCancelled, result.Contract)
	return &result, nil
}

func (s *EscrowService) succeed(operation string, amount decimal.Decimal) {
	metrics.EscrowOperationsTotal.WithLabelValues(operation, metrics.ResultOK).Inc()
	metrics.EscrowVolume.WithLabelValues(operation).Add(amount.InexactFloat64())
}

// fail переводит ошибку, считает метрику и логирует сбои хранилища.
func (s *EscrowService) fail(operation string, err error) error {
	translated := translateError(err)
	if apperror.CodeOf(translated) == apperror.ErrCodeInternal {
		metrics.EscrowOperationsTotal.WithLabelValues(operation, metrics.ResultError).Inc()
		logger.Component("escrow").WithFields(logrus.Fields{
			"operation": operation,
			"error":     err.Error(),
		}).Error("операция эскроу откатена")
	} else {
		metrics.EscrowOperationsTotal.WithLabelValues(operation, metrics.ResultRejected).Inc()
	}
	return translated
}
