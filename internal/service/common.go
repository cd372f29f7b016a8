package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-escrow/internal/logger"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/repository"
)

// TxRunner открывает транзакцию хранилища.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

// WSNotifier интерфейс для отправки WebSocket уведомлений в канал пользователя.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// События, которые сервисы отправляют в личный канал пользователя.
const (
	EventContractCreated   = "contract_created"
	EventProposalRejected  = "proposal_rejected"
	EventWorkSubmitted     = "work_submitted"
	EventContractApproved  = "contract_approved"
	EventContractCancelled = "contract_cancelled"
	EventNewProposal       = "new_proposal"
)

// translateError переводит ошибки хранилища в ошибки приложения.
// Неизвестные ошибки становятся внутренними: клиент не видит, на каком шаге упала операция.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, repository.ErrGigNotFound):
		return apperror.ErrGigNotFound
	case errors.Is(err, repository.ErrProposalNotFound):
		return apperror.ErrProposalNotFound
	case errors.Is(err, repository.ErrContractNotFound):
		return apperror.ErrContractNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.ErrUserNotFound
	case errors.Is(err, repository.ErrEscrowNotFound):
		return apperror.NotFound("эскроу не найден")
	case errors.Is(err, repository.ErrDuplicateProposal):
		return apperror.ErrDuplicateProposal
	case errors.Is(err, repository.ErrDuplicateContract), errors.Is(err, repository.ErrDuplicateEscrow):
		return apperror.ErrDuplicateContract
	case errors.Is(err, repository.ErrEmailTaken):
		return apperror.ErrEmailTaken
	}

	return apperror.Internal(err)
}

// notify отправляет событие, не прерывая операцию при ошибке доставки.
func notify(hub WSNotifier, userID uuid.UUID, event string, data interface{}) {
	if hub == nil {
		return
	}
	if err := hub.BroadcastToUser(userID, event, data); err != nil {
		logger.Component("notify").WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		}).Warn("не удалось отправить уведомление")
	}
}

// invalid оборачивает ошибку валидации ввода в ошибку приложения.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}
