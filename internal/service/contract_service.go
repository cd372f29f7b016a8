package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gig-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/repository"
	"github.com/ignatzorin/gig-escrow/internal/storage"
	"github.com/ignatzorin/gig-escrow/internal/validation"
)

// ContractRepository описывает чтение контрактов.
type ContractRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*models.ContractDetails, error)
	GetDetailsByGig(ctx context.Context, gigID uuid.UUID) (*models.ContractDetails, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter models.ContractListFilter) ([]models.ContractDetails, error)
	IsParty(ctx context.Context, contractID, userID uuid.UUID) (bool, error)
}

// EscrowReader читает эскроу контракта.
type EscrowReader interface {
	GetEscrowByContract(ctx context.Context, contractID uuid.UUID) (*models.Escrow, error)
}

// DeliverableStore сохраняет файлы результатов работы.
type DeliverableStore interface {
	Save(ctx context.Context, contractID uuid.UUID, r io.Reader) (*storage.StoredFile, error)
}

// ContractView - контракт вместе с состоянием эскроу.
type ContractView struct {
	models.ContractDetails
	Escrow *models.Escrow `json:"escrow,omitempty"`
}

// ContractService отвечает за контракты вне денежных переходов.
type ContractService struct {
	store     TxRunner
	contracts ContractRepository
	escrows   EscrowReader
	files     DeliverableStore
	hub       WSNotifier
	now       func() time.Time
}

// NewContractService создаёт сервис контрактов.
func NewContractService(store TxRunner, contracts ContractRepository, escrows EscrowReader, files DeliverableStore) *ContractService {
	return &ContractService{
		store:     store,
		contracts: contracts,
		escrows:   escrows,
		files:     files,
		now:       time.Now,
	}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *ContractService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// SubmitWorkInput - сдача работы исполнителем.
type SubmitWorkInput struct {
	ContractID   uuid.UUID
	FreelancerID uuid.UUID
	Message      string
	FileURL      *string
}

// SubmitWork фиксирует результат работы и переводит контракт в work_submitted.
func (s *ContractService) SubmitWork(ctx context.Context, in SubmitWorkInput) (*models.Contract, error) {
	message, err := validation.ValidateRequired("сообщение", in.Message, validation.MaxSubmissionLength)
	if err != nil {
		return nil, invalid(err)
	}

	var fileURL *string
	if in.FileURL != nil && *in.FileURL != "" {
		if err := validation.ValidateFileURL(*in.FileURL); err != nil {
			return nil, invalid(err)
		}
		link := *in.FileURL
		fileURL = &link
	}

	var contract *models.Contract
	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		contract, err = tx.GetContractForUpdate(ctx, in.ContractID)
		if err != nil {
			return err
		}
		if contract.FreelancerID != in.FreelancerID {
			return apperror.Forbidden("сдать работу может только исполнитель контракта")
		}
		if !valueobject.ContractStatus(contract.Status).CanTransitionTo(valueobject.ContractStatusWorkSubmitted) {
			return apperror.State("сдать работу можно только по активному контракту")
		}

		submittedAt := s.now().UTC()
		contract.Status = models.ContractStatusWorkSubmitted
		contract.SubmissionMessage = &message
		contract.SubmissionFileURL = fileURL
		contract.SubmittedAt = &submittedAt
		return tx.UpdateContract(ctx, contract)
	})
	if err != nil {
		return nil, translateError(err)
	}

	notify(s.hub, contract.ClientID, EventWorkSubmitted, contract)
	return contract, nil
}

// UploadDeliverable сохраняет файл результата работы и возвращает его ссылку.
// Загружать файлы может только исполнитель активного контракта.
func (s *ContractService) UploadDeliverable(ctx context.Context, contractID, freelancerID uuid.UUID, r io.Reader) (*storage.StoredFile, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, translateError(err)
	}
	if contract.FreelancerID != freelancerID {
		return nil, apperror.Forbidden("загружать файлы может только исполнитель контракта")
	}
	if contract.Status != models.ContractStatusActive {
		return nil, apperror.State("работа по контракту уже сдана или контракт закрыт")
	}

	file, err := s.files.Save(ctx, contractID, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, apperror.Validation("неподдерживаемый тип файла")
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperror.Validation("файл слишком большой")
		}
		return nil, apperror.Internal(err)
	}
	return file, nil
}

// ListContracts возвращает контракты пользователя, новые первыми.
func (s *ContractService) ListContracts(ctx context.Context, userID uuid.UUID, status, excludeStatus string) ([]models.ContractDetails, error) {
	filter := models.ContractListFilter{}
	if status != "" {
		parsed, err := valueobject.NewContractStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(parsed)
	}
	if excludeStatus != "" {
		parsed, err := valueobject.NewContractStatus(excludeStatus)
		if err != nil {
			return nil, err
		}
		filter.ExcludeStatus = string(parsed)
	}

	contracts, err := s.contracts.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, translateError(err)
	}
	return contracts, nil
}

// GetContract возвращает контракт стороне контракта. Для посторонних контракт не существует.
func (s *ContractService) GetContract(ctx context.Context, contractID, userID uuid.UUID) (*ContractView, error) {
	details, err := s.contracts.GetDetails(ctx, contractID)
	if err != nil {
		return nil, translateError(err)
	}
	return s.view(ctx, details, userID)
}

// GetGigContract возвращает контракт по заказу.
func (s *ContractService) GetGigContract(ctx context.Context, gigID, userID uuid.UUID) (*ContractView, error) {
	details, err := s.contracts.GetDetailsByGig(ctx, gigID)
	if err != nil {
		return nil, translateError(err)
	}
	return s.view(ctx, details, userID)
}

func (s *ContractService) view(ctx context.Context, details *models.ContractDetails, userID uuid.UUID) (*ContractView, error) {
	if !details.HasParty(userID) {
		return nil, apperror.ErrContractNotFound
	}

	escrow, err := s.escrows.GetEscrowByContract(ctx, details.ID)
	if err != nil && !errors.Is(err, repository.ErrEscrowNotFound) {
		return nil, translateError(err)
	}
	return &ContractView{ContractDetails: *details, Escrow: escrow}, nil
}
