package valueobject

import (
	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
)

type GigStatus string

const (
	GigStatusOpen       GigStatus = models.GigStatusOpen
	GigStatusInProgress GigStatus = models.GigStatusInProgress
	GigStatusCompleted  GigStatus = models.GigStatusCompleted
	GigStatusCancelled  GigStatus = models.GigStatusCancelled
)

var gigTransitions = map[GigStatus][]GigStatus{
	GigStatusOpen:       {GigStatusInProgress, GigStatusCancelled},
	GigStatusInProgress: {GigStatusCompleted, GigStatusCancelled},
	GigStatusCompleted:  {},
	GigStatusCancelled:  {},
}

func (s GigStatus) CanTransitionTo(newStatus GigStatus) bool {
	return allowed(gigTransitions, s, newStatus)
}

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = models.ProposalStatusPending
	ProposalStatusAccepted ProposalStatus = models.ProposalStatusAccepted
	ProposalStatusRejected ProposalStatus = models.ProposalStatusRejected
)

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending:  {ProposalStatusAccepted, ProposalStatusRejected},
	ProposalStatusAccepted: {},
	ProposalStatusRejected: {},
}

func (s ProposalStatus) CanTransitionTo(newStatus ProposalStatus) bool {
	return allowed(proposalTransitions, s, newStatus)
}

type ContractStatus string

const (
	ContractStatusActive        ContractStatus = models.ContractStatusActive
	ContractStatusWorkSubmitted ContractStatus = models.ContractStatusWorkSubmitted
	ContractStatusApproved      ContractStatus = models.ContractStatusApproved
	ContractStatusCompleted     ContractStatus = models.ContractStatusCompleted
	ContractStatusCancelled     ContractStatus = models.ContractStatusCancelled
)

// Отмена возможна только до сдачи работы: после неё средства принадлежат исполнителю.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusActive:        {ContractStatusWorkSubmitted, ContractStatusCancelled},
	ContractStatusWorkSubmitted: {ContractStatusApproved},
	ContractStatusApproved:      {ContractStatusCompleted},
	ContractStatusCompleted:     {},
	ContractStatusCancelled:     {},
}

func (s ContractStatus) IsValid() bool {
	_, ok := contractTransitions[s]
	return ok
}

func (s ContractStatus) CanTransitionTo(newStatus ContractStatus) bool {
	return allowed(contractTransitions, s, newStatus)
}

// NewContractStatus разбирает статус из фильтра запроса.
func NewContractStatus(status string) (ContractStatus, error) {
	s := ContractStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус контракта")
	}
	return s, nil
}

type EscrowStatus string

const (
	EscrowStatusLocked   EscrowStatus = models.EscrowStatusLocked
	EscrowStatusReleased EscrowStatus = models.EscrowStatusReleased
	EscrowStatusRefunded EscrowStatus = models.EscrowStatusRefunded
)

var escrowTransitions = map[EscrowStatus][]EscrowStatus{
	EscrowStatusLocked:   {EscrowStatusReleased, EscrowStatusRefunded},
	EscrowStatusReleased: {},
	EscrowStatusRefunded: {},
}

func (s EscrowStatus) CanTransitionTo(newStatus EscrowStatus) bool {
	return allowed(escrowTransitions, s, newStatus)
}

func allowed[S ~string](transitions map[S][]S, from, to S) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	for _, status := range next {
		if status == to {
			return true
		}
	}
	return false
}
