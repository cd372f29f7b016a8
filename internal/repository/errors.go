package repository

import "errors"

// Ошибки слоя хранилища. Сервисы переводят их в apperror.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrGigNotFound      = errors.New("gig not found")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrEscrowNotFound   = errors.New("escrow not found")

	ErrEmailTaken        = errors.New("email already registered")
	ErrDuplicateProposal = errors.New("proposal for this gig already exists")
	ErrDuplicateContract = errors.New("contract for this gig already exists")
	ErrDuplicateEscrow   = errors.New("escrow for this contract already exists")
)
