package models

// Роли пользователей
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// GigStatus константы статусов заказов
const (
	GigStatusOpen       = "open"
	GigStatusInProgress = "in_progress"
	GigStatusCompleted  = "completed"
	GigStatusCancelled  = "cancelled"
)

// ProposalStatus константы статусов предложений
const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

// ContractStatus константы статусов контрактов
const (
	ContractStatusActive        = "active"
	ContractStatusWorkSubmitted = "work_submitted"
	ContractStatusApproved      = "approved"
	ContractStatusCompleted     = "completed"
	ContractStatusCancelled     = "cancelled"
)

// Статусы escrow
const (
	EscrowStatusLocked   = "locked"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
)

// Типы и источники транзакций
const (
	TransactionTypeDebit  = "debit"
	TransactionTypeCredit = "credit"

	TransactionSourceWallet = "wallet"
	TransactionSourceEscrow = "escrow"
)

// ValidContractStatuses список валидных статусов контрактов
var ValidContractStatuses = map[string]struct{}{
	ContractStatusActive:        {},
	ContractStatusWorkSubmitted: {},
	ContractStatusApproved:      {},
	ContractStatusCompleted:     {},
	ContractStatusCancelled:     {},
}

// ValidRoles список ролей, доступных при регистрации
var ValidRoles = map[string]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
}
