package common

import "github.com/lib/pq"

// uniqueViolationCode - SQLSTATE нарушения уникального индекса в PostgreSQL.
const uniqueViolationCode pq.ErrorCode = "23505"

// Имена ограничений уникальности из миграций.
const (
	ConstraintUserEmail         = "users_email_key"
	ConstraintProposalPerGig    = "proposals_gig_freelancer_key"
	ConstraintContractPerGig    = "contracts_gig_key"
	ConstraintEscrowPerContract = "escrows_contract_key"
)
