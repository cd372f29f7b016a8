package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// Явные списки колонок: SELECT * ломает сканирование при добавлении колонок.
const (
	userColumns = `id, name, email, password_hash, role, company_name, hourly_rate,
		wallet_balance, rating, total_reviews, created_at, updated_at`
	gigColumns      = `id, client_id, title, description, budget, status, deadline_at, created_at, updated_at`
	proposalColumns = `id, gig_id, freelancer_id, cover_letter, proposed_amount, delivery_days,
		status, created_at, updated_at`
	contractColumns = `id, gig_id, proposal_id, client_id, freelancer_id, agreed_amount, status,
		submission_message, submission_file_url, submitted_at, rating, created_at, updated_at`
	escrowColumns      = `id, contract_id, amount, from_user_id, to_user_id, status, created_at, updated_at`
	transactionColumns = `id, user_id, type, amount, source, reference_id, description, created_at`
	chatMessageColumns = `id, contract_id, sender_id, receiver_id, message, read, read_at, created_at`
)

func wrapExec(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

func notFoundOnNoRows(err, notFoundErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	return err
}
