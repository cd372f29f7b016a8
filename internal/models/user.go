package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWalletBalance начальный (симулированный) баланс нового пользователя.
var DefaultWalletBalance = decimal.NewFromInt(100000)

// User описывает сущность пользователя платформы.
type User struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	Name          string           `db:"name" json:"name"`
	Email         string           `db:"email" json:"email"`
	PasswordHash  string           `db:"password_hash" json:"-"`
	Role          string           `db:"role" json:"role"`
	CompanyName   *string          `db:"company_name" json:"company_name,omitempty"`
	HourlyRate    *decimal.Decimal `db:"hourly_rate" json:"hourly_rate,omitempty"`
	WalletBalance decimal.Decimal  `db:"wallet_balance" json:"wallet_balance"`
	Rating        decimal.Decimal  `db:"rating" json:"rating"`
	TotalReviews  int              `db:"total_reviews" json:"total_reviews"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// IsClient сообщает, является ли пользователь заказчиком.
func (u *User) IsClient() bool { return u.Role == RoleClient }

// IsFreelancer сообщает, является ли пользователь исполнителем.
func (u *User) IsFreelancer() bool { return u.Role == RoleFreelancer }

// PublicProfile - данные пользователя, видимые другим участникам.
type PublicProfile struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Role         string           `db:"role" json:"role"`
	CompanyName  *string          `db:"company_name" json:"company_name,omitempty"`
	HourlyRate   *decimal.Decimal `db:"hourly_rate" json:"hourly_rate,omitempty"`
	Rating       decimal.Decimal  `db:"rating" json:"rating"`
	TotalReviews int              `db:"total_reviews" json:"total_reviews"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
