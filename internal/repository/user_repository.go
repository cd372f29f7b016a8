package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/repository/common"
)

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт пользователя. Баланс, рейтинг и число отзывов берутся из значений по умолчанию.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, name, email, password_hash, role, company_name, hourly_rate, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING rating, total_reviews, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.Role,
		user.CompanyName, user.HourlyRate, user.WalletBalance,
	).Scan(&user.Rating, &user.TotalReviews, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if constraint, ok := common.UniqueViolation(err); ok && constraint == common.ConstraintUserEmail {
			return ErrEmailTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetOne[models.User](ctx, r.db, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByID возвращает пользователя по ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetOne[models.User](ctx, r.db, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetPublicProfile возвращает данные пользователя без email и баланса.
func (r *UserRepository) GetPublicProfile(ctx context.Context, id uuid.UUID) (*models.PublicProfile, error) {
	return common.GetOne[models.PublicProfile](ctx, r.db, ErrUserNotFound, `
		SELECT id, name, role, company_name, hourly_rate, rating, total_reviews, created_at
		FROM users WHERE id = $1
	`, id)
}
