package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/repository"
	"github.com/ignatzorin/gig-escrow/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	CompanyName *string
	HourlyRate  *decimal.Decimal
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token *AccessToken `json:"token"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Register создаёт пользователя с начальным балансом кошелька.
// Заказчику обязательно название компании, исполнителю - почасовая ставка.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name, err := validation.ValidateName(in.Name)
	if err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, invalid(err)
	}
	if _, ok := models.ValidRoles[in.Role]; !ok {
		return nil, apperror.Validation("роль должна быть client или freelancer")
	}

	user := &models.User{
		Name:          name,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Role:          in.Role,
		WalletBalance: models.DefaultWalletBalance,
	}

	switch in.Role {
	case models.RoleClient:
		if in.CompanyName == nil {
			return nil, apperror.Validation("для заказчика обязательно название компании")
		}
		company, err := validation.ValidateRequired("название компании", *in.CompanyName, validation.MaxCompanyNameLength)
		if err != nil {
			return nil, invalid(err)
		}
		user.CompanyName = &company
	case models.RoleFreelancer:
		if in.HourlyRate == nil {
			return nil, apperror.Validation("для исполнителя обязательна почасовая ставка")
		}
		if in.HourlyRate.IsNegative() {
			return nil, apperror.Validation("почасовая ставка не может быть отрицательной")
		}
		rate := in.HourlyRate.Round(2)
		user.HourlyRate = &rate
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	user.PasswordHash = string(passHash)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateError(err)
	}

	token, err := s.tokenManager.GenerateAccess(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login проверяет учётные данные и возвращает токен.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, invalid(err)
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, translateError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateAccess(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Me возвращает текущего пользователя вместе с балансом.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}
