package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func strPtr(s string) *string { return &s }

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("secret", time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	rate := decimal.RequireFromString("25.555")
	result, err := service.Register(ctx, RegisterInput{
		Name:       "Анна",
		Email:      "Anna@Example.com",
		Password:   "Password1",
		Role:       models.RoleFreelancer,
		HourlyRate: &rate,
	})
	if err != nil {
		t.Fatalf("регистрация завершилась ошибкой: %v", err)
	}
	if result.Token == nil || result.Token.Token == "" {
		t.Fatalf("ожидали выданный токен")
	}
	if result.User.Email != "anna@example.com" {
		t.Fatalf("email должен быть нормализован, получили %s", result.User.Email)
	}
	if !result.User.WalletBalance.Equal(models.DefaultWalletBalance) {
		t.Fatalf("ожидали начальный баланс %s, получили %s", models.DefaultWalletBalance, result.User.WalletBalance)
	}
	if result.User.HourlyRate == nil || !result.User.HourlyRate.Equal(decimal.RequireFromString("25.56")) {
		t.Fatalf("ставка должна округляться до двух знаков")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("Password1")); err != nil {
		t.Fatalf("пароль должен храниться в виде bcrypt хеша")
	}

	loginResult, err := service.Login(ctx, LoginInput{Email: "anna@example.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("вход завершился ошибкой: %v", err)
	}
	userID, role, err := tokenManager.ParseAccess(loginResult.Token.Token)
	if err != nil {
		t.Fatalf("токен не разбирается: %v", err)
	}
	if userID != result.User.ID || role != models.RoleFreelancer {
		t.Fatalf("токен содержит чужие данные: %s %s", userID, role)
	}

	me, err := service.Me(ctx, userID)
	if err != nil {
		t.Fatalf("Me завершился ошибкой: %v", err)
	}
	if me.ID != result.User.ID {
		t.Fatalf("Me вернул другого пользователя")
	}
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	repo := newMockAuthRepository()
	service := NewAuthService(repo, NewTokenManager("secret", time.Hour))
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{
		Name:        "ООО Ромашка",
		Email:       "client@example.com",
		Password:    "Password1",
		Role:        models.RoleClient,
		CompanyName: strPtr("Ромашка"),
	})
	if err != nil {
		t.Fatalf("регистрация завершилась ошибкой: %v", err)
	}

	if _, err := service.Login(ctx, LoginInput{Email: "client@example.com", Password: "wrong-pass1"}); err != apperror.ErrInvalidCredentials {
		t.Fatalf("ожидали ErrInvalidCredentials для неверного пароля, получили %v", err)
	}
	if _, err := service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Password1"}); err != apperror.ErrInvalidCredentials {
		t.Fatalf("ожидали ErrInvalidCredentials для неизвестного email, получили %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	service := NewAuthService(newMockAuthRepository(), NewTokenManager("secret", time.Hour))
	rate := decimal.NewFromInt(10)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"короткий пароль", RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "abc1", Role: models.RoleFreelancer, HourlyRate: &rate}},
		{"пароль без цифр", RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "password", Role: models.RoleFreelancer, HourlyRate: &rate}},
		{"плохой email", RegisterInput{Name: "Иван", Email: "ivan@", Password: "Password1", Role: models.RoleFreelancer, HourlyRate: &rate}},
		{"неизвестная роль", RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "Password1", Role: "admin"}},
		{"заказчик без компании", RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "Password1", Role: models.RoleClient}},
		{"исполнитель без ставки", RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "Password1", Role: models.RoleFreelancer}},
		{"отрицательная ставка", RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "Password1", Role: models.RoleFreelancer, HourlyRate: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.in)
			if !apperror.IsValidation(err) {
				t.Fatalf("ожидали ошибку валидации, получили %v", err)
			}
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	service := NewAuthService(newMockAuthRepository(), NewTokenManager("secret", time.Hour))
	in := RegisterInput{
		Name:        "Пётр",
		Email:       "petr@example.com",
		Password:    "Password1",
		Role:        models.RoleClient,
		CompanyName: strPtr("Студия"),
	}

	if _, err := service.Register(context.Background(), in); err != nil {
		t.Fatalf("регистрация завершилась ошибкой: %v", err)
	}
	_, err := service.Register(context.Background(), in)
	if err != apperror.ErrEmailTaken {
		t.Fatalf("ожидали ErrEmailTaken, получили %v", err)
	}
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.GenerateAccess(&models.User{ID: uuid.New(), Role: models.RoleClient})
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}
	if _, _, err := verifier.ParseAccess(token.Token); err == nil {
		t.Fatalf("токен с чужой подписью должен отклоняться")
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := manager.GenerateAccess(&models.User{ID: uuid.New(), Role: models.RoleFreelancer})
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}
	if _, _, err := manager.ParseAccess(token.Token); err == nil {
		t.Fatalf("просроченный токен должен отклоняться")
	}
}
