package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/domain/valueobject"
	"github.com/ignatzorin/gig-escrow/internal/models"
	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
	"github.com/ignatzorin/gig-escrow/internal/validation"
)

// Ограничения пагинации ленты заказов.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// GigRepository описывает чтение и создание заказов.
type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Gig, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error)
}

// GigService управляет заказами.
type GigService struct {
	gigs GigRepository
	now  func() time.Time
}

// NewGigService создаёт сервис заказов.
func NewGigService(gigs GigRepository) *GigService {
	return &GigService{gigs: gigs, now: time.Now}
}

// CreateGigInput - данные нового заказа.
type CreateGigInput struct {
	ClientID    uuid.UUID
	Role        string
	Title       string
	Description string
	Budget      decimal.Decimal
	DeadlineAt  *time.Time
}

// CreateGig публикует заказ. Доступно только заказчикам.
func (s *GigService) CreateGig(ctx context.Context, in CreateGigInput) (*models.Gig, error) {
	if in.Role != models.RoleClient {
		return nil, apperror.Forbidden("создавать заказы могут только заказчики")
	}

	title, err := validation.ValidateGigTitle(in.Title)
	if err != nil {
		return nil, invalid(err)
	}
	description, err := validation.ValidateRequired("описание", in.Description, validation.MaxGigDescriptionLength)
	if err != nil {
		return nil, invalid(err)
	}
	budget, err := valueobject.NewAmount("бюджет", in.Budget)
	if err != nil {
		return nil, err
	}
	if in.DeadlineAt != nil && !in.DeadlineAt.After(s.now()) {
		return nil, apperror.Validation("дедлайн должен быть в будущем")
	}

	gig := &models.Gig{
		ClientID:    in.ClientID,
		Title:       title,
		Description: description,
		Budget:      budget,
		Status:      models.GigStatusOpen,
		DeadlineAt:  in.DeadlineAt,
	}
	if err := s.gigs.Create(ctx, gig); err != nil {
		return nil, translateError(err)
	}
	return gig, nil
}

// ListOpenGigs возвращает открытые заказы, новые первыми.
func (s *GigService) ListOpenGigs(ctx context.Context, limit, offset int) ([]models.Gig, error) {
	limit, offset = normalizePage(limit, offset)
	gigs, err := s.gigs.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, translateError(err)
	}
	return gigs, nil
}

// GetGig возвращает заказ по ID.
func (s *GigService) GetGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	gig, err := s.gigs.GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err)
	}
	return gig, nil
}

// ListMyGigs возвращает заказы заказчика.
func (s *GigService) ListMyGigs(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error) {
	gigs, err := s.gigs.ListByClient(ctx, clientID)
	if err != nil {
		return nil, translateError(err)
	}
	return gigs, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
