package address

import (
	"context"

	"dailydeals-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateAddress"),
		zap.String("user_id", userID.String()),
	)

	count, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= MaxPerUser {
		log.Warn("address limit reached", zap.Int("count", count))
		return nil, ErrAddressLimitReached
	}

	country := input.Country
	if country == "" {
		country = "South Africa"
	}

	addr := &Address{
		ID:         uuid.New(),
		UserID:     userID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Phone:      input.Phone,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		Province:   input.Province,
		PostalCode: input.PostalCode,
		Country:    country,
		// First address becomes the default automatically.
		IsDefault: input.SetAsDefault || count == 0,
	}

	if err := s.repo.Create(ctx, addr); err != nil {
		log.Error("failed to create address", zap.Error(err))
		return nil, err
	}

	return addr, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.repo.Delete(ctx, addressID, userID)
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.repo.SetDefault(ctx, userID, addressID)
}
