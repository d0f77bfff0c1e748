package catalog

import (
	"context"
	"time"

	"dailydeals-be/internal/clock"
	"dailydeals-be/internal/drop"
	"dailydeals-be/internal/logger"

	"go.uber.org/zap"
)

// ListedProduct is a catalog entry with the drop state resolved at
// request time. DropActive is computed fresh on every read.
type ListedProduct struct {
	Product    Product
	DropAt     *time.Time
	DropActive bool
}

type Service interface {
	List(ctx context.Context, opts ListOptions) ([]*ListedProduct, int64, error)
}

type service struct {
	repo Repository
	clk  clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clk: clk}
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*ListedProduct, int64, error) {
	now := s.clk.Now()
	dayStart, dayEnd := clock.DayBounds(now)

	products, total, err := s.repo.List(ctx, opts, dayStart, dayEnd)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list catalog", zap.Error(err))
		return nil, 0, err
	}

	res := make([]*ListedProduct, 0, len(products))
	for _, pw := range products {
		lp := &ListedProduct{Product: pw.Product}
		if pw.Drop != nil {
			at := pw.Drop.DropAt
			lp.DropAt = &at
			lp.DropActive = drop.IsActive(pw.Drop.DropAt, pw.Drop.ClaimedAt, now)
		}
		res = append(res, lp)
	}

	return res, total, nil
}
