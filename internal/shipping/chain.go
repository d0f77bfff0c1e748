package shipping

import (
	"context"
	"errors"

	"dailydeals-be/internal/logger"

	"go.uber.org/zap"
)

// Chain tries each provider in order and returns the first success.
// It is a simple ordered fallback, not a router: the primary carrier
// is always attempted first.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) CreateShipment(ctx context.Context, params CreateShipmentParams) (*Shipment, error) {
	log := logger.FromCtx(ctx).With(zap.String("order_number", params.OrderNumber))

	var lastErr error
	for i, p := range c.providers {
		shipment, err := p.CreateShipment(ctx, params)
		if err == nil {
			if i > 0 {
				log.Warn("shipment created via fallback provider", zap.Int("provider_index", i))
			}
			return shipment, nil
		}

		log.Error("shipping provider failed, trying next",
			zap.Int("provider_index", i),
			zap.Error(err),
		)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no shipping providers configured")
	}
	return nil, lastErr
}

func (c *Chain) GetQuote(ctx context.Context, params CreateShipmentParams) ([]Quote, error) {
	var lastErr error
	for _, p := range c.providers {
		quotes, err := p.GetQuote(ctx, params)
		if err == nil {
			return quotes, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no shipping providers configured")
	}
	return nil, lastErr
}

func (c *Chain) TrackShipment(ctx context.Context, trackingNumber string) (*Shipment, error) {
	var lastErr error
	for _, p := range c.providers {
		shipment, err := p.TrackShipment(ctx, trackingNumber)
		if err == nil {
			return shipment, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no shipping providers configured")
	}
	return nil, lastErr
}
