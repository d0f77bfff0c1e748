package shipping

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// MockProvider is the fallback carrier: it always succeeds and hands out
// locally generated tracking numbers.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) GetQuote(ctx context.Context, params CreateShipmentParams) ([]Quote, error) {
	return []Quote{
		{Service: "Standard", CostCents: 6500, EstimatedDays: 5},
		{Service: "Express", CostCents: 12000, EstimatedDays: 2},
		{Service: "Overnight", CostCents: 20000, EstimatedDays: 1},
	}, nil
}

func (p *MockProvider) CreateShipment(ctx context.Context, params CreateShipmentParams) (*Shipment, error) {
	suffix := strings.ToUpper(fmt.Sprintf("%08x", rand.Uint32()))
	trackingNumber := fmt.Sprintf("TG-%d-%s", time.Now().Year(), suffix)

	estimatedDays := 3 + rand.Intn(3)

	return &Shipment{
		TrackingNumber:    trackingNumber,
		Service:           "Standard",
		EstimatedDelivery: time.Now().AddDate(0, 0, estimatedDays),
		Status:            StatusPending,
	}, nil
}

func (p *MockProvider) TrackShipment(ctx context.Context, trackingNumber string) (*Shipment, error) {
	return &Shipment{
		TrackingNumber:    trackingNumber,
		Service:           "Standard",
		EstimatedDelivery: time.Now().AddDate(0, 0, 3),
		Status:            StatusInTransit,
	}, nil
}
