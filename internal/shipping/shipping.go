// Package shipping abstracts shipment creation and tracking. The
// checkout orchestrator uses a primary courier with a mock fallback via
// Chain; shipping failures never block an order.
package shipping

import (
	"context"
	"time"
)

type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
)

type Shipment struct {
	TrackingNumber    string
	Service           string
	EstimatedDelivery time.Time
	Status            ShipmentStatus
}

type Quote struct {
	Service       string
	CostCents     int64
	EstimatedDays int
}

type DeliveryAddress struct {
	Line1      string
	Line2      string
	City       string
	Province   string
	PostalCode string
	Country    string
}

type ShipmentItem struct {
	Name       string
	Quantity   int
	ValueCents int64
}

type CreateShipmentParams struct {
	OrderNumber    string
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	Address        DeliveryAddress
	Items          []ShipmentItem
	TotalCents     int64
}

type Provider interface {
	GetQuote(ctx context.Context, params CreateShipmentParams) ([]Quote, error)
	CreateShipment(ctx context.Context, params CreateShipmentParams) (*Shipment, error)
	TrackShipment(ctx context.Context, trackingNumber string) (*Shipment, error)
}
