package order

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusCompleted      OrderStatus = "COMPLETED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusFailed         OrderStatus = "FAILED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Order is the system of record for a checkout. It is created once by
// the orchestrator and thereafter mutated only by webhook reconcilers
// and admin shipping actions.
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	UserID      uuid.UUID

	Status        OrderStatus
	PaymentStatus PaymentStatus

	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64

	PaymentIntentID *string

	TrackingNumber    *string
	CourierService    *string
	EstimatedDelivery *time.Time
	ShippingAddressID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []OrderItem
}

// OrderItem captures the price actually charged at order time; it never
// tracks later catalog price changes. Price is zero for a claimed drop.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	PriceCents  int64
}

// CartLine is one submitted cart entry.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type CheckoutResult struct {
	OrderID        uuid.UUID
	OrderNumber    string
	TotalCents     int64
	TrackingNumber *string
	PaymentStatus  PaymentStatus
}
