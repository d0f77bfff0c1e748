package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dailydeals-be/internal/address"
	"dailydeals-be/internal/catalog"
	"dailydeals-be/internal/clock"
	"dailydeals-be/internal/config"
	"dailydeals-be/internal/drop"
	"dailydeals-be/internal/logger"
	"dailydeals-be/internal/metrics"
	"dailydeals-be/internal/payment"
	"dailydeals-be/internal/shipping"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pricing holds the checkout money rules. Amounts are cents (ZAR).
type Pricing struct {
	FreeShippingThresholdCents int64
	FlatShippingFeeCents       int64
	VATMode                    config.VATMode
	VATRatePercent             int64
	MockPayments               bool
}

func PricingFromConfig(cfg *config.Config) Pricing {
	return Pricing{
		FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
		FlatShippingFeeCents:       cfg.FlatShippingFeeCents,
		VATMode:                    cfg.VATMode,
		VATRatePercent:             cfg.VATRatePercent,
		MockPayments:               cfg.PaymentsMode != "live",
	}
}

// ShippingCents is zero once the subtotal crosses the free-shipping
// threshold, the flat fee otherwise.
func (p Pricing) ShippingCents(subtotalCents int64) int64 {
	if subtotalCents > p.FreeShippingThresholdCents {
		return 0
	}
	return p.FlatShippingFeeCents
}

// TaxCents is zero in inclusive mode (VAT already inside listed prices)
// and a flat percentage of the subtotal in exclusive mode.
func (p Pricing) TaxCents(subtotalCents int64) int64 {
	if p.VATMode == config.VATExclusive {
		return subtotalCents * p.VATRatePercent / 100
	}
	return 0
}

type CheckoutInput struct {
	Lines     []CartLine
	AddressID *uuid.UUID
	// RecipientEmail comes from the authenticated session, not the
	// address book; it only rides along on the shipping label.
	RecipientEmail string
}

type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)

	GetOrder(ctx context.Context, id, userID uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// ConfirmPayment and FailPayment back the payment webhook. Both are
	// replay-safe: a repeat delivery reports applied=false and changes
	// nothing.
	ConfirmPayment(ctx context.Context, paymentIntentID string) (applied bool, err error)
	FailPayment(ctx context.Context, paymentIntentID string) (applied bool, err error)

	// ApplyShipmentStatus backs the shipment webhook, keyed by tracking
	// number.
	ApplyShipmentStatus(ctx context.Context, trackingNumber string, status OrderStatus) error

	// SetShippingDetails is the admin path for filling in shipment
	// fields after a courier failure at checkout time.
	SetShippingDetails(ctx context.Context, orderID uuid.UUID, trackingNumber, courierService string, estimatedDelivery time.Time) error
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
	dropRepo    drop.Repository
	addressRepo address.Repository
	payments    payment.Provider
	shipper     shipping.Provider
	clk         clock.Clock
	pricing     Pricing
	met         *metrics.Checkout
	rng         *rand.Rand
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	dropRepo drop.Repository,
	addressRepo address.Repository,
	payments payment.Provider,
	shipper shipping.Provider,
	clk clock.Clock,
	pricing Pricing,
	met *metrics.Checkout,
) Service {
	return NewServiceWithRand(
		repo, catalogRepo, dropRepo, addressRepo,
		payments, shipper, clk, pricing, met,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
}

// NewServiceWithRand pins the order-number randomness, for tests.
func NewServiceWithRand(
	repo Repository,
	catalogRepo catalog.Repository,
	dropRepo drop.Repository,
	addressRepo address.Repository,
	payments payment.Provider,
	shipper shipping.Provider,
	clk clock.Clock,
	pricing Pricing,
	met *metrics.Checkout,
	rng *rand.Rand,
) Service {
	return &service{
		repo:        repo,
		catalogRepo: catalogRepo,
		dropRepo:    dropRepo,
		addressRepo: addressRepo,
		payments:    payments,
		shipper:     shipper,
		clk:         clk,
		pricing:     pricing,
		met:         met,
		rng:         rng,
	}
}

const orderNumberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (s *service) orderNumber(now time.Time) string {
	suffix := make([]byte, 7)
	for i := range suffix {
		suffix[i] = orderNumberCharset[s.rng.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

func (s *service) Checkout(
	ctx context.Context,
	userID uuid.UUID,
	input CheckoutInput,
) (*CheckoutResult, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("user_id", userID.String()),
	)
	timer := metrics.StartTimer()

	if len(input.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := s.clk.Now()
	dayStart, dayEnd := clock.DayBounds(now)

	var (
		subtotal   int64
		items      []OrderItem
		claims     []DropClaim
		decrements []StockDecrement
	)

	for _, line := range input.Lines {
		pw, err := s.catalogRepo.GetForCheckout(ctx, line.ProductID, dayStart, dayEnd)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
			}
			return nil, err
		}
		if !pw.Product.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, pw.Product.Name)
		}
		if pw.Product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, pw.Product.Name)
		}

		price := pw.Product.PriceCents

		if pw.Drop != nil && drop.IsActive(pw.Drop.DropAt, pw.Drop.ClaimedAt, now) {
			if line.Quantity != 1 {
				return nil, ErrFreeDropQuantityExceeded
			}

			claimed, err := s.dropRepo.UserClaimedBetween(ctx, pw.Product.ID, userID, dayStart, dayEnd)
			if err != nil {
				return nil, err
			}
			if claimed {
				return nil, ErrAlreadyClaimedToday
			}

			price = 0
			claims = append(claims, DropClaim{DropID: pw.Drop.ID, UserID: userID})
		}

		subtotal += price * int64(line.Quantity)
		items = append(items, OrderItem{
			ID:          uuid.New(),
			ProductID:   pw.Product.ID,
			ProductName: pw.Product.Name,
			Quantity:    line.Quantity,
			PriceCents:  price,
		})
		decrements = append(decrements, StockDecrement{
			ProductID: pw.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	shippingCents := s.pricing.ShippingCents(subtotal)
	taxCents := s.pricing.TaxCents(subtotal)
	total := subtotal + shippingCents + taxCents

	o := &Order{
		ID:            uuid.New(),
		OrderNumber:   s.orderNumber(now),
		UserID:        userID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TaxCents:      taxCents,
		TotalCents:    total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	o.Items = items

	// Payment first: a fully free order never touches the gateway.
	liveIntent := false
	if total == 0 {
		ref := fmt.Sprintf("free-%d", now.UnixMilli())
		o.PaymentIntentID = &ref
		o.PaymentStatus = PaymentPaid
		o.Status = StatusConfirmed
	} else {
		intent, err := s.payments.CreateIntent(ctx, payment.CreateIntentParams{
			AmountCents: total,
			Currency:    "ZAR",
			Metadata:    map[string]string{"order_number": o.OrderNumber},
		})
		if err != nil {
			log.Error("payment intent creation failed", zap.Error(err))
			s.met.CheckoutFailures.Inc()
			return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
		}
		o.PaymentIntentID = &intent.ID
		liveIntent = true

		if s.pricing.MockPayments {
			confirmed, err := s.payments.ConfirmPayment(ctx, intent.ID)
			if err != nil {
				log.Warn("mock payment confirmation failed, leaving order pending", zap.Error(err))
			} else if confirmed.Status == payment.StatusSucceeded {
				o.PaymentStatus = PaymentPaid
				o.Status = StatusConfirmed
			}
		}
	}

	// Shipping label is best effort and never blocks the order.
	if input.AddressID != nil {
		s.createShipment(ctx, o, userID, *input.AddressID, input.RecipientEmail)
	}

	if err := s.repo.CreateOrderTx(ctx, o, claims, decrements); err != nil {
		s.met.CheckoutFailures.Inc()
		if liveIntent && o.PaymentIntentID != nil {
			if cancelErr := s.payments.CancelPayment(ctx, *o.PaymentIntentID); cancelErr != nil {
				log.Warn("failed to cancel payment after aborted checkout",
					zap.String("payment_intent_id", *o.PaymentIntentID),
					zap.Error(cancelErr),
				)
			}
		}
		return nil, err
	}

	s.met.OrdersCreated.Inc()
	s.met.DropsClaimed.Add(uint64(len(claims)))

	log.Info("order created",
		zap.String("order_number", o.OrderNumber),
		zap.Int64("total_cents", total),
		zap.Int("claimed_drops", len(claims)),
		zap.Duration("elapsed", timer.Elapsed()),
	)

	return &CheckoutResult{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		TotalCents:     total,
		TrackingNumber: o.TrackingNumber,
		PaymentStatus:  o.PaymentStatus,
	}, nil
}

// createShipment fills the order's shipment fields in place when a
// courier accepts the parcel. Failures are logged and counted only.
func (s *service) createShipment(
	ctx context.Context,
	o *Order,
	userID, addressID uuid.UUID,
	recipientEmail string,
) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "createShipment"),
		zap.String("order_number", o.OrderNumber),
	)

	addr, err := s.addressRepo.GetByID(ctx, addressID, userID)
	if err != nil {
		log.Warn("shipping address unavailable, order proceeds without label", zap.Error(err))
		s.met.ShipmentFailures.Inc()
		return
	}
	o.ShippingAddressID = &addr.ID

	line2 := ""
	if addr.Line2 != nil {
		line2 = *addr.Line2
	}
	shipItems := make([]shipping.ShipmentItem, 0, len(o.Items))
	for _, it := range o.Items {
		shipItems = append(shipItems, shipping.ShipmentItem{
			Name:       it.ProductName,
			Quantity:   it.Quantity,
			ValueCents: it.PriceCents * int64(it.Quantity),
		})
	}

	shipment, err := s.shipper.CreateShipment(ctx, shipping.CreateShipmentParams{
		OrderNumber:    o.OrderNumber,
		RecipientName:  addr.FirstName + " " + addr.LastName,
		RecipientEmail: recipientEmail,
		RecipientPhone: addr.Phone,
		Address: shipping.DeliveryAddress{
			Line1:      addr.Line1,
			Line2:      line2,
			City:       addr.City,
			Province:   addr.Province,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		},
		Items:      shipItems,
		TotalCents: o.TotalCents,
	})
	if err != nil {
		log.Warn("all shipping providers failed, order proceeds without label", zap.Error(err))
		s.met.ShipmentFailures.Inc()
		return
	}

	o.TrackingNumber = &shipment.TrackingNumber
	o.CourierService = &shipment.Service
	est := shipment.EstimatedDelivery
	o.EstimatedDelivery = &est
}

func (s *service) GetOrder(ctx context.Context, id, userID uuid.UUID) (*Order, error) {
	return s.repo.GetDetail(ctx, id, userID)
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ConfirmPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	applied, err := s.repo.MarkPaid(ctx, paymentIntentID, s.clk.Now())
	if err != nil {
		return false, err
	}
	if applied {
		s.met.WebhooksApplied.Inc()
	} else {
		s.met.WebhooksReplayed.Inc()
	}
	return applied, nil
}

func (s *service) FailPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	applied, err := s.repo.MarkPaymentFailed(ctx, paymentIntentID, s.clk.Now())
	if err != nil {
		return false, err
	}
	if applied {
		s.met.WebhooksApplied.Inc()
	} else {
		s.met.WebhooksReplayed.Inc()
	}
	return applied, nil
}

func (s *service) ApplyShipmentStatus(
	ctx context.Context,
	trackingNumber string,
	status OrderStatus,
) error {
	if err := s.repo.UpdateStatusByTracking(ctx, trackingNumber, status, s.clk.Now()); err != nil {
		return err
	}
	s.met.WebhooksApplied.Inc()
	return nil
}

func (s *service) SetShippingDetails(
	ctx context.Context,
	orderID uuid.UUID,
	trackingNumber, courierService string,
	estimatedDelivery time.Time,
) error {
	return s.repo.UpdateShippingDetails(ctx, orderID, trackingNumber, courierService, estimatedDelivery, s.clk.Now())
}
