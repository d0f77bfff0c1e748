package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dailydeals-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DropClaim marks one free drop as taken by the buying user. The claim
// only succeeds while the drop row is still unclaimed.
type DropClaim struct {
	DropID uuid.UUID
	UserID uuid.UUID
}

// StockDecrement reserves inventory for one cart line. The decrement
// only succeeds while at least Quantity units remain.
type StockDecrement struct {
	ProductID uuid.UUID
	Quantity  int
}

type Repository interface {
	// CreateOrderTx settles a checkout in one transaction: claims each
	// drop, decrements each product's stock, and inserts the order with
	// its items. A lost claim race surfaces as ErrDropNoLongerAvailable
	// and a lost stock race as ErrInsufficientStock; either rolls the
	// whole transaction back.
	CreateOrderTx(ctx context.Context, o *Order, claims []DropClaim, decrements []StockDecrement) error

	GetDetail(ctx context.Context, id, userID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// MarkPaid confirms the order holding the given payment intent.
	// Returns applied=false without error when the order is already
	// paid, so webhook replays stay harmless.
	MarkPaid(ctx context.Context, paymentIntentID string, now time.Time) (applied bool, err error)

	// MarkPaymentFailed fails a still-pending order. Terminal payment
	// states are never reverted.
	MarkPaymentFailed(ctx context.Context, paymentIntentID string, now time.Time) (applied bool, err error)

	UpdateStatusByTracking(ctx context.Context, trackingNumber string, status OrderStatus, now time.Time) error
	UpdateShippingDetails(ctx context.Context, orderID uuid.UUID, trackingNumber, courierService string, estimatedDelivery time.Time, now time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, order_number, user_id, status, payment_status,
	subtotal_cents, shipping_cents, tax_cents, total_cents,
	payment_intent_id, tracking_number, courier_service,
	estimated_delivery, shipping_address_id,
	created_at, updated_at
`

func scanOrder(scan func(dest ...any) error) (*Order, error) {
	var o Order
	err := scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus,
		&o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents,
		&o.PaymentIntentID, &o.TrackingNumber, &o.CourierService,
		&o.EstimatedDelivery, &o.ShippingAddressID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) CreateOrderTx(
	ctx context.Context,
	o *Order,
	claims []DropClaim,
	decrements []StockDecrement,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_number", o.OrderNumber),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// Claims first: the drop race is the common one and losing it must
	// not leave stock half-reserved.
	for _, c := range claims {
		res, err := tx.ExecContext(ctx, `
			UPDATE free_drops
			SET claimed_at = $1, claimed_by_user_id = $2
			WHERE id = $3 AND claimed_at IS NULL
		`, o.CreatedAt, c.UserID, c.DropID)
		if err != nil {
			log.Error("failed to claim drop", zap.String("drop_id", c.DropID.String()), zap.Error(err))
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			log.Warn("drop already claimed", zap.String("drop_id", c.DropID.String()))
			return ErrDropNoLongerAvailable
		}
	}

	for _, d := range decrements {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = $2
			WHERE id = $3 AND stock >= $1
		`, d.Quantity, o.CreatedAt, d.ProductID)
		if err != nil {
			log.Error("failed to decrement stock", zap.String("product_id", d.ProductID.String()), zap.Error(err))
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			log.Warn("stock ran out during settlement", zap.String("product_id", d.ProductID.String()))
			return ErrInsufficientStock
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status, payment_status,
			subtotal_cents, shipping_cents, tax_cents, total_cents,
			payment_intent_id, tracking_number, courier_service,
			estimated_delivery, shipping_address_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentStatus,
		o.SubtotalCents, o.ShippingCents, o.TaxCents, o.TotalCents,
		o.PaymentIntentID, o.TrackingNumber, o.CourierService,
		o.EstimatedDelivery, o.ShippingAddressID,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.PriceCents)
		if err != nil {
			log.Error("failed to insert order item", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}
	committed = true

	return nil
}

func (r *repository) GetDetail(ctx context.Context, id, userID uuid.UUID) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "GetDetail"),
		zap.String("order_id", id.String()),
	)

	row := r.db.QueryRowContext(ctx,
		"SELECT"+orderColumns+"FROM orders WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	o, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to query order", zap.Error(err))
		return nil, err
	}

	o.Items, err = r.itemsFor(ctx, o.ID)
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}

	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "ListByUser"),
		zap.String("user_id", userID.String()),
	)

	rows, err := r.db.QueryContext(ctx,
		"SELECT"+orderColumns+"FROM orders WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
			log.Error("failed to load order items", zap.Error(err))
			return nil, err
		}
	}

	return orders, nil
}

func (r *repository) itemsFor(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price_cents
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID,
			&it.ProductName, &it.Quantity, &it.PriceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *repository) MarkPaid(
	ctx context.Context,
	paymentIntentID string,
	now time.Time,
) (bool, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "MarkPaid"),
		zap.String("payment_intent_id", paymentIntentID),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'PAID', status = 'CONFIRMED', updated_at = $2
		WHERE payment_intent_id = $1 AND payment_status = 'PENDING'
	`, paymentIntentID, now)
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	exists, err := r.intentExists(ctx, paymentIntentID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrOrderNotFound
	}

	log.Info("success webhook ignored, payment already settled")
	return false, nil
}

func (r *repository) MarkPaymentFailed(
	ctx context.Context,
	paymentIntentID string,
	now time.Time,
) (bool, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "MarkPaymentFailed"),
		zap.String("payment_intent_id", paymentIntentID),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'FAILED', status = 'CANCELLED', updated_at = $2
		WHERE payment_intent_id = $1 AND payment_status = 'PENDING'
	`, paymentIntentID, now)
	if err != nil {
		log.Error("failed to mark payment failed", zap.Error(err))
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	exists, err := r.intentExists(ctx, paymentIntentID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrOrderNotFound
	}

	log.Info("failure webhook ignored, payment already settled")
	return false, nil
}

func (r *repository) intentExists(ctx context.Context, paymentIntentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE payment_intent_id = $1)
	`, paymentIntentID).Scan(&exists)
	return exists, err
}

func (r *repository) UpdateStatusByTracking(
	ctx context.Context,
	trackingNumber string,
	status OrderStatus,
	now time.Time,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "UpdateStatusByTracking"),
		zap.String("tracking_number", trackingNumber),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE tracking_number = $1
	`, trackingNumber, status, now)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *repository) UpdateShippingDetails(
	ctx context.Context,
	orderID uuid.UUID,
	trackingNumber, courierService string,
	estimatedDelivery time.Time,
	now time.Time,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "UpdateShippingDetails"),
		zap.String("order_id", orderID.String()),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET tracking_number = $2, courier_service = $3, estimated_delivery = $4, updated_at = $5
		WHERE id = $1
	`, orderID, trackingNumber, courierService, estimatedDelivery, now)
	if err != nil {
		log.Error("failed to update shipping details", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
