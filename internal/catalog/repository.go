package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dailydeals-be/internal/drop"
	"dailydeals-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

// ProductWithDrop pairs a product with today's drop row, if one exists.
// Whether the drop is live is decided by the drop evaluator at read time,
// never stored.
type ProductWithDrop struct {
	Product Product
	Drop    *drop.FreeDrop
}

type Repository interface {
	// List returns active products with today's drop row joined in, so
	// callers can compute drop-activeness without a second query.
	List(ctx context.Context, opts ListOptions, dayStart, dayEnd time.Time) ([]*ProductWithDrop, int64, error)

	// GetForCheckout loads one product plus its drop scheduled for the
	// given day window. Returns ErrProductNotFound if absent.
	GetForCheckout(ctx context.Context, id uuid.UUID, dayStart, dayEnd time.Time) (*ProductWithDrop, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.brand, p.category,
	p.price_cents, p.original_price_cents, p.discount_percent,
	p.stock, p.active, p.featured, p.image_url,
	p.created_at, p.updated_at
`

// buildFilters renders the optional list filters starting at the given
// placeholder index, so the same filters can serve both the count query
// and the data query (which binds the day bounds first).
func buildFilters(opts ListOptions, argIndex int) (string, []any) {
	clause := ""
	var args []any

	if opts.Category != nil && *opts.Category != "" {
		clause += fmt.Sprintf(" AND p.category = $%d", argIndex)
		args = append(args, *opts.Category)
		argIndex++
	}

	if opts.Featured != nil {
		clause += fmt.Sprintf(" AND p.featured = $%d", argIndex)
		args = append(args, *opts.Featured)
		argIndex++
	}

	if opts.Search != nil && *opts.Search != "" {
		clause += fmt.Sprintf(
			" AND (p.name ILIKE $%d OR p.description ILIKE $%d OR p.brand ILIKE $%d)",
			argIndex, argIndex, argIndex,
		)
		args = append(args, "%"+*opts.Search+"%")
		argIndex++
	}

	return clause, args
}

func scanProductWithDrop(scan func(dest ...any) error) (*ProductWithDrop, error) {
	var (
		pw        ProductWithDrop
		dropID    *uuid.UUID
		productID *uuid.UUID
		dropAt    *time.Time
		claimedAt *time.Time
		claimedBy *uuid.UUID
	)

	err := scan(
		&pw.Product.ID, &pw.Product.Name, &pw.Product.Description,
		&pw.Product.Brand, &pw.Product.Category,
		&pw.Product.PriceCents, &pw.Product.OriginalPriceCents, &pw.Product.DiscountPercent,
		&pw.Product.Stock, &pw.Product.Active, &pw.Product.Featured, &pw.Product.ImageURL,
		&pw.Product.CreatedAt, &pw.Product.UpdatedAt,
		&dropID, &productID, &dropAt, &claimedAt, &claimedBy,
	)
	if err != nil {
		return nil, err
	}

	if dropID != nil && dropAt != nil {
		pw.Drop = &drop.FreeDrop{
			ID:              *dropID,
			ProductID:       *productID,
			DropAt:          *dropAt,
			ClaimedAt:       claimedAt,
			ClaimedByUserID: claimedBy,
		}
	}

	return &pw, nil
}

func (r *repository) List(
	ctx context.Context,
	opts ListOptions,
	dayStart, dayEnd time.Time,
) ([]*ProductWithDrop, int64, error) {

	limit := int32(12)
	page := int32(1)
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	if limit > 100 {
		limit = 100
	}
	if opts.Page > 0 {
		page = opts.Page
	}
	offset := (page - 1) * limit

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Catalog"),
		zap.String("method", "List"),
		zap.Int32("limit", limit),
		zap.Int32("page", page),
	)

	countFilters, countArgs := buildFilters(opts, 1)
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products p WHERE p.active = true"+countFilters,
		countArgs...,
	).Scan(&total)
	if err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, err
	}

	filters, filterArgs := buildFilters(opts, 3)
	args := append([]any{dayStart, dayEnd}, filterArgs...)
	limitIndex := len(args) + 1

	query := `
		SELECT` + productColumns + `,
			d.id, d.product_id, d.drop_at, d.claimed_at, d.claimed_by_user_id
		FROM products p
		LEFT JOIN free_drops d
			ON d.product_id = p.id
			AND d.drop_at >= $1 AND d.drop_at <= $2
		WHERE p.active = true
	` + filters + `
		ORDER BY p.created_at DESC
	` + fmt.Sprintf(" LIMIT $%d OFFSET $%d", limitIndex, limitIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var res []*ProductWithDrop
	for rows.Next() {
		pw, err := scanProductWithDrop(rows.Scan)
		if err != nil {
			log.Error("failed to scan product row", zap.Error(err))
			return nil, 0, err
		}
		res = append(res, pw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return res, total, nil
}

func (r *repository) GetForCheckout(
	ctx context.Context,
	id uuid.UUID,
	dayStart, dayEnd time.Time,
) (*ProductWithDrop, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Catalog"),
		zap.String("method", "GetForCheckout"),
		zap.String("product_id", id.String()),
	)

	query := `
		SELECT` + productColumns + `,
			d.id, d.product_id, d.drop_at, d.claimed_at, d.claimed_by_user_id
		FROM products p
		LEFT JOIN free_drops d
			ON d.product_id = p.id
			AND d.drop_at >= $2 AND d.drop_at <= $3
		WHERE p.id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id, dayStart, dayEnd)
	pw, err := scanProductWithDrop(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("product not found")
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("failed to query product for checkout", zap.Error(err))
		return nil, err
	}

	return pw, nil
}
