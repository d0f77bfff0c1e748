package drop

import (
	"context"
	"database/sql"
	"time"

	"dailydeals-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// ReseedWindow replaces the day's schedule in one transaction:
	// deletes every drop inside [start, end], samples count distinct
	// active in-stock products uniformly at random, and inserts one
	// drop per (product, time) pair. If fewer than count products
	// qualify, nothing is changed and an InsufficientInventoryError
	// is returned.
	ReseedWindow(ctx context.Context, start, end time.Time, count int, times []time.Time) ([]*FreeDrop, error)

	ListBetween(ctx context.Context, start, end time.Time) ([]*FreeDrop, error)

	// UserClaimedBetween reports whether the user already holds a claim
	// on one of this product's drops inside [start, end].
	UserClaimedBetween(ctx context.Context, productID, userID uuid.UUID, start, end time.Time) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ReseedWindow(
	ctx context.Context,
	start, end time.Time,
	count int,
	times []time.Time,
) ([]*FreeDrop, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Drop"),
		zap.String("method", "ReseedWindow"),
		zap.Int("count", count),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// Sample first so a shortfall leaves the existing schedule untouched.
	rows, err := tx.QueryContext(ctx, `
		SELECT id
		FROM products
		WHERE active = true AND stock > 0
		ORDER BY RANDOM()
		LIMIT $1
	`, count)
	if err != nil {
		log.Error("failed to sample products", zap.Error(err))
		return nil, err
	}

	var productIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		productIDs = append(productIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(productIDs) < count {
		log.Warn("not enough eligible products",
			zap.Int("needed", count),
			zap.Int("found", len(productIDs)),
		)
		return nil, &InsufficientInventoryError{Needed: count, Found: len(productIDs)}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM free_drops
		WHERE drop_at >= $1 AND drop_at <= $2
	`, start, end)
	if err != nil {
		log.Error("failed to clear today's drops", zap.Error(err))
		return nil, err
	}

	drops := make([]*FreeDrop, 0, count)
	for i := 0; i < count; i++ {
		d := &FreeDrop{
			ID:        uuid.New(),
			ProductID: productIDs[i],
			DropAt:    times[i],
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO free_drops (id, product_id, drop_at)
			VALUES ($1, $2, $3)
		`, d.ID, d.ProductID, d.DropAt)
		if err != nil {
			log.Error("failed to insert drop",
				zap.String("product_id", d.ProductID.String()),
				zap.Error(err),
			)
			return nil, err
		}

		drops = append(drops, d)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit reseed transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("drop schedule reseeded", zap.Int("drops", len(drops)))
	return drops, nil
}

func (r *repository) ListBetween(
	ctx context.Context,
	start, end time.Time,
) ([]*FreeDrop, error) {

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, drop_at, claimed_at, claimed_by_user_id, created_at
		FROM free_drops
		WHERE drop_at >= $1 AND drop_at <= $2
		ORDER BY drop_at ASC
	`, start, end)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list drops", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var drops []*FreeDrop
	for rows.Next() {
		var d FreeDrop
		if err := rows.Scan(
			&d.ID, &d.ProductID, &d.DropAt,
			&d.ClaimedAt, &d.ClaimedByUserID, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		drops = append(drops, &d)
	}

	return drops, rows.Err()
}

func (r *repository) UserClaimedBetween(
	ctx context.Context,
	productID, userID uuid.UUID,
	start, end time.Time,
) (bool, error) {

	var claimed bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM free_drops
			WHERE product_id = $1
			  AND claimed_by_user_id = $2
			  AND drop_at >= $3 AND drop_at <= $4
		)
	`, productID, userID, start, end).Scan(&claimed)

	return claimed, err
}
