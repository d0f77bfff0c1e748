package address

import (
	"context"
	"database/sql"
	"errors"

	"dailydeals-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Address, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// Create inserts the address; when addr.IsDefault is set, other
	// defaults are cleared inside the same transaction.
	Create(ctx context.Context, addr *Address) error
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// SetDefault clears the user's previous default and marks the given
	// address in one transaction, so there is never a window with zero
	// or multiple defaults.
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const addressColumns = `
	id, user_id, first_name, last_name, phone,
	line1, line2, city, province, postal_code, country,
	is_default, created_at
`

func scanAddress(scan func(dest ...any) error) (*Address, error) {
	var a Address
	err := scan(
		&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Phone,
		&a.Line1, &a.Line2, &a.City, &a.Province, &a.PostalCode, &a.Country,
		&a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "GetByUserID"),
		zap.String("user_id", userID.String()),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Address
	for rows.Next() {
		a, err := scanAddress(rows.Scan)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, a)
	}

	return res, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id, userID uuid.UUID) (*Address, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+addressColumns+`
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	a, err := scanAddress(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get address", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (r *repository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID,
	).Scan(&count)
	return count, err
}

func (r *repository) Create(ctx context.Context, addr *Address) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Create"),
		zap.String("address_id", addr.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if addr.IsDefault {
		_, err = tx.ExecContext(ctx, `
			UPDATE addresses
			SET is_default = false
			WHERE user_id = $1 AND is_default = true
		`, addr.UserID)
		if err != nil {
			log.Error("failed to clear previous default", zap.Error(err))
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO addresses (
			id, user_id, first_name, last_name, phone,
			line1, line2, city, province, postal_code, country,
			is_default
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		addr.ID, addr.UserID, addr.FirstName, addr.LastName, addr.Phone,
		addr.Line1, addr.Line2, addr.City, addr.Province, addr.PostalCode, addr.Country,
		addr.IsDefault,
	)
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM addresses
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *repository) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "SetDefault"),
		zap.String("user_id", userID.String()),
		zap.String("address_id", addressID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = false
		WHERE user_id = $1 AND is_default = true
	`, userID)
	if err != nil {
		log.Error("failed to clear previous default", zap.Error(err))
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = true
		WHERE id = $1 AND user_id = $2
	`, addressID, userID)
	if err != nil {
		log.Error("failed to set default", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAddressNotFound
	}

	return tx.Commit()
}
