package address

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SetDefault(t *testing.T) {
	ctx := context.Background()
	userID, addressID := uuid.New(), uuid.New()

	t.Run("ClearAndSetInOneTransaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE addresses\s+SET is_default = false`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE addresses\s+SET is_default = true`).
			WithArgs(addressID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.SetDefault(ctx, userID, addressID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownAddressRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE addresses\s+SET is_default = false`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE addresses\s+SET is_default = true`).
			WithArgs(addressID, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.SetDefault(ctx, userID, addressID)
		assert.ErrorIs(t, err, ErrAddressNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Create_DefaultClearsOthers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	addr := &Address{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		FirstName: "Thandi",
		LastName:  "Nkosi",
		City:      "Cape Town",
		IsDefault: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE addresses\s+SET is_default = false`).
		WithArgs(addr.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO addresses`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Create(context.Background(), addr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	id, userID := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM addresses`).
		WithArgs(id, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id, userID), ErrAddressNotFound)
}
