package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shillingix/backend/pkg/domain/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() }) //nolint:errcheck

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestDebitIfSufficient_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE "wallets"`).
		WithArgs(int64(500), userID, int64(500)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DebitIfSufficient(context.Background(), userID, 500)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitIfSufficient_InsufficientFunds(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)
	userID := uuid.New()

	// Guard in the WHERE clause matches no row: balance < amount.
	mock.ExpectExec(`UPDATE "wallets"`).
		WithArgs(int64(10_000), userID, int64(10_000)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DebitIfSufficient(context.Background(), userID, 10_000)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitIfSufficient_RejectsNonPositive(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewWalletRepository(db)

	err := repo.DebitIfSufficient(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, common.ErrAmountMustBePositive)

	err = repo.DebitIfSufficient(context.Background(), uuid.New(), -5)
	assert.ErrorIs(t, err, common.ErrAmountMustBePositive)
}

func TestCredit_RejectsNonPositive(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewWalletRepository(db)

	err := repo.Credit(context.Background(), uuid.New(), -100)
	assert.ErrorIs(t, err, common.ErrAmountMustBePositive)
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWalletRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "wallets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance"}))

	_, err := repo.Get(context.Background(), userID)
	assert.ErrorIs(t, err, common.ErrWalletNotFound)
}
