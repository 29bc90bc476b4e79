package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	accounts := `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  display_name TEXT NOT NULL,
  balance NUMERIC NOT NULL DEFAULT 0,
  rating REAL NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  direction TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  balance_after NUMERIC NOT NULL,
  cause_type TEXT NOT NULL,
  cause_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(accounts).Error)
	require.NoError(t, db.Exec(entries).Error)
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, balance string) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Role:        enums.AccountRoleVendor,
		DisplayName: "Chaat Corner",
		Balance:     decimal.RequireFromString(balance),
		Rating:      4.8,
		IsActive:    true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func TestDebitReducesBalanceAndAppendsEntry(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	account := seedAccount(t, db, "1000.00")
	orderID := uuid.New()

	tx := db.Begin()
	entry, err := svc.Debit(context.Background(), tx, account.ID, decimal.RequireFromString("250.50"), Cause{
		Type: enums.LedgerCauseOrderSettlement,
		ID:   orderID,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit().Error)

	assert.Equal(t, enums.LedgerDirectionDebit, entry.Direction)
	assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("749.50")))
	assert.Equal(t, enums.LedgerCauseOrderSettlement, entry.CauseType)
	assert.Equal(t, orderID, entry.CauseID)

	var reloaded models.Account
	require.NoError(t, db.Where("id = ?", account.ID).First(&reloaded).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.RequireFromString("749.50")))

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDebitInsufficientBalanceRollsBack(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	account := seedAccount(t, db, "100.00")

	tx := db.Begin()
	_, err = svc.Debit(context.Background(), tx, account.ID, decimal.RequireFromString("100.01"), Cause{
		Type: enums.LedgerCauseOrderSettlement,
		ID:   uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientBalance))
	require.NoError(t, tx.Rollback().Error)

	var reloaded models.Account
	require.NoError(t, db.Where("id = ?", account.ID).First(&reloaded).Error)
	assert.True(t, reloaded.Balance.Equal(decimal.RequireFromString("100.00")))
}

func TestDebitExactBalanceSucceeds(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	account := seedAccount(t, db, "75.25")

	tx := db.Begin()
	entry, err := svc.Debit(context.Background(), tx, account.ID, decimal.RequireFromString("75.25"), Cause{
		Type: enums.LedgerCauseWindowSettlement,
		ID:   uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit().Error)
	assert.True(t, entry.BalanceAfter.IsZero())
}

func TestCreditIncreasesBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	account := seedAccount(t, db, "10.00")
	paymentID := uuid.New()

	tx := db.Begin()
	entry, err := svc.Credit(context.Background(), tx, account.ID, decimal.RequireFromString("500.00"), Cause{
		Type: enums.LedgerCausePaymentCredit,
		ID:   paymentID,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit().Error)

	assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("510.00")))
	assert.Equal(t, enums.LedgerDirectionCredit, entry.Direction)
}

func TestApplyRejectsNonPositiveAmounts(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	account := seedAccount(t, db, "10.00")

	tx := db.Begin()
	defer tx.Rollback()

	_, err = svc.Debit(context.Background(), tx, account.ID, decimal.Zero, Cause{
		Type: enums.LedgerCauseOrderSettlement,
		ID:   uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Credit(context.Background(), tx, account.ID, decimal.RequireFromString("-5"), Cause{
		Type: enums.LedgerCausePaymentCredit,
		ID:   uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestDebitUnknownAccount(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	tx := db.Begin()
	defer tx.Rollback()

	_, err = svc.Debit(context.Background(), tx, uuid.New(), decimal.RequireFromString("1.00"), Cause{
		Type: enums.LedgerCauseOrderSettlement,
		ID:   uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestEntriesReturnsNewestFirstWithCursor(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	account := seedAccount(t, db, "1000.00")
	for i := 0; i < 3; i++ {
		tx := db.Begin()
		_, err := svc.Debit(context.Background(), tx, account.ID, decimal.RequireFromString("10.00"), Cause{
			Type: enums.LedgerCauseOrderSettlement,
			ID:   uuid.New(),
		})
		require.NoError(t, err)
		require.NoError(t, tx.Commit().Error)
	}

	page, err := svc.Entries(context.Background(), account.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.NotEmpty(t, page.NextCursor)

	rest, err := svc.Entries(context.Background(), account.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Entries, 1)
	assert.Empty(t, rest.NextCursor)
}
