package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

// Repository defines persistence operations for accounts and ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	UpdateBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
	InsertEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*EntryList, error)
}

// EntryList is one page of ledger entries plus the cursor for the next one.
type EntryList struct {
	Entries    []models.LedgerEntry
	NextCursor string
}
