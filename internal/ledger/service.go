package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

// Cause ties a balance mutation to the business event that produced it.
type Cause struct {
	Type enums.LedgerCauseType
	ID   uuid.UUID
}

// Service owns every balance mutation. Debit and Credit run inside the
// caller's transaction so the ledger entry commits atomically with the
// triggering change.
type Service interface {
	Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause Cause) (*models.LedgerEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause Cause) (*models.LedgerEntry, error)
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*EntryList, error)
}

type service struct {
	repo Repository
}

// NewService builds a ledger service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause Cause) (*models.LedgerEntry, error) {
	return s.apply(ctx, tx, accountID, amount, enums.LedgerDirectionDebit, cause)
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause Cause) (*models.LedgerEntry, error) {
	return s.apply(ctx, tx, accountID, amount, enums.LedgerDirectionCredit, cause)
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, direction enums.LedgerDirection, cause Cause) (*models.LedgerEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger mutation requires a transaction")
	}
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !cause.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger cause type required")
	}

	repo := s.repo.WithTx(tx)

	account, err := repo.LockAccount(ctx, accountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock account")
	}

	var balanceAfter decimal.Decimal
	switch direction {
	case enums.LedgerDirectionDebit:
		if account.Balance.LessThan(amount) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient balance").
				WithDetails(map[string]any{
					"balance":  account.Balance.StringFixed(2),
					"required": amount.StringFixed(2),
				})
		}
		balanceAfter = account.Balance.Sub(amount)
	case enums.LedgerDirectionCredit:
		balanceAfter = account.Balance.Add(amount)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ledger direction")
	}

	if err := repo.UpdateBalance(ctx, accountID, balanceAfter); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
	}

	entry := &models.LedgerEntry{
		ID:           uuid.New(),
		AccountID:    accountID,
		Direction:    direction,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CauseType:    cause.Type,
		CauseID:      cause.ID,
	}
	if err := repo.InsertEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ledger entry")
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.repo.FindAccount(ctx, accountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account.Balance, nil
}

func (s *service) Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	list, err := s.repo.ListEntries(ctx, accountID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return list, nil
}
