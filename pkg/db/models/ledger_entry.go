package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// LedgerEntry is the append-only audit record of a balance mutation. Exactly
// one entry exists per debit or credit, with the balance observed afterwards.
type LedgerEntry struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID             `gorm:"column:account_id;type:uuid;not null;index"`
	Direction    enums.LedgerDirection `gorm:"column:direction;type:text;not null"`
	Amount       decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	BalanceAfter decimal.Decimal       `gorm:"column:balance_after;type:numeric(12,2);not null"`
	CauseType    enums.LedgerCauseType `gorm:"column:cause_type;type:text;not null"`
	CauseID      uuid.UUID             `gorm:"column:cause_id;type:uuid;not null"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
