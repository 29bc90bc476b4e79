package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// Account holds a marketplace participant and its prepaid balance. The balance
// column is only ever mutated through the ledger, never written directly.
type Account struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Role        enums.AccountRole `gorm:"column:role;type:text;not null"`
	DisplayName string            `gorm:"column:display_name;not null"`
	Balance     decimal.Decimal   `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	Rating      float64           `gorm:"column:rating;not null;default:0"`
	IsActive    bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
