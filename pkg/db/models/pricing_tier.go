package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingTier captures one quantity bracket of a product's tiered pricing.
// MaxQuantity is nil for the open-ended top bracket.
type PricingTier struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	MinQuantity  int             `gorm:"column:min_quantity;not null"`
	MaxQuantity  *int            `gorm:"column:max_quantity"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
