package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a supplier listing sold in bulk quantities.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierAccountID uuid.UUID       `gorm:"column:supplier_account_id;type:uuid;not null"`
	Name              string          `gorm:"column:name;not null"`
	Description       *string         `gorm:"column:description"`
	Unit              string          `gorm:"column:unit;not null;default:'kg'"`
	BasePrice         decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	MinOrderQuantity  int             `gorm:"column:min_order_quantity;not null;default:1"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	Tiers             []PricingTier   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
