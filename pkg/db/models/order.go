package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// Order is a vendor's purchase of a single product. Bulk orders keep their
// provisional price until the window settles and reprices them.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorAccountID   uuid.UUID           `gorm:"column:vendor_account_id;type:uuid;not null;index"`
	SellerAccountID   uuid.UUID           `gorm:"column:seller_account_id;type:uuid;not null;index"`
	ProductID         uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity          int                 `gorm:"column:quantity;not null"`
	PricePerUnit      decimal.Decimal     `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	OrderType         enums.OrderType     `gorm:"column:order_type;type:text;not null"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	OrderStatus       enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'confirmed'"`
	DueDate           *time.Time          `gorm:"column:due_date"`
	BulkOrderWindowID *uuid.UUID          `gorm:"column:bulk_order_window_id;type:uuid;index"`
	DeliveryAddress   *string             `gorm:"column:delivery_address"`
	Notes             *string             `gorm:"column:notes"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
