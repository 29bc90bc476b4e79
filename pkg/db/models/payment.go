package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// Payment is a gateway top-up that credits the account balance once verified.
type Payment struct {
	ID               uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID        uuid.UUID                  `gorm:"column:account_id;type:uuid;not null;index"`
	Amount           decimal.Decimal            `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency         enums.Currency             `gorm:"column:currency;type:text;not null;default:'INR'"`
	GatewayOrderID   string                     `gorm:"column:gateway_order_id;not null;uniqueIndex"`
	GatewayPaymentID *string                    `gorm:"column:gateway_payment_id"`
	GatewaySignature *string                    `gorm:"column:gateway_signature"`
	Status           enums.GatewayPaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Description      *string                    `gorm:"column:description"`
	CreatedAt        time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
