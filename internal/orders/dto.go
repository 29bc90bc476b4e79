package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// CreateOrderInput carries everything needed to admit a new order.
type CreateOrderInput struct {
	VendorAccountID   uuid.UUID
	ActorUserID       uuid.UUID
	ActorRole         string
	ProductID         uuid.UUID
	Quantity          int
	OrderType         enums.OrderType
	BulkOrderWindowID *uuid.UUID
	DeliveryAddress   *string
	Notes             *string
}

// PayPendingInput settles a pay-later order against the vendor's balance.
type PayPendingInput struct {
	OrderID         uuid.UUID
	VendorAccountID uuid.UUID
	ActorUserID     uuid.UUID
	ActorRole       string
}

// OrderCreatedEvent is emitted when an order is admitted.
type OrderCreatedEvent struct {
	OrderID           uuid.UUID           `json:"order_id"`
	VendorAccountID   uuid.UUID           `json:"vendor_account_id"`
	SellerAccountID   uuid.UUID           `json:"seller_account_id"`
	ProductID         uuid.UUID           `json:"product_id"`
	Quantity          int                 `json:"quantity"`
	PricePerUnit      decimal.Decimal     `json:"price_per_unit"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	OrderType         enums.OrderType     `json:"order_type"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	BulkOrderWindowID *uuid.UUID          `json:"bulk_order_window_id,omitempty"`
	DueDate           *time.Time          `json:"due_date,omitempty"`
}

// OrderPaidEvent is emitted when a pending order settles.
type OrderPaidEvent struct {
	OrderID         uuid.UUID       `json:"order_id"`
	VendorAccountID uuid.UUID       `json:"vendor_account_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
}
