package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

// Repository defines persistence operations for order admission and listing.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindWindow(ctx context.Context, windowID uuid.UUID) (*models.BulkOrderWindow, error)
	IncrementWindowParticipants(ctx context.Context, windowID uuid.UUID) error
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	ListVendorOrders(ctx context.Context, vendorAccountID uuid.UUID, params pagination.Params, filters Filters) (*OrderList, error)
	ListPendingPayments(ctx context.Context, vendorAccountID uuid.UUID) ([]models.Order, error)
}

// Filters narrows order listings.
type Filters struct {
	OrderType     *enums.OrderType
	PaymentStatus *enums.PaymentStatus
	OrderStatus   *enums.OrderStatus
}

// OrderList is one page of orders plus the cursor for the next one.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}
