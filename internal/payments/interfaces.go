package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

// Repository defines persistence operations for gateway payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*PaymentList, error)
}

// PaymentList is one page of payments plus the cursor for the next one.
type PaymentList struct {
	Payments   []models.Payment
	NextCursor string
}
