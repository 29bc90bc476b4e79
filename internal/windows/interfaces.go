package windows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

// Repository defines persistence operations for bulk order windows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, window *models.BulkOrderWindow) (*models.BulkOrderWindow, error)
	FindByID(ctx context.Context, windowID uuid.UUID) (*models.BulkOrderWindow, error)
	List(ctx context.Context, params pagination.Params, status *enums.WindowStatus) (*WindowList, error)
	ListExpiredOpen(ctx context.Context, now time.Time) ([]models.BulkOrderWindow, error)
	ClaimForProcessing(ctx context.Context, windowID uuid.UUID) (bool, error)
	FindSettleableOrders(ctx context.Context, windowID uuid.UUID) ([]models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateWindow(ctx context.Context, windowID uuid.UUID, updates map[string]any) error
}

// WindowList is one page of windows plus the cursor for the next one.
type WindowList struct {
	Windows    []models.BulkOrderWindow
	NextCursor string
}
