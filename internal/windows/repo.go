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

type repository struct {
	db *gorm.DB
}

// NewRepository builds a windows repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", accountID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) Create(ctx context.Context, window *models.BulkOrderWindow) (*models.BulkOrderWindow, error) {
	if err := r.db.WithContext(ctx).Create(window).Error; err != nil {
		return nil, err
	}
	return window, nil
}

func (r *repository) FindByID(ctx context.Context, windowID uuid.UUID) (*models.BulkOrderWindow, error) {
	var window models.BulkOrderWindow
	err := r.db.WithContext(ctx).
		Where("id = ?", windowID).
		First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, status *enums.WindowStatus) (*WindowList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.BulkOrderWindow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &WindowList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Windows = rows
	return list, nil
}

func (r *repository) ListExpiredOpen(ctx context.Context, now time.Time) ([]models.BulkOrderWindow, error) {
	var rows []models.BulkOrderWindow
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.WindowStatusOpen).
		Where("window_end_time < ?", now).
		Order("window_end_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClaimForProcessing flips an open window to processing. The conditional
// update means exactly one sweeper wins when several race on the same window.
func (r *repository) ClaimForProcessing(ctx context.Context, windowID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BulkOrderWindow{}).
		Where("id = ? AND status = ?", windowID, enums.WindowStatusOpen).
		Update("status", enums.WindowStatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) FindSettleableOrders(ctx context.Context, windowID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("bulk_order_window_id = ?", windowID).
		Where("order_type = ?", enums.OrderTypeBulkOrder).
		Where("payment_status = ?", enums.PaymentStatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateWindow(ctx context.Context, windowID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.BulkOrderWindow{}).
		Where("id = ?", windowID).
		Updates(updates).Error
}
