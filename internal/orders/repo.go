package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
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

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindWindow loads the window row under FOR UPDATE so a concurrent sweep
// cannot claim it between the status check and the order commit. sqlite has a
// single writer and rejects the clause, so the lock only applies on postgres.
func (r *repository) FindWindow(ctx context.Context, windowID uuid.UUID) (*models.BulkOrderWindow, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var window models.BulkOrderWindow
	err := query.
		Where("id = ?", windowID).
		First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *repository) IncrementWindowParticipants(ctx context.Context, windowID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.BulkOrderWindow{}).
		Where("id = ?", windowID).
		Update("total_participants", gorm.Expr("total_participants + 1")).Error
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) ListVendorOrders(ctx context.Context, vendorAccountID uuid.UUID, params pagination.Params, filters Filters) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where("vendor_account_id = ?", vendorAccountID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1)
	if filters.OrderType != nil {
		query = query.Where("order_type = ?", *filters.OrderType)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.OrderStatus != nil {
		query = query.Where("order_status = ?", *filters.OrderStatus)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &OrderList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Orders = rows
	return list, nil
}

func (r *repository) ListPendingPayments(ctx context.Context, vendorAccountID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("vendor_account_id = ?", vendorAccountID).
		Where("order_type = ?", enums.OrderTypeBuyNowPayLater).
		Where("payment_status = ?", enums.PaymentStatusPending).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
