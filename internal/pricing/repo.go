package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
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

func (r *repository) FindTiersByProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingTier, error) {
	var tiers []models.PricingTier
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("min_quantity ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
