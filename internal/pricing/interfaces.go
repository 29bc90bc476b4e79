package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
)

// Repository defines persistence operations for products and pricing tiers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindTiersByProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingTier, error)
}
