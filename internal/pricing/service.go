package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
)

// Quote is the resolved price for a product at a given quantity.
type Quote struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Service resolves tiered unit prices.
type Service interface {
	QuoteForQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*Quote, error)
	QuoteWithTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) (*Quote, error)
}

type service struct {
	repo Repository
}

// NewService builds a pricing service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) QuoteForQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*Quote, error) {
	return s.quote(ctx, s.repo, productID, quantity)
}

func (s *service) QuoteWithTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) (*Quote, error) {
	return s.quote(ctx, s.repo.WithTx(tx), productID, quantity)
}

func (s *service) quote(ctx context.Context, repo Repository, productID uuid.UUID, quantity int) (*Quote, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	tiers, err := repo.FindTiersByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing tiers")
	}
	unit, err := ResolveUnitPrice(tiers, quantity)
	if err != nil {
		return nil, err
	}
	return &Quote{
		ProductID:    productID,
		Quantity:     quantity,
		PricePerUnit: unit,
		TotalAmount:  unit.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// ResolveUnitPrice walks the tiers in ascending min_quantity order and returns
// the price of the first bracket containing the quantity. A quantity below
// every bracket falls back to the lowest bracket's price.
func ResolveUnitPrice(tiers []models.PricingTier, quantity int) (decimal.Decimal, error) {
	if len(tiers) == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNoPricingAvailable, "no pricing tiers configured for product")
	}

	sorted := make([]models.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity < sorted[j].MinQuantity
	})

	for _, tier := range sorted {
		if quantity < tier.MinQuantity {
			continue
		}
		if tier.MaxQuantity != nil && quantity > *tier.MaxQuantity {
			continue
		}
		return tier.PricePerUnit, nil
	}

	return sorted[0].PricePerUnit, nil
}
