package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func price(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleTiers(productID uuid.UUID) []models.PricingTier {
	return []models.PricingTier{
		{ID: uuid.New(), ProductID: productID, MinQuantity: 10, MaxQuantity: intPtr(49), PricePerUnit: price("5.00")},
		{ID: uuid.New(), ProductID: productID, MinQuantity: 50, MaxQuantity: intPtr(99), PricePerUnit: price("4.50")},
		{ID: uuid.New(), ProductID: productID, MinQuantity: 100, MaxQuantity: nil, PricePerUnit: price("4.00")},
	}
}

func TestResolveUnitPricePicksContainingBracket(t *testing.T) {
	tiers := sampleTiers(uuid.New())

	got, err := ResolveUnitPrice(tiers, 10)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("5.00")))

	got, err = ResolveUnitPrice(tiers, 75)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("4.50")))

	got, err = ResolveUnitPrice(tiers, 100)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("4.00")))

	got, err = ResolveUnitPrice(tiers, 100000)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("4.00")))
}

func TestResolveUnitPriceBelowAllBracketsUsesLowestTier(t *testing.T) {
	tiers := sampleTiers(uuid.New())

	got, err := ResolveUnitPrice(tiers, 3)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("5.00")))
}

func TestResolveUnitPriceGapFallsBackToLowestTier(t *testing.T) {
	productID := uuid.New()
	tiers := []models.PricingTier{
		{ID: uuid.New(), ProductID: productID, MinQuantity: 10, MaxQuantity: intPtr(20), PricePerUnit: price("5.00")},
		{ID: uuid.New(), ProductID: productID, MinQuantity: 50, MaxQuantity: nil, PricePerUnit: price("4.00")},
	}

	got, err := ResolveUnitPrice(tiers, 30)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("5.00")))
}

func TestResolveUnitPriceUnsortedInput(t *testing.T) {
	productID := uuid.New()
	tiers := []models.PricingTier{
		{ID: uuid.New(), ProductID: productID, MinQuantity: 100, MaxQuantity: nil, PricePerUnit: price("4.00")},
		{ID: uuid.New(), ProductID: productID, MinQuantity: 10, MaxQuantity: intPtr(99), PricePerUnit: price("5.00")},
	}

	got, err := ResolveUnitPrice(tiers, 40)
	require.NoError(t, err)
	assert.True(t, got.Equal(price("5.00")))
}

func TestResolveUnitPriceNoTiers(t *testing.T) {
	_, err := ResolveUnitPrice(nil, 10)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNoPricingAvailable))
}

type stubTierRepo struct {
	tiers []models.PricingTier
	err   error
}

func (s *stubTierRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTierRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTierRepo) FindTiersByProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingTier, error) {
	return s.tiers, s.err
}

func TestQuoteForQuantityComputesTotal(t *testing.T) {
	productID := uuid.New()
	svc, err := NewService(&stubTierRepo{tiers: sampleTiers(productID)})
	require.NoError(t, err)

	quote, err := svc.QuoteForQuantity(context.Background(), productID, 60)
	require.NoError(t, err)
	assert.Equal(t, 60, quote.Quantity)
	assert.True(t, quote.PricePerUnit.Equal(price("4.50")))
	assert.True(t, quote.TotalAmount.Equal(price("270.00")))
}

func TestQuoteForQuantityRejectsNonPositiveQuantity(t *testing.T) {
	svc, err := NewService(&stubTierRepo{})
	require.NoError(t, err)

	_, err = svc.QuoteForQuantity(context.Background(), uuid.New(), 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidQuantity))
}
