package windows

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/internal/pricing"
	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

type stubPricing struct {
	quoteFn func(ctx context.Context, productID uuid.UUID, quantity int) (*pricing.Quote, error)
}

func (s *stubPricing) QuoteForQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*pricing.Quote, error) {
	return s.quoteFn(ctx, productID, quantity)
}

func (s *stubPricing) QuoteWithTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) (*pricing.Quote, error) {
	return s.quoteFn(ctx, productID, quantity)
}

type debitCall struct {
	accountID uuid.UUID
	amount    decimal.Decimal
	cause     ledger.Cause
}

type stubLedger struct {
	debits  []debitCall
	debitFn func(accountID uuid.UUID, amount decimal.Decimal) error
}

func (s *stubLedger) Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause ledger.Cause) (*models.LedgerEntry, error) {
	s.debits = append(s.debits, debitCall{accountID: accountID, amount: amount, cause: cause})
	if s.debitFn != nil {
		if err := s.debitFn(accountID, amount); err != nil {
			return nil, err
		}
	}
	return &models.LedgerEntry{ID: uuid.New(), AccountID: accountID, Amount: amount}, nil
}

func (s *stubLedger) Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause ledger.Cause) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{ID: uuid.New(), AccountID: accountID, Amount: amount}, nil
}

func (s *stubLedger) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubLedger) Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*ledger.EntryList, error) {
	return &ledger.EntryList{}, nil
}

type settlementFixture struct {
	engine  *SettlementEngine
	repo    *stubRepo
	ledger  *stubLedger
	outbox  *stubOutbox
	windows []models.BulkOrderWindow
	orders  map[uuid.UUID][]models.Order

	orderUpdates  map[uuid.UUID]map[string]any
	windowUpdates map[uuid.UUID]map[string]any
}

func newSettlementFixture(t *testing.T, unitPrice decimal.Decimal) *settlementFixture {
	t.Helper()

	f := &settlementFixture{
		ledger:        &stubLedger{},
		outbox:        &stubOutbox{},
		orders:        map[uuid.UUID][]models.Order{},
		orderUpdates:  map[uuid.UUID]map[string]any{},
		windowUpdates: map[uuid.UUID]map[string]any{},
	}
	f.repo = &stubRepo{
		listExpiredOpenFn: func(ctx context.Context, now time.Time) ([]models.BulkOrderWindow, error) {
			return f.windows, nil
		},
		claimForProcessingFn: func(ctx context.Context, windowID uuid.UUID) (bool, error) {
			return true, nil
		},
		findSettleableOrdersFn: func(ctx context.Context, windowID uuid.UUID) ([]models.Order, error) {
			return f.orders[windowID], nil
		},
		updateOrderFn: func(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
			f.orderUpdates[orderID] = updates
			return nil
		},
		updateWindowFn: func(ctx context.Context, windowID uuid.UUID, updates map[string]any) error {
			f.windowUpdates[windowID] = updates
			return nil
		},
	}
	pricingStub := &stubPricing{
		quoteFn: func(ctx context.Context, productID uuid.UUID, quantity int) (*pricing.Quote, error) {
			return &pricing.Quote{
				ProductID:    productID,
				Quantity:     quantity,
				PricePerUnit: unitPrice,
				TotalAmount:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
			}, nil
		},
	}

	engine, err := NewSettlementEngine(f.repo, stubTxRunner{}, pricingStub, f.ledger, f.outbox, nil, nil)
	require.NoError(t, err)
	f.engine = engine
	return f
}

func expiredWindow() models.BulkOrderWindow {
	return models.BulkOrderWindow{
		ID:            uuid.New(),
		Status:        enums.WindowStatusOpen,
		WindowEndTime: time.Now().Add(-time.Hour),
	}
}

func pendingBulkOrder(windowID, productID uuid.UUID, quantity int) models.Order {
	id := windowID
	return models.Order{
		ID:                uuid.New(),
		VendorAccountID:   uuid.New(),
		ProductID:         productID,
		Quantity:          quantity,
		OrderType:         enums.OrderTypeBulkOrder,
		PaymentStatus:     enums.PaymentStatusPending,
		BulkOrderWindowID: &id,
	}
}

func TestSweepExpiredSettlesWindow(t *testing.T) {
	unit := decimal.NewFromInt(18)
	f := newSettlementFixture(t, unit)

	window := expiredWindow()
	productID := uuid.New()
	first := pendingBulkOrder(window.ID, productID, 40)
	second := pendingBulkOrder(window.ID, productID, 60)
	f.windows = []models.BulkOrderWindow{window}
	f.orders[window.ID] = []models.Order{first, second}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	// Both buyers pay the aggregate-volume price.
	require.Contains(t, f.orderUpdates, first.ID)
	assert.True(t, unit.Equal(f.orderUpdates[first.ID]["price_per_unit"].(decimal.Decimal)))
	assert.Equal(t, enums.PaymentStatusPaid, f.orderUpdates[first.ID]["payment_status"])
	assert.True(t, unit.Mul(decimal.NewFromInt(60)).Equal(f.orderUpdates[second.ID]["total_amount"].(decimal.Decimal)))

	require.Len(t, f.ledger.debits, 2)
	assert.Equal(t, enums.LedgerCauseWindowSettlement, f.ledger.debits[0].cause.Type)

	require.Contains(t, f.windowUpdates, window.ID)
	assert.Equal(t, enums.WindowStatusFinalized, f.windowUpdates[window.ID]["status"])
	expectedTotal := unit.Mul(decimal.NewFromInt(100))
	assert.True(t, expectedTotal.Equal(f.windowUpdates[window.ID]["total_amount"].(decimal.Decimal)))

	// Two order events plus the window finalized event.
	require.Len(t, f.outbox.events, 3)
	assert.Equal(t, enums.EventOrderPaid, f.outbox.events[0].EventType)
	assert.Equal(t, enums.EventWindowFinalized, f.outbox.events[2].EventType)
}

func TestSweepExpiredShortBalanceFailsOrderOnly(t *testing.T) {
	unit := decimal.NewFromInt(20)
	f := newSettlementFixture(t, unit)

	window := expiredWindow()
	productID := uuid.New()
	broke := pendingBulkOrder(window.ID, productID, 50)
	funded := pendingBulkOrder(window.ID, productID, 30)
	f.windows = []models.BulkOrderWindow{window}
	f.orders[window.ID] = []models.Order{broke, funded}

	f.ledger.debitFn = func(accountID uuid.UUID, amount decimal.Decimal) error {
		if accountID == broke.VendorAccountID {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient balance")
		}
		return nil
	}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	assert.Equal(t, enums.PaymentStatusFailed, f.orderUpdates[broke.ID]["payment_status"])
	assert.Equal(t, enums.PaymentStatusPaid, f.orderUpdates[funded.ID]["payment_status"])

	// Window total only counts collected money.
	expectedTotal := unit.Mul(decimal.NewFromInt(30))
	assert.True(t, expectedTotal.Equal(f.windowUpdates[window.ID]["total_amount"].(decimal.Decimal)))
	assert.Equal(t, enums.WindowStatusFinalized, f.windowUpdates[window.ID]["status"])

	var eventTypes []enums.OutboxEventType
	for _, event := range f.outbox.events {
		eventTypes = append(eventTypes, event.EventType)
	}
	assert.Contains(t, eventTypes, enums.EventPaymentFailed)
	assert.Contains(t, eventTypes, enums.EventOrderPaid)
	assert.Contains(t, eventTypes, enums.EventWindowFinalized)
}

func TestSweepExpiredCountsDistinctBuyers(t *testing.T) {
	unit := decimal.NewFromInt(12)
	f := newSettlementFixture(t, unit)

	window := expiredWindow()
	productID := uuid.New()
	repeat := pendingBulkOrder(window.ID, productID, 10)
	again := pendingBulkOrder(window.ID, productID, 15)
	again.VendorAccountID = repeat.VendorAccountID
	other := pendingBulkOrder(window.ID, productID, 20)
	f.windows = []models.BulkOrderWindow{window}
	f.orders[window.ID] = []models.Order{repeat, again, other}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	// Two orders from the same buyer count once.
	require.Contains(t, f.windowUpdates, window.ID)
	assert.Equal(t, 2, f.windowUpdates[window.ID]["total_participants"])
}

func TestSweepExpiredSkipsClaimedWindow(t *testing.T) {
	f := newSettlementFixture(t, decimal.NewFromInt(10))
	f.windows = []models.BulkOrderWindow{expiredWindow()}
	f.repo.claimForProcessingFn = func(ctx context.Context, windowID uuid.UUID) (bool, error) {
		return false, nil
	}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Empty(t, f.outbox.events)
	assert.Empty(t, f.orderUpdates)
}

func TestSweepExpiredSecondSweepIsNoOp(t *testing.T) {
	unit := decimal.NewFromInt(16)
	f := newSettlementFixture(t, unit)

	window := expiredWindow()
	productID := uuid.New()
	f.orders[window.ID] = []models.Order{
		pendingBulkOrder(window.ID, productID, 30),
		pendingBulkOrder(window.ID, productID, 45),
	}

	// Track the status transitions the engine drives so the second sweep
	// sees the finalized window the way the real query would.
	status := enums.WindowStatusOpen
	f.repo.listExpiredOpenFn = func(ctx context.Context, now time.Time) ([]models.BulkOrderWindow, error) {
		if status != enums.WindowStatusOpen {
			return nil, nil
		}
		return []models.BulkOrderWindow{window}, nil
	}
	f.repo.claimForProcessingFn = func(ctx context.Context, windowID uuid.UUID) (bool, error) {
		if status != enums.WindowStatusOpen {
			return false, nil
		}
		status = enums.WindowStatusProcessing
		return true, nil
	}
	f.repo.updateWindowFn = func(ctx context.Context, windowID uuid.UUID, updates map[string]any) error {
		f.windowUpdates[windowID] = updates
		if next, ok := updates["status"].(enums.WindowStatus); ok {
			status = next
		}
		return nil
	}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, enums.WindowStatusFinalized, status)
	debitsAfterFirst := len(f.ledger.debits)
	eventsAfterFirst := len(f.outbox.events)

	processed, err = f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	// No buyer is charged twice and no new events are emitted.
	assert.Len(t, f.ledger.debits, debitsAfterFirst)
	assert.Len(t, f.outbox.events, eventsAfterFirst)
}

func TestSweepExpiredEmptyWindowFinalizesWithZeroTotal(t *testing.T) {
	f := newSettlementFixture(t, decimal.NewFromInt(10))
	window := expiredWindow()
	f.windows = []models.BulkOrderWindow{window}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	assert.Equal(t, enums.WindowStatusFinalized, f.windowUpdates[window.ID]["status"])
	assert.True(t, decimal.Zero.Equal(f.windowUpdates[window.ID]["total_amount"].(decimal.Decimal)))
	assert.Equal(t, 0, f.windowUpdates[window.ID]["total_participants"])

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, enums.EventWindowFinalized, f.outbox.events[0].EventType)
}

func TestSweepExpiredRollsBackWindowOnUnexpectedError(t *testing.T) {
	f := newSettlementFixture(t, decimal.NewFromInt(10))

	failing := expiredWindow()
	healthy := expiredWindow()
	productID := uuid.New()
	f.windows = []models.BulkOrderWindow{failing, healthy}
	f.orders[failing.ID] = []models.Order{pendingBulkOrder(failing.ID, productID, 25)}
	f.orders[healthy.ID] = []models.Order{pendingBulkOrder(healthy.ID, productID, 25)}

	f.ledger.debitFn = func(accountID uuid.UUID, amount decimal.Decimal) error {
		for _, order := range f.orders[failing.ID] {
			if order.VendorAccountID == accountID {
				return pkgerrors.New(pkgerrors.CodeDependency, "ledger write failed")
			}
		}
		return nil
	}

	processed, err := f.engine.SweepExpired(context.Background())
	require.NoError(t, err)

	// The broken window is skipped, the rest of the sweep continues.
	assert.Equal(t, 1, processed)
	assert.Contains(t, f.windowUpdates, healthy.ID)
	assert.NotContains(t, f.windowUpdates, failing.ID)
}
