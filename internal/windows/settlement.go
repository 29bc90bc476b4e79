package windows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/internal/pricing"
	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
	"github.com/mandibazaar/mandi-backend/pkg/metrics"
	"github.com/mandibazaar/mandi-backend/pkg/outbox"
)

// WindowFinalizedEvent summarizes a settled window.
type WindowFinalizedEvent struct {
	WindowID     uuid.UUID       `json:"window_id"`
	TotalOrders  int             `json:"total_orders"`
	PaidOrders   int             `json:"paid_orders"`
	FailedOrders int             `json:"failed_orders"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	SettledAt    time.Time       `json:"settled_at"`
}

// OrderSettledEvent reports one buyer's outcome from a window settlement.
type OrderSettledEvent struct {
	OrderID         uuid.UUID           `json:"order_id"`
	WindowID        uuid.UUID           `json:"window_id"`
	VendorAccountID uuid.UUID           `json:"vendor_account_id"`
	PricePerUnit    decimal.Decimal     `json:"price_per_unit"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
}

// SettlementEngine sweeps expired windows: it reprices every pending bulk
// order against the window's aggregate quantity and settles each buyer from
// their balance.
type SettlementEngine struct {
	repo    Repository
	tx      txRunner
	pricing pricing.Service
	ledger  ledger.Service
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.SettlementMetrics
	now     func() time.Time
}

// NewSettlementEngine builds a settlement engine.
func NewSettlementEngine(
	repo Repository,
	tx txRunner,
	pricingSvc pricing.Service,
	ledgerSvc ledger.Service,
	outboxSvc outboxPublisher,
	logg *logger.Logger,
	settlementMetrics *metrics.SettlementMetrics,
) (*SettlementEngine, error) {
	if repo == nil {
		return nil, fmt.Errorf("windows repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if pricingSvc == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &SettlementEngine{
		repo:    repo,
		tx:      tx,
		pricing: pricingSvc,
		ledger:  ledgerSvc,
		outbox:  outboxSvc,
		logg:    logg,
		metrics: settlementMetrics,
		now:     time.Now,
	}, nil
}

// SweepExpired settles every open window whose end time has passed. Each
// window runs in its own transaction; one failing window is rolled back and
// logged without stopping the sweep. Returns how many windows were finalized.
func (e *SettlementEngine) SweepExpired(ctx context.Context) (int, error) {
	now := e.now().UTC()
	expired, err := e.repo.ListExpiredOpen(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired windows")
	}

	processed := 0
	for _, window := range expired {
		settled, err := e.settleWindow(ctx, window.ID)
		if err != nil {
			e.recordWindow("error")
			if e.logg != nil {
				logCtx := e.logg.WithField(ctx, "window_id", window.ID.String())
				e.logg.Error(logCtx, "window settlement failed", err)
			}
			continue
		}
		if settled {
			processed++
		}
	}
	return processed, nil
}

// settleWindow finalizes one window. Returns false when another sweeper
// already claimed it.
func (e *SettlementEngine) settleWindow(ctx context.Context, windowID uuid.UUID) (bool, error) {
	claimed := false
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)

		won, err := repo.ClaimForProcessing(ctx, windowID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim window")
		}
		if !won {
			return nil
		}
		claimed = true

		orders, err := repo.FindSettleableOrders(ctx, windowID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load window orders")
		}

		unitPrices, err := e.repriceByProduct(ctx, tx, orders)
		if err != nil {
			return err
		}

		paid := 0
		failed := 0
		totalAmount := decimal.Zero
		buyers := map[uuid.UUID]struct{}{}
		for i := range orders {
			order := &orders[i]
			buyers[order.VendorAccountID] = struct{}{}
			unit := unitPrices[order.ProductID]
			total := unit.Mul(decimal.NewFromInt(int64(order.Quantity)))

			status := enums.PaymentStatusPaid
			if _, err := e.ledger.Debit(ctx, tx, order.VendorAccountID, total, ledger.Cause{
				Type: enums.LedgerCauseWindowSettlement,
				ID:   order.ID,
			}); err != nil {
				if !pkgerrors.Is(err, pkgerrors.CodeInsufficientBalance) {
					return err
				}
				// A short balance fails this order only, not the window.
				status = enums.PaymentStatusFailed
				failed++
				e.recordDebitFailure()
			} else {
				paid++
				totalAmount = totalAmount.Add(total)
			}

			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
				"price_per_unit": unit,
				"total_amount":   total,
				"payment_status": status,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settled order")
			}
			e.recordOrder(string(status))

			if err := e.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     settlementEventType(status),
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: OrderSettledEvent{
					OrderID:         order.ID,
					WindowID:        windowID,
					VendorAccountID: order.VendorAccountID,
					PricePerUnit:    unit,
					TotalAmount:     total,
					PaymentStatus:   status,
				},
			}); err != nil {
				return err
			}
		}

		settledAt := e.now().UTC()
		if err := repo.UpdateWindow(ctx, windowID, map[string]any{
			"status":             enums.WindowStatusFinalized,
			"total_amount":       totalAmount,
			"total_participants": len(buyers),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize window")
		}

		return e.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWindowFinalized,
			AggregateType: enums.AggregateWindow,
			AggregateID:   windowID,
			Version:       1,
			Data: WindowFinalizedEvent{
				WindowID:     windowID,
				TotalOrders:  len(orders),
				PaidOrders:   paid,
				FailedOrders: failed,
				TotalAmount:  totalAmount,
				SettledAt:    settledAt,
			},
		})
	})
	if err != nil {
		return false, err
	}
	if claimed {
		e.recordWindow("finalized")
	}
	return claimed, nil
}

// repriceByProduct aggregates quantity per product across the window and
// resolves one unit price per product from the combined volume.
func (e *SettlementEngine) repriceByProduct(ctx context.Context, tx *gorm.DB, orders []models.Order) (map[uuid.UUID]decimal.Decimal, error) {
	quantities := map[uuid.UUID]int{}
	for _, order := range orders {
		quantities[order.ProductID] += order.Quantity
	}

	prices := make(map[uuid.UUID]decimal.Decimal, len(quantities))
	for productID, quantity := range quantities {
		quote, err := e.pricing.QuoteWithTx(ctx, tx, productID, quantity)
		if err != nil {
			return nil, err
		}
		prices[productID] = quote.PricePerUnit
	}
	return prices, nil
}

func settlementEventType(status enums.PaymentStatus) enums.OutboxEventType {
	if status == enums.PaymentStatusPaid {
		return enums.EventOrderPaid
	}
	return enums.EventPaymentFailed
}

func (e *SettlementEngine) recordWindow(outcome string) {
	if e.metrics != nil {
		e.metrics.IncWindow(outcome)
	}
}

func (e *SettlementEngine) recordOrder(outcome string) {
	if e.metrics != nil {
		e.metrics.IncOrder(outcome)
	}
}

func (e *SettlementEngine) recordDebitFailure() {
	if e.metrics != nil {
		e.metrics.IncDebitFailure()
	}
}
