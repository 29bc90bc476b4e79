package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/internal/pricing"
	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/outbox"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

// Pay-later eligibility: rating threshold and settlement due window.
const (
	payLaterMinRating = 4.5
	payLaterDueDays   = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines order admission and settlement operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	PayPending(ctx context.Context, input PayPendingInput) (*models.Order, error)
	Get(ctx context.Context, orderID, vendorAccountID uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, vendorAccountID uuid.UUID, params pagination.Params, filters Filters) (*OrderList, error)
	ListPendingPayments(ctx context.Context, vendorAccountID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	pricing pricing.Service
	ledger  ledger.Service
	outbox  outboxPublisher
	now     func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, pricingSvc pricing.Service, ledgerSvc ledger.Service, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	return &service{
		repo:    repo,
		tx:      tx,
		pricing: pricingSvc,
		ledger:  ledgerSvc,
		outbox:  outboxSvc,
		now:     time.Now,
	}, nil
}

// Create admits an order. Every check and write happens in one transaction so
// a rejected order leaves no trace.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.VendorAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	if !input.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order type")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		account, err := repo.FindAccount(ctx, input.VendorAccountID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeForbidden, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
		}
		if account.Role != enums.AccountRoleVendor || !account.IsActive {
			return pkgerrors.New(pkgerrors.CodeForbidden, "active vendor account required")
		}

		product, err := repo.FindProduct(ctx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		if input.Quantity < product.MinOrderQuantity {
			return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity below the product minimum").
				WithDetails(map[string]any{"min_order_quantity": product.MinOrderQuantity})
		}

		quote, err := s.pricing.QuoteWithTx(ctx, tx, product.ID, input.Quantity)
		if err != nil {
			return err
		}

		orderType := input.OrderType
		now := s.now().UTC()

		order := &models.Order{
			ID:              uuid.New(),
			VendorAccountID: account.ID,
			SellerAccountID: product.SupplierAccountID,
			ProductID:       product.ID,
			Quantity:        input.Quantity,
			PricePerUnit:    quote.PricePerUnit,
			TotalAmount:     quote.TotalAmount,
			PaymentStatus:   enums.PaymentStatusPending,
			OrderStatus:     enums.OrderStatusConfirmed,
			DeliveryAddress: input.DeliveryAddress,
			Notes:           input.Notes,
		}

		// An order aimed at a window is always a bulk order, whatever the
		// client asked for.
		if input.BulkOrderWindowID != nil {
			orderType = enums.OrderTypeBulkOrder
		}

		switch orderType {
		case enums.OrderTypeBuyNowPayLater:
			if account.Rating < payLaterMinRating {
				return pkgerrors.New(pkgerrors.CodeNotEligible, "account rating too low for pay-later orders").
					WithDetails(map[string]any{
						"rating":          account.Rating,
						"required_rating": payLaterMinRating,
					})
			}
			due := now.AddDate(0, 0, payLaterDueDays)
			order.DueDate = &due

		case enums.OrderTypeBulkOrder:
			if input.BulkOrderWindowID == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "bulk orders require a window id")
			}
			window, err := repo.FindWindow(ctx, *input.BulkOrderWindowID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "bulk order window not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load window")
			}
			if window.Status != enums.WindowStatusOpen {
				return pkgerrors.New(pkgerrors.CodeWindowClosed, "bulk order window is no longer open")
			}
			if now.After(window.WindowEndTime) {
				return pkgerrors.New(pkgerrors.CodeWindowExpired, "bulk order window has expired")
			}
			order.BulkOrderWindowID = &window.ID
			if err := repo.IncrementWindowParticipants(ctx, window.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update window participants")
			}
		}

		order.OrderType = orderType

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		// Buy-now settles immediately; failure here aborts the admission.
		if orderType == enums.OrderTypeBuyNow {
			if _, err := s.ledger.Debit(ctx, tx, account.ID, order.TotalAmount, ledger.Cause{
				Type: enums.LedgerCauseOrderSettlement,
				ID:   order.ID,
			}); err != nil {
				return err
			}
			order.PaymentStatus = enums.PaymentStatusPaid
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
				"payment_status": enums.PaymentStatusPaid,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, account.ID, input.ActorRole),
			Data: OrderCreatedEvent{
				OrderID:           order.ID,
				VendorAccountID:   account.ID,
				SellerAccountID:   order.SellerAccountID,
				ProductID:         product.ID,
				Quantity:          order.Quantity,
				PricePerUnit:      order.PricePerUnit,
				TotalAmount:       order.TotalAmount,
				OrderType:         order.OrderType,
				PaymentStatus:     order.PaymentStatus,
				BulkOrderWindowID: order.BulkOrderWindowID,
				DueDate:           order.DueDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// PayPending settles a pay-later order from the vendor's balance.
func (s *service) PayPending(ctx context.Context, input PayPendingInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.VendorAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}

	var settled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.VendorAccountID != input.VendorAccountID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to account")
		}
		if order.OrderType != enums.OrderTypeBuyNowPayLater {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pay-later orders can be settled manually")
		}
		if order.PaymentStatus != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
		}

		entry, err := s.ledger.Debit(ctx, tx, order.VendorAccountID, order.TotalAmount, ledger.Cause{
			Type: enums.LedgerCauseOrderSettlement,
			ID:   order.ID,
		})
		if err != nil {
			return err
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"payment_status": enums.PaymentStatusPaid,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		order.PaymentStatus = enums.PaymentStatusPaid

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, order.VendorAccountID, input.ActorRole),
			Data: OrderPaidEvent{
				OrderID:         order.ID,
				VendorAccountID: order.VendorAccountID,
				TotalAmount:     order.TotalAmount,
				BalanceAfter:    entry.BalanceAfter,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

func (s *service) Get(ctx context.Context, orderID, vendorAccountID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.VendorAccountID != vendorAccountID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to account")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, vendorAccountID uuid.UUID, params pagination.Params, filters Filters) (*OrderList, error) {
	if vendorAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	list, err := s.repo.ListVendorOrders(ctx, vendorAccountID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListPendingPayments(ctx context.Context, vendorAccountID uuid.UUID) ([]models.Order, error) {
	if vendorAccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	rows, err := s.repo.ListPendingPayments(ctx, vendorAccountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payments")
	}
	return rows, nil
}

func buildActor(userID, accountID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil && accountID == uuid.Nil {
		return nil
	}
	actor := &outbox.ActorRef{UserID: userID, Role: role}
	if accountID != uuid.Nil {
		id := accountID
		actor.AccountID = &id
	}
	return actor
}
