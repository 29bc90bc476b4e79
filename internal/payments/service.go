package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/gateway"
	"github.com/mandibazaar/mandi-backend/pkg/outbox"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gatewayAPI interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency enums.Currency, receipt string) (*gateway.Order, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// InitiateInput starts a balance top-up through the payment gateway.
type InitiateInput struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description *string
}

// VerifyInput carries the gateway callback fields for a completed payment.
type VerifyInput struct {
	AccountID        uuid.UUID
	ActorUserID      uuid.UUID
	ActorRole        string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// PaymentCreditedEvent is emitted when a verified payment credits a balance.
type PaymentCreditedEvent struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreditedAt   time.Time       `json:"credited_at"`
}

// VerifyResult pairs the completed payment with the balance after the credit.
type VerifyResult struct {
	Payment      *models.Payment
	BalanceAfter decimal.Decimal
}

// PaymentFailedEvent is emitted when a gateway callback fails verification.
type PaymentFailedEvent struct {
	PaymentID uuid.UUID `json:"payment_id"`
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
}

// Service handles gateway top-ups and their reconciliation into the ledger.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*models.Payment, error)
	VerifyAndCredit(ctx context.Context, input VerifyInput) (*VerifyResult, error)
	History(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*PaymentList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	gateway gatewayAPI
	ledger  ledger.Service
	outbox  outboxPublisher
	now     func() time.Time
}

// NewService builds a payments service.
func NewService(repo Repository, tx txRunner, gw gatewayAPI, ledgerSvc ledger.Service, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway client required")
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
		gateway: gw,
		ledger:  ledgerSvc,
		outbox:  outboxSvc,
		now:     time.Now,
	}, nil
}

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*models.Payment, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	account, err := s.repo.FindAccount(ctx, input.AccountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !account.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not active")
	}

	paymentID := uuid.New()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, input.Amount, enums.CurrencyINR, paymentID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	payment := &models.Payment{
		ID:             paymentID,
		AccountID:      account.ID,
		Amount:         input.Amount,
		Currency:       enums.CurrencyINR,
		GatewayOrderID: gatewayOrder.ID,
		Status:         enums.GatewayPaymentStatusPending,
		Description:    input.Description,
	}
	if _, err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}
	return payment, nil
}

func (s *service) VerifyAndCredit(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id, payment id and signature required")
	}

	var verified *VerifyResult
	var badSignature bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.AccountID != input.AccountID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another account")
		}
		if payment.Status != enums.GatewayPaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "payment already processed")
		}

		if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
			if err := repo.UpdatePayment(ctx, payment.ID, map[string]any{
				"status": enums.GatewayPaymentStatusFailed,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPaymentFailed,
				AggregateType: enums.AggregatePayment,
				AggregateID:   payment.ID,
				Version:       1,
				Data: PaymentFailedEvent{
					PaymentID: payment.ID,
					AccountID: payment.AccountID,
					Reason:    "signature verification failed",
				},
			}); err != nil {
				return err
			}
			// Commit the failed status; the caller still gets an error.
			badSignature = true
			return nil
		}

		if err := repo.UpdatePayment(ctx, payment.ID, map[string]any{
			"status":             enums.GatewayPaymentStatusCompleted,
			"gateway_payment_id": input.GatewayPaymentID,
			"gateway_signature":  input.Signature,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment completed")
		}

		entry, err := s.ledger.Credit(ctx, tx, payment.AccountID, payment.Amount, ledger.Cause{
			Type: enums.LedgerCausePaymentCredit,
			ID:   payment.ID,
		})
		if err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCredited,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:    input.ActorUserID,
				AccountID: &payment.AccountID,
				Role:      input.ActorRole,
			},
			Data: PaymentCreditedEvent{
				PaymentID:    payment.ID,
				AccountID:    payment.AccountID,
				Amount:       payment.Amount,
				BalanceAfter: entry.BalanceAfter,
				CreditedAt:   s.now().UTC(),
			},
		}); err != nil {
			return err
		}

		payment.Status = enums.GatewayPaymentStatusCompleted
		payment.GatewayPaymentID = &input.GatewayPaymentID
		payment.GatewaySignature = &input.Signature
		verified = &VerifyResult{Payment: payment, BalanceAfter: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if badSignature {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSignature, "signature verification failed")
	}
	return verified, nil
}

func (s *service) History(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*PaymentList, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}
	list, err := s.repo.ListByAccount(ctx, accountID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return list, nil
}
