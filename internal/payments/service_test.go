package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/gateway"
	"github.com/mandibazaar/mandi-backend/pkg/outbox"
	"github.com/mandibazaar/mandi-backend/pkg/pagination"
)

const testSecret = "test-secret"

type stubRepo struct {
	accounts map[uuid.UUID]*models.Account
	payments map[string]*models.Payment

	created []*models.Payment
	updates map[uuid.UUID]map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		accounts: map[uuid.UUID]*models.Account{},
		payments: map[string]*models.Payment{},
		updates:  map[uuid.UUID]map[string]any{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (s *stubRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	s.created = append(s.created, payment)
	s.payments[payment.GatewayOrderID] = payment
	return payment, nil
}

func (s *stubRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	payment, ok := s.payments[gatewayOrderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *stubRepo) UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error {
	s.updates[paymentID] = updates
	return nil
}

func (s *stubRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*PaymentList, error) {
	var rows []models.Payment
	for _, payment := range s.payments {
		if payment.AccountID == accountID {
			rows = append(rows, *payment)
		}
	}
	return &PaymentList{Payments: rows}, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubGateway struct {
	orderID string
	err     error
}

func (s *stubGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency enums.Currency, receipt string) (*gateway.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &gateway.Order{
		ID:       s.orderID,
		Amount:   gateway.ToPaise(amount),
		Currency: currency.String(),
		Status:   "created",
	}, nil
}

func (s *stubGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return gateway.VerifySignature(testSecret, gatewayOrderID, gatewayPaymentID, signature)
}

type stubLedger struct {
	balance decimal.Decimal
	credits []decimal.Decimal
}

func (s *stubLedger) Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause ledger.Cause) (*models.LedgerEntry, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected debit")
}

func (s *stubLedger) Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount decimal.Decimal, cause ledger.Cause) (*models.LedgerEntry, error) {
	s.balance = s.balance.Add(amount)
	s.credits = append(s.credits, amount)
	return &models.LedgerEntry{ID: uuid.New(), AccountID: accountID, Amount: amount, BalanceAfter: s.balance}, nil
}

func (s *stubLedger) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubLedger) Entries(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*ledger.EntryList, error) {
	return &ledger.EntryList{}, nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fixture struct {
	svc    Service
	repo   *stubRepo
	ledger *stubLedger
	outbox *stubOutbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newStubRepo(),
		ledger: &stubLedger{},
		outbox: &stubOutbox{},
	}
	svc, err := NewService(f.repo, stubTxRunner{}, &stubGateway{orderID: "order_abc123"}, f.ledger, f.outbox)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seedAccount(active bool) uuid.UUID {
	id := uuid.New()
	f.repo.accounts[id] = &models.Account{
		ID:       id,
		Role:     enums.AccountRoleVendor,
		IsActive: active,
	}
	return id
}

func (f *fixture) seedPendingPayment(accountID uuid.UUID, amount decimal.Decimal) *models.Payment {
	payment := &models.Payment{
		ID:             uuid.New(),
		AccountID:      accountID,
		Amount:         amount,
		Currency:       enums.CurrencyINR,
		GatewayOrderID: "order_abc123",
		Status:         enums.GatewayPaymentStatusPending,
	}
	f.repo.payments[payment.GatewayOrderID] = payment
	return payment
}

func TestInitiatePayment(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(true)

	payment, err := f.svc.Initiate(context.Background(), InitiateInput{
		AccountID: accountID,
		Amount:    decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc123", payment.GatewayOrderID)
	assert.Equal(t, enums.GatewayPaymentStatusPending, payment.Status)
	assert.Equal(t, accountID, payment.AccountID)
	require.Len(t, f.repo.created, 1)
}

func TestInitiatePaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(true)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := f.svc.Initiate(context.Background(), InitiateInput{
			AccountID: accountID,
			Amount:    amount,
		})
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	}
}

func TestInitiatePaymentRejectsInactiveAccount(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(false)

	_, err := f.svc.Initiate(context.Background(), InitiateInput{
		AccountID: accountID,
		Amount:    decimal.NewFromInt(100),
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestVerifyAndCredit(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(true)
	amount := decimal.NewFromInt(750)
	pending := f.seedPendingPayment(accountID, amount)

	f.ledger.balance = decimal.NewFromInt(250)
	result, err := f.svc.VerifyAndCredit(context.Background(), VerifyInput{
		AccountID:        accountID,
		GatewayOrderID:   pending.GatewayOrderID,
		GatewayPaymentID: "pay_xyz789",
		Signature:        signPayment(pending.GatewayOrderID, "pay_xyz789"),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.GatewayPaymentStatusCompleted, result.Payment.Status)
	require.NotNil(t, result.Payment.GatewayPaymentID)
	assert.Equal(t, "pay_xyz789", *result.Payment.GatewayPaymentID)

	// The caller gets the balance after the credit landed.
	assert.True(t, decimal.NewFromInt(1000).Equal(result.BalanceAfter))

	require.Len(t, f.ledger.credits, 1)
	assert.True(t, amount.Equal(f.ledger.credits[0]))

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, enums.EventPaymentCredited, f.outbox.events[0].EventType)
}

func TestVerifyAndCreditRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(true)
	pending := f.seedPendingPayment(accountID, decimal.NewFromInt(750))

	_, err := f.svc.VerifyAndCredit(context.Background(), VerifyInput{
		AccountID:        accountID,
		GatewayOrderID:   pending.GatewayOrderID,
		GatewayPaymentID: "pay_xyz789",
		Signature:        "deadbeef",
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidSignature))

	// The payment is marked failed and no money moves.
	assert.Equal(t, enums.GatewayPaymentStatusFailed, f.repo.updates[pending.ID]["status"])
	assert.Empty(t, f.ledger.credits)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, enums.EventPaymentFailed, f.outbox.events[0].EventType)
}

func TestVerifyAndCreditRejectsReplay(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(true)
	pending := f.seedPendingPayment(accountID, decimal.NewFromInt(750))
	pending.Status = enums.GatewayPaymentStatusCompleted

	_, err := f.svc.VerifyAndCredit(context.Background(), VerifyInput{
		AccountID:        accountID,
		GatewayOrderID:   pending.GatewayOrderID,
		GatewayPaymentID: "pay_xyz789",
		Signature:        signPayment(pending.GatewayOrderID, "pay_xyz789"),
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeAlreadyProcessed))
	assert.Empty(t, f.ledger.credits)
}

func TestVerifyAndCreditRejectsForeignPayment(t *testing.T) {
	f := newFixture(t)
	owner := f.seedAccount(true)
	other := f.seedAccount(true)
	pending := f.seedPendingPayment(owner, decimal.NewFromInt(750))

	_, err := f.svc.VerifyAndCredit(context.Background(), VerifyInput{
		AccountID:        other,
		GatewayOrderID:   pending.GatewayOrderID,
		GatewayPaymentID: "pay_xyz789",
		Signature:        signPayment(pending.GatewayOrderID, "pay_xyz789"),
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeForbidden))
}

func TestVerifyAndCreditUnknownOrder(t *testing.T) {
	f := newFixture(t)
	accountID := f.seedAccount(true)

	_, err := f.svc.VerifyAndCredit(context.Background(), VerifyInput{
		AccountID:        accountID,
		GatewayOrderID:   "order_missing",
		GatewayPaymentID: "pay_xyz789",
		Signature:        signPayment("order_missing", "pay_xyz789"),
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
