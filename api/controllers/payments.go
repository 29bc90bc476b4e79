package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/api/validators"
	"github.com/mandibazaar/mandi-backend/internal/payments"
	"github.com/mandibazaar/mandi-backend/pkg/db/models"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	Amount      string  `json:"amount" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type verifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

type verifyPaymentResponse struct {
	Payment *models.Payment `json:"payment"`
	Balance decimal.Decimal `json:"balance"`
}

// InitiatePayment starts a gateway top-up for the authenticated account.
func InitiatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		payment, err := svc.Initiate(r.Context(), payments.InitiateInput{
			AccountID:   actor.accountID,
			Amount:      amount,
			Description: req.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// VerifyPayment reconciles a gateway callback and credits the balance.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyAndCredit(r.Context(), payments.VerifyInput{
			AccountID:        actor.accountID,
			ActorUserID:      actor.userID,
			ActorRole:        actor.role,
			GatewayOrderID:   req.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			Signature:        req.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verifyPaymentResponse{
			Payment: result.Payment,
			Balance: result.BalanceAfter,
		})
	}
}

// PaymentHistory pages through the account's gateway payments.
func PaymentHistory(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.History(r.Context(), actor.accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
