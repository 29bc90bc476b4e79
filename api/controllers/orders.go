package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mandibazaar/mandi-backend/api/middleware"
	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/api/validators"
	internalorders "github.com/mandibazaar/mandi-backend/internal/orders"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

type createOrderRequest struct {
	ProductID         string  `json:"product_id" validate:"required,uuid4"`
	Quantity          int     `json:"quantity" validate:"required,min=1"`
	OrderType         string  `json:"order_type" validate:"required"`
	BulkOrderWindowID *string `json:"bulk_order_window_id,omitempty" validate:"omitempty,uuid4"`
	DeliveryAddress   *string `json:"delivery_address,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

// CreateOrder admits a new order for the authenticated vendor.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		orderType, err := enums.ParseOrderType(req.OrderType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type"))
			return
		}

		input := internalorders.CreateOrderInput{
			VendorAccountID: actor.accountID,
			ActorUserID:     actor.userID,
			ActorRole:       actor.role,
			ProductID:       productID,
			Quantity:        req.Quantity,
			OrderType:       orderType,
			DeliveryAddress: req.DeliveryAddress,
			Notes:           req.Notes,
		}
		if req.BulkOrderWindowID != nil {
			windowID, err := uuid.Parse(*req.BulkOrderWindowID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid window id"))
				return
			}
			input.BulkOrderWindowID = &windowID
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderDetail returns one of the vendor's orders.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID, actor.accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders pages through the vendor's orders, optionally filtered.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), actor.accountID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// PayPendingOrder settles a pay-later order from the vendor's balance.
func PayPendingOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PayPending(r.Context(), internalorders.PayPendingInput{
			OrderID:         orderID,
			VendorAccountID: actor.accountID,
			ActorUserID:     actor.userID,
			ActorRole:       actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PendingPayments lists the vendor's unpaid pay-later orders.
func PendingPayments(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListPendingPayments(r.Context(), actor.accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func buildOrderFilters(r *http.Request) (internalorders.Filters, error) {
	filters := internalorders.Filters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("order_type")); raw != "" {
		orderType, err := enums.ParseOrderType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_type filter")
		}
		filters.OrderType = &orderType
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status filter")
		}
		filters.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("order_status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_status filter")
		}
		filters.OrderStatus = &status
	}
	return filters, nil
}

type actorRef struct {
	userID    uuid.UUID
	accountID uuid.UUID
	role      string
}

func parseActor(r *http.Request) (actorRef, error) {
	rawAccount := middleware.AccountIDFromContext(r.Context())
	accountID, err := uuid.Parse(rawAccount)
	if err != nil {
		return actorRef{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account identity missing")
	}

	actor := actorRef{
		accountID: accountID,
		role:      middleware.RoleFromContext(r.Context()),
	}
	if userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context())); err == nil {
		actor.userID = userID
	}
	return actor, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
