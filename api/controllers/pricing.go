package controllers

import (
	"net/http"

	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/api/validators"
	"github.com/mandibazaar/mandi-backend/internal/pricing"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

// QuoteProduct previews the tiered unit price for a quantity without placing
// an order.
func QuoteProduct(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity, err := validators.ParseQueryInt(r, "quantity", 0, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if quantity < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quantity query parameter required"))
			return
		}

		quote, err := svc.QuoteForQuantity(r.Context(), productID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
