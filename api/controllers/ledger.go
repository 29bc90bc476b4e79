package controllers

import (
	"net/http"

	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/api/validators"
	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

// Balance returns the authenticated account's current balance.
func Balance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), actor.accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"balance": balance})
	}
}

// LedgerEntries pages through the account's balance history.
func LedgerEntries(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.Entries(r.Context(), actor.accountID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
