package middleware

import (
	"net/http"

	"github.com/mandibazaar/mandi-backend/api/responses"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

// AccountContext rejects requests whose token carries no account binding.
func AccountContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AccountIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "account context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
