package middleware

import (
	"net/http"

	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/internal/rbac"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

// RequirePermission gates the handler on the permission matrix. The role comes
// from the authenticated token claims seeded by Auth.
func RequirePermission(checker rbac.Checker, resource rbac.Resource, action rbac.Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if checker == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "permission checker unavailable"))
				return
			}

			role, err := enums.ParseAccountRole(RoleFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unrecognized role"))
				return
			}
			if !checker.Allowed(role, resource, action) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
