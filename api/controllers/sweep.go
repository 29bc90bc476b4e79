package controllers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/pkg/config"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

const sweepTokenHeader = "X-Sweep-Token"

type settlementSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// TriggerSweep runs one settlement pass over expired windows. It backs the
// internal endpoint operators hit when they cannot wait for the cron cycle.
func TriggerSweep(cfg config.SweepConfig, engine settlementSweeper, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(sweepTokenHeader))
		if cfg.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid sweep token"))
			return
		}

		processed, err := engine.SweepExpired(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"windows_settled": processed})
	}
}
