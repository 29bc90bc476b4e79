package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mandibazaar/mandi-backend/api/responses"
	"github.com/mandibazaar/mandi-backend/api/validators"
	"github.com/mandibazaar/mandi-backend/internal/windows"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	pkgerrors "github.com/mandibazaar/mandi-backend/pkg/errors"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

type createWindowRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	WindowStartTime time.Time `json:"window_start_time" validate:"required"`
	WindowEndTime   time.Time `json:"window_end_time" validate:"required"`
}

// CreateWindow opens a bulk order window for the authenticated supplier.
func CreateWindow(svc windows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := parseActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createWindowRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window, err := svc.Create(r.Context(), windows.CreateWindowInput{
			CreatorAccountID: actor.accountID,
			ActorUserID:      actor.userID,
			ActorRole:        actor.role,
			Title:            validators.SanitizeString(req.Title, 200),
			Description:      req.Description,
			WindowStartTime:  req.WindowStartTime,
			WindowEndTime:    req.WindowEndTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, window)
	}
}

// WindowDetail returns one window by id.
func WindowDetail(svc windows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		windowID, err := parseUUIDParam(r, "windowId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window, err := svc.Get(r.Context(), windowID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, window)
	}
}

// ListWindows pages through windows, optionally filtered by status.
func ListWindows(svc windows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.WindowStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseWindowStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.List(r.Context(), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
