package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/priyamadhavan/gatekeeper-backend/api/responses"
	"github.com/priyamadhavan/gatekeeper-backend/api/validators"
	"github.com/priyamadhavan/gatekeeper-backend/internal/scans"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
)

type scanRequest struct {
	QRID string `json:"qr_id" validate:"required,min=1,max=128"`
}

// ScanMember authorizes a badge scan at a gateway. A repeat scan on the same
// day is reported as a conflict with the matched member in the payload.
func ScanMember(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		gatewayID := chi.URLParam(r, "gatewayId")

		var req scanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Authorize(r.Context(), gatewayID, req.QRID, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Status == scans.StatusAlreadyScanned {
			responses.WriteSuccessStatus(w, http.StatusConflict, result)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
