package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/priyamadhavan/gatekeeper-backend/api/responses"
	"github.com/priyamadhavan/gatekeeper-backend/api/validators"
	"github.com/priyamadhavan/gatekeeper-backend/internal/gateways"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
)

type registerGatewayRequest struct {
	GatewayID   string `json:"gateway_id" validate:"required,min=1,max=64"`
	GatewayName string `json:"gateway_name" validate:"required,min=1,max=128"`
	Location    string `json:"location" validate:"omitempty,max=256"`
}

// RegisterGateway creates a checkpoint entry in the registry.
func RegisterGateway(svc gateways.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway service unavailable"))
			return
		}

		var req registerGatewayRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gateway, err := svc.Register(r.Context(), gateways.RegisterInput{
			GatewayID:   validators.SanitizeString(req.GatewayID, 64),
			GatewayName: validators.SanitizeString(req.GatewayName, 128),
			Location:    validators.SanitizeString(req.Location, 256),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, gateway)
	}
}

// ListGateways returns registered gateways, optionally only active ones.
func ListGateways(svc gateways.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway service unavailable"))
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetGateway returns a single gateway by id.
func GetGateway(svc gateways.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway service unavailable"))
			return
		}

		gateway, err := svc.Get(r.Context(), chi.URLParam(r, "gatewayId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, gateway)
	}
}

// SyncGateway stamps a heartbeat for the gateway and reactivates it.
func SyncGateway(svc gateways.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway service unavailable"))
			return
		}

		gateway, err := svc.RecordSync(r.Context(), chi.URLParam(r, "gatewayId"), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, gateway)
	}
}

// DeactivateGateway marks a gateway inactive without deleting its history.
func DeactivateGateway(svc gateways.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway service unavailable"))
			return
		}

		gateway, err := svc.Deactivate(r.Context(), chi.URLParam(r, "gatewayId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, gateway)
	}
}

// GatewayStats returns roster totals and today's scan tally for a gateway.
func GatewayStats(svc gateways.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context(), chi.URLParam(r, "gatewayId"), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
