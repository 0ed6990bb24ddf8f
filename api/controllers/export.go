package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/priyamadhavan/gatekeeper-backend/api/responses"
	"github.com/priyamadhavan/gatekeeper-backend/internal/gateways"
	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
)

// ExportRoster streams the gateway's current roster as a CSV download,
// scan history columns included.
func ExportRoster(svc gateways.Service, store roster.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export unavailable"))
			return
		}

		gatewayID := chi.URLParam(r, "gatewayId")

		if _, err := svc.Get(r.Context(), gatewayID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		table, err := store.Load(r.Context(), gatewayID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roster"))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-roster.csv"`, gatewayID))
		if err := roster.WriteCSV(w, table); err != nil {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithGatewayID(ctx, gatewayID)
				logg.Error(ctx, "export.write_failed", err)
			}
			return
		}
	}
}
