package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/priyamadhavan/gatekeeper-backend/api/controllers"
	"github.com/priyamadhavan/gatekeeper-backend/api/middleware"
	"github.com/priyamadhavan/gatekeeper-backend/internal/gateways"
	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	"github.com/priyamadhavan/gatekeeper-backend/internal/scans"
	"github.com/priyamadhavan/gatekeeper-backend/internal/uploads"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/config"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPing func(ctx context.Context) error,
	store roster.Store,
	gatewayService gateways.Service,
	scanService scans.Service,
	uploadService uploads.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPing, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/gateways", func(r chi.Router) {
		r.Post("/", controllers.RegisterGateway(gatewayService, logg))
		r.Get("/", controllers.ListGateways(gatewayService, logg))

		r.Route("/{gatewayId}", func(r chi.Router) {
			r.Get("/", controllers.GetGateway(gatewayService, logg))
			r.Post("/scan", controllers.ScanMember(scanService, logg))
			r.Post("/uploads", controllers.UploadRoster(uploadService, logg))
			r.Get("/uploads", controllers.UploadHistory(uploadService, logg))
			r.Get("/stats", controllers.GatewayStats(gatewayService, logg))
			r.Get("/roster/export", controllers.ExportRoster(gatewayService, store, logg))
			r.Post("/sync", controllers.SyncGateway(gatewayService, logg))
			r.Post("/deactivate", controllers.DeactivateGateway(gatewayService, logg))
		})
	})

	return r
}
