package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/priyamadhavan/gatekeeper-backend/api/routes"
	"github.com/priyamadhavan/gatekeeper-backend/internal/gateways"
	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	"github.com/priyamadhavan/gatekeeper-backend/internal/scans"
	"github.com/priyamadhavan/gatekeeper-backend/internal/uploads"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/config"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/db"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/db/models"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.DB().AutoMigrate(&models.Gateway{}, &models.UploadBatch{}); err != nil {
		logg.Error(context.Background(), "failed to migrate database", err)
		os.Exit(1)
	}

	store, err := roster.NewFileStore(cfg.Roster.DataDir)
	if err != nil {
		logg.Error(context.Background(), "failed to open roster store", err)
		os.Exit(1)
	}
	locks := roster.NewGatewayLocks()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	gatewayRepo := gateways.NewRepository(dbClient.DB())
	gatewayService, err := gateways.NewService(gatewayRepo, store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway service", err)
		os.Exit(1)
	}

	scanService, err := scans.NewService(store, locks, gatewayService, logg, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create scan service", err)
		os.Exit(1)
	}

	uploadService, err := uploads.NewService(store, locks, uploads.NewRepository(dbClient.DB()), gatewayRepo, cfg.Merge, logg, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient.Ping, store, gatewayService, scanService, uploadService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
