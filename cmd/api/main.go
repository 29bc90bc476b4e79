package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mandibazaar/mandi-backend/api/routes"
	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/internal/orders"
	"github.com/mandibazaar/mandi-backend/internal/payments"
	"github.com/mandibazaar/mandi-backend/internal/pricing"
	"github.com/mandibazaar/mandi-backend/internal/windows"
	"github.com/mandibazaar/mandi-backend/pkg/config"
	"github.com/mandibazaar/mandi-backend/pkg/db"
	"github.com/mandibazaar/mandi-backend/pkg/gateway"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
	"github.com/mandibazaar/mandi-backend/pkg/metrics"
	"github.com/mandibazaar/mandi-backend/pkg/migrate"
	"github.com/mandibazaar/mandi-backend/pkg/outbox"
	"github.com/mandibazaar/mandi-backend/pkg/redis"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	pricingSvc, err := pricing.NewService(pricing.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, pricingSvc, ledgerSvc, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	windowsRepo := windows.NewRepository(dbClient.DB())
	windowsSvc, err := windows.NewService(windowsRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create windows service", err)
		os.Exit(1)
	}
	paymentsSvc, err := payments.NewService(payments.NewRepository(dbClient.DB()), dbClient, gatewayClient, ledgerSvc, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}
	settlementEngine, err := windows.NewSettlementEngine(windowsRepo, dbClient, pricingSvc, ledgerSvc, outboxSvc, logg, settlementMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement engine", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Registry:   registry,
			Pricing:    pricingSvc,
			Ledger:     ledgerSvc,
			Orders:     ordersSvc,
			Windows:    windowsSvc,
			Payments:   paymentsSvc,
			Settlement: settlementEngine,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
