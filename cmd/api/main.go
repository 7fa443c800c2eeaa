package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sajith213/fuelstation-backend/api/routes"
	"github.com/sajith213/fuelstation-backend/internal/backdating"
	"github.com/sajith213/fuelstation-backend/internal/inventory"
	"github.com/sajith213/fuelstation-backend/internal/pumps"
	"github.com/sajith213/fuelstation-backend/internal/readings"
	"github.com/sajith213/fuelstation-backend/internal/tanks"
	"github.com/sajith213/fuelstation-backend/internal/verification"
	"github.com/sajith213/fuelstation-backend/pkg/config"
	"github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/instance"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/metrics"
	"github.com/sajith213/fuelstation-backend/pkg/migrate"
	"github.com/sajith213/fuelstation-backend/pkg/outbox"
	"github.com/sajith213/fuelstation-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		Env:         cfg.App.Env,
		Instance:    instance.GetID(),
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

	loc, err := cfg.Reconciliation.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid station time zone", err)
		os.Exit(1)
	}

	poolCollector, err := dbClient.StatsCollector("fuelstation")
	if err != nil {
		logg.Error(context.Background(), "failed to build db stats collector", err)
		os.Exit(1)
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		poolCollector,
	)

	services, err := buildServices(cfg, logg, dbClient, backdating.NewPolicy(loc), metrics.NewReconciliationMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr":      addr,
		"time_zone": loc.String(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, client *db.Client, policy *backdating.Policy, recon *metrics.ReconciliationMetrics) (routes.Services, error) {
	conn := client.DB()
	tankRepo := tanks.NewRepository(conn)
	pumpRepo := pumps.NewRepository(conn)
	readingRepo := readings.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	tankSvc, err := tanks.NewService(tankRepo)
	if err != nil {
		return routes.Services{}, err
	}
	pumpSvc, err := pumps.NewService(pumpRepo, tankRepo, client)
	if err != nil {
		return routes.Services{}, err
	}
	ledger, err := inventory.NewService(inventory.NewRepository(conn), tankRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}
	readingSvc, err := readings.NewService(readings.ServiceParams{
		Repository: readingRepo,
		Nozzles:    pumpSvc,
		Policy:     policy,
		Outbox:     outboxSvc,
		TxRunner:   client,
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	verifySvc, err := verification.NewService(verification.ServiceParams{
		Readings:   readingRepo,
		Pumps:      pumpRepo,
		Inventory:  ledger,
		Policy:     policy,
		Outbox:     outboxSvc,
		TxRunner:   client,
		Logger:     logg,
		Metrics:    recon,
		BulkMaxIDs: cfg.Reconciliation.BulkVerifyMaxIDs,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Readings:     readingSvc,
		Verification: verifySvc,
		Tanks:        tankSvc,
		Inventory:    ledger,
		Pumps:        pumpSvc,
	}, nil
}
