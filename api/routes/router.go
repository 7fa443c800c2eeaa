package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sajith213/fuelstation-backend/api/controllers"
	"github.com/sajith213/fuelstation-backend/api/middleware"
	"github.com/sajith213/fuelstation-backend/internal/inventory"
	"github.com/sajith213/fuelstation-backend/internal/pumps"
	"github.com/sajith213/fuelstation-backend/internal/readings"
	"github.com/sajith213/fuelstation-backend/internal/tanks"
	"github.com/sajith213/fuelstation-backend/internal/verification"
	"github.com/sajith213/fuelstation-backend/pkg/config"
	"github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
	"github.com/sajith213/fuelstation-backend/pkg/metrics"
	"github.com/sajith213/fuelstation-backend/pkg/redis"
)

// CacheStore is the Redis surface the HTTP layer needs.
type CacheStore interface {
	redis.IdempotencyStore
	redis.RateLimiter
	redis.Pinger
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Readings     readings.Service
	Verification verification.Service
	Tanks        tanks.Service
	Inventory    inventory.Service
	Pumps        pumps.Service
}

// NewRouter builds the chi router for the reconciliation API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cache CacheStore,
	registry *prometheus.Registry,
	svc Services,
) http.Handler {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if registry != nil {
		registerer, gatherer = registry, registry
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg, metrics.NewHTTPMetrics(registerer)),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	readyDeps := map[string]controllers.Pinger{}
	if dbP != nil {
		readyDeps["database"] = dbP
	}
	if cache != nil {
		readyDeps["redis"] = cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// a nil interface disables the Redis-backed middleware
	var (
		idempotencyStore redis.IdempotencyStore
		limiter          redis.RateLimiter
	)
	if cache != nil {
		idempotencyStore = cache
		limiter = cache
	}

	reviewers := middleware.RequireRole(logg, enums.OperatorRoleSupervisor, enums.OperatorRoleManager)
	bulkPolicy := middleware.NewRateLimitPolicy("verify-bulk", cfg.Eventing.BulkVerifyRateWindow, cfg.Eventing.BulkVerifyRateLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Eventing.IdempotencyTTL, logg))

		r.Route("/readings", func(r chi.Router) {
			r.Post("/", controllers.RecordReading(svc.Readings, logg))
			r.Get("/", controllers.ListReadings(svc.Readings, logg))
			r.With(reviewers, middleware.RateLimit(bulkPolicy, limiter, logg)).
				Post("/verify-bulk", controllers.BulkVerifyReadings(svc.Verification, logg))
			r.Get("/{readingId}", controllers.GetReading(svc.Readings, logg))
			r.Patch("/{readingId}", controllers.EditReading(svc.Readings, logg))
			r.Get("/{readingId}/ledger", controllers.ReadingLedger(svc.Inventory, logg))
			r.With(reviewers).Post("/{readingId}/verify", controllers.VerifyReading(svc.Verification, logg))
			r.With(reviewers).Post("/{readingId}/dispute", controllers.DisputeReading(svc.Verification, logg))
		})

		r.Route("/tanks", func(r chi.Router) {
			r.Get("/", controllers.ListTanks(svc.Tanks, logg))
			r.Get("/{tankId}", controllers.GetTank(svc.Tanks, logg))
			r.Get("/{tankId}/ledger", controllers.TankLedger(svc.Inventory, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.OperatorRoleManager))
			r.Post("/fuel-types", controllers.AdminCreateFuelType(svc.Tanks, logg))
			r.Post("/tanks", controllers.AdminCreateTank(svc.Tanks, logg))
			r.Post("/pumps", controllers.AdminCreatePump(svc.Pumps, logg))
			r.Delete("/pumps/{pumpId}", controllers.AdminDeletePump(svc.Pumps, logg))
			r.Post("/nozzles", controllers.AdminCreateNozzle(svc.Pumps, logg))
			r.Patch("/nozzles/{nozzleId}/status", controllers.AdminUpdateNozzleStatus(svc.Pumps, logg))
			r.Delete("/nozzles/{nozzleId}", controllers.AdminDeleteNozzle(svc.Pumps, logg))
		})
	})

	return r
}
