// Command coldroute runs the cold-chain routing service: it loads
// configuration, opens the Postgres pool, wires the repository,
// orchestrator and HTTP layers together, and serves SPEC_FULL.md §6's
// endpoints until a shutdown signal arrives.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coldroute/internal/audit"
	"coldroute/internal/config"
	"coldroute/internal/database"
	"coldroute/internal/httpapi"
	"coldroute/internal/logger"
	"coldroute/internal/metrics"
	"coldroute/internal/orchestrator"
	"coldroute/internal/planmodel"
	"coldroute/internal/ratelimit"
	"coldroute/internal/repository"
	"coldroute/internal/telemetry"
	"coldroute/migrations"
)

func main() {
	cfg := config.MustLoad()
	logger.InitWithConfig(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		provider, err := telemetry.Init(ctx, cfg.Tracing)
		if err != nil {
			logger.Log.Warn("failed to init telemetry, continuing without tracing", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := provider.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	if cfg.Metrics.Enabled {
		metrics.Init(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		logger.Log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator := database.NewMigrator(db.Pool(), migrations.FS, ".")
		if err := migrator.Up(ctx); err != nil {
			logger.Log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	depots := repository.NewPostgresDepotRepository(db)
	vehicles := repository.NewPostgresVehicleRepository(db)
	shipments := repository.NewPostgresShipmentRepository(db)
	routes := repository.NewPostgresRouteRepository(db)
	jobs := repository.NewPostgresJobRepository(db)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(ratelimit.FromConfig(cfg.RateLimit))
		if err != nil {
			logger.Log.Warn("failed to init rate limiter, continuing without one", "error", err)
			limiter = nil
		}
	}
	if limiter != nil {
		defer limiter.Close()
	}

	auditLogger, err := audit.New(audit.FromConfig(cfg.Audit))
	if err != nil {
		logger.Log.Warn("failed to init audit logger, falling back to stdout", "error", err)
		auditLogger, _ = audit.New(audit.Config{Enabled: true, Backend: "stdout"})
	}
	if auditLogger != nil {
		defer auditLogger.Close()
	}

	orchCfg := orchestrator.Config{
		WorkerPoolSize:   cfg.Solver.WorkerPoolSize,
		ProgressInterval: cfg.Solver.ProgressInterval,
		TimeLimitDefault: cfg.Solver.TimeLimitDefault,
		TimeLimitMax:     cfg.Solver.TimeLimitMax,
		ShutdownTimeout:  cfg.HTTP.ShutdownTimeout,
		ModelConfig: planmodel.Config{
			AverageSpeedKMH:      cfg.Model.AverageSpeedKMH,
			VehicleFixedCost:     cfg.Model.VehicleFixedCost,
			InfeasibleCost:       cfg.Model.InfeasibleCost,
			TempViolationPenalty: cfg.Model.TempViolationPenalty,
			LateDeliveryPenalty:  cfg.Model.LateDeliveryPenalty,
		},
	}
	if orchCfg.WorkerPoolSize <= 0 {
		orchCfg.WorkerPoolSize = orchestrator.DefaultConfig().WorkerPoolSize
	}

	orch := orchestrator.New(orchCfg, orchestrator.Dependencies{
		Depots:    depots,
		Vehicles:  vehicles,
		Shipments: shipments,
		Routes:    routes,
		Jobs:      jobs,
	})

	var metricsHandle *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsHandle = metrics.Get()
	}

	srv := httpapi.New(cfg.HTTP, httpapi.Dependencies{
		Orchestrator: orch,
		Depots:       depots,
		Vehicles:     vehicles,
		Shipments:    shipments,
		Routes:       routes,
		Metrics:      metricsHandle,
		Audit:        auditLogger,
		RateLimiter:  limiter,
		ModelConfig:  cfg.Model,
		ReportConfig: cfg.Report,
	})

	logger.Log.Info("starting coldroute",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"port", cfg.HTTP.Port,
	)

	if err := srv.Run(ctx, cfg.HTTP.ShutdownTimeout); err != nil {
		logger.Log.Error("http server stopped with error", "error", err)
		orchShutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		orch.Shutdown(orchShutdownCtx)
		cancel()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := orch.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("orchestrator did not drain in time", "error", err)
	}

	logger.Log.Info("coldroute stopped cleanly")
}
