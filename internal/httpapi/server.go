// Package httpapi exposes the plan-request, job-status, violations-report
// and map-data endpoints of SPEC_FULL.md §6 on a plain net/http mux — no
// protobuf/gRPC service descriptors are generated in this repo, so the
// donor's connectrpc.com/connect transport is re-expressed here as
// ordinary HTTP handlers wrapped in the same logging/metrics/rate-limit/
// audit middleware chain the donor builds from its gRPC interceptors.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coldroute/internal/audit"
	"coldroute/internal/config"
	"coldroute/internal/logger"
	"coldroute/internal/metrics"
	"coldroute/internal/orchestrator"
	"coldroute/internal/ratelimit"
	"coldroute/internal/report"
	"coldroute/internal/repository"
)

// Dependencies bundles everything the HTTP edge reads through; the
// orchestrator owns job submission/polling, the repositories back the
// read-only violations/map-data endpoints, and the generators back
// report export.
type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Depots       repository.DepotRepository
	Vehicles     repository.VehicleRepository
	Shipments    repository.ShipmentRepository
	Routes       repository.RouteRepository

	Metrics     *metrics.Metrics
	Audit       audit.Logger
	RateLimiter ratelimit.Limiter

	ModelConfig  config.ModelConfig
	ReportConfig config.ReportConfig
}

// Server wraps an http.Server with the routes, generators and middleware
// chain backing SPEC_FULL.md §6.
type Server struct {
	httpServer *http.Server

	orchestrator *orchestrator.Orchestrator
	depots       repository.DepotRepository
	vehicles     repository.VehicleRepository
	shipments    repository.ShipmentRepository
	routes       repository.RouteRepository

	modelConfig  config.ModelConfig
	reportConfig config.ReportConfig

	pdfGenerator   *report.PDFGenerator
	excelGenerator *report.ExcelGenerator
}

// New builds a Server bound to deps and cfg, registering every §6
// endpoint on a fresh http.ServeMux.
func New(cfg config.HTTPConfig, deps Dependencies) *Server {
	s := &Server{
		orchestrator:   deps.Orchestrator,
		depots:         deps.Depots,
		vehicles:       deps.Vehicles,
		shipments:      deps.Shipments,
		routes:         deps.Routes,
		modelConfig:    deps.ModelConfig,
		reportConfig:   deps.ReportConfig,
		pdfGenerator:   report.NewPDFGenerator(deps.ReportConfig.PDF),
		excelGenerator: report.NewExcelGenerator(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/plans", s.handleSubmitPlan)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("GET /api/v1/jobs/{id}/violations", s.handleViolationsReport)
	mux.HandleFunc("GET /api/v1/jobs/{id}/report", s.handleReportExport)
	mux.HandleFunc("GET /api/v1/map", s.handleMapData)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	handler := chain(mux,
		loggingMiddleware(),
		metricsMiddleware(deps.Metrics),
		rateLimitMiddleware(deps.RateLimiter),
		auditMiddleware(deps.Audit),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Run starts the HTTP server and blocks until ctx is canceled, at which
// point it drains in-flight requests within cfg.ShutdownTimeout, mirroring
// the donor GRPCServer.Serve's waitForShutdown pattern translated to
// http.Server.Shutdown.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Log.Info("shutting down http server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("forcing http server close", "error", err)
		return s.httpServer.Close()
	}
	return nil
}
