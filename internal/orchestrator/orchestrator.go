// Package orchestrator accepts plan requests, runs the solve pipeline on a
// bounded worker pool, and tracks each run as a persistent Job record a
// client polls to completion, per SPEC_FULL.md §4.6 and the concurrency
// contract in §5.
//
// # Thread Safety
//
// Orchestrator is safe for concurrent use from multiple goroutines. Each
// job runs on its own tracked background goroutine; a channel-based
// semaphore bounds how many solves run at once, mirroring the donor
// solver service's SolverPool.
package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"coldroute/internal/apperror"
	"coldroute/internal/domain"
	"coldroute/internal/logger"
	"coldroute/internal/planmodel"
	"coldroute/internal/repository"
	"coldroute/internal/solver"
	"coldroute/internal/telemetry"
)

// Config carries the tunables that shape pool sizing and progress
// cadence, loaded from config.SolverConfig.
type Config struct {
	WorkerPoolSize   int
	ProgressInterval time.Duration
	TimeLimitDefault time.Duration
	TimeLimitMax     time.Duration
	ShutdownTimeout  time.Duration
	ModelConfig      planmodel.Config
}

// DefaultConfig sizes the worker pool to runtime.NumCPU(), mirroring the
// donor solver service's DefaultServiceConfig.
func DefaultConfig() Config {
	return Config{
		WorkerPoolSize:   runtime.NumCPU(),
		ProgressInterval: 2 * time.Second,
		TimeLimitDefault: 300 * time.Second,
		TimeLimitMax:     900 * time.Second,
		ShutdownTimeout:  30 * time.Second,
		ModelConfig:      planmodel.DefaultConfig(),
	}
}

// PlanRequest is the plan-request endpoint's payload, per SPEC_FULL.md §6.
type PlanRequest struct {
	PlanDate         time.Time
	DepotID          string
	DepartureTime    time.Time
	AmbientTemp      float64
	InitialCargoTemp float64
	TimeLimitSeconds int
	Strategy         solver.Strategy
}

// stats mirrors the donor's serviceStats: atomic counters cheap enough to
// touch on every job without contention.
type stats struct {
	jobsTotal     atomic.Int64
	jobsActive    atomic.Int64
	jobsSucceeded atomic.Int64
	jobsFailed    atomic.Int64
}

// Orchestrator wires the repository, model builder and solver engine
// together into the asynchronous job pipeline.
type Orchestrator struct {
	cfg    Config
	engine *solver.Engine

	depots    repository.DepotRepository
	vehicles  repository.VehicleRepository
	shipments repository.ShipmentRepository
	routes    repository.RouteRepository
	jobs      repository.JobRepository

	pool  chan struct{}
	stats stats

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// Dependencies bundles the repositories an Orchestrator reads/writes
// through, so New's signature does not grow with every new store.
type Dependencies struct {
	Depots    repository.DepotRepository
	Vehicles  repository.VehicleRepository
	Shipments repository.ShipmentRepository
	Routes    repository.RouteRepository
	Jobs      repository.JobRepository
}

// New builds an Orchestrator bound to deps, sizing its worker pool per
// cfg.WorkerPoolSize (falling back to runtime.NumCPU() if unset).
func New(cfg Config, deps Dependencies) *Orchestrator {
	poolSize := cfg.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	return &Orchestrator{
		cfg:        cfg,
		engine:     solver.New(solver.Config{TimeLimit: cfg.TimeLimitDefault}),
		depots:     deps.Depots,
		vehicles:   deps.Vehicles,
		shipments:  deps.Shipments,
		routes:     deps.Routes,
		jobs:       deps.Jobs,
		pool:       make(chan struct{}, poolSize),
		shutdownCh: make(chan struct{}),
	}
}

// Submit validates req, persists a PENDING job and schedules its solve on
// the worker pool. It returns as soon as the job record exists; the
// caller polls Status for progress. SPEC_FULL.md §4.6's synchronous
// precondition failure is returned directly, before any job is created.
func (o *Orchestrator) Submit(ctx context.Context, req PlanRequest) (domain.Job, error) {
	select {
	case <-o.shutdownCh:
		return domain.Job{}, apperror.New(apperror.CodePreconditionFailure, "orchestrator is shutting down")
	default:
	}

	ctx, span := telemetry.StartSpan(ctx, "Orchestrator.Submit")
	defer span.End()

	snapshot, err := repository.LoadSnapshot(ctx, o.depots, o.vehicles, o.shipments, req.DepotID)
	if err != nil {
		return domain.Job{}, fmt.Errorf("load snapshot: %w", err)
	}
	if err := validatePreconditions(snapshot); err != nil {
		return domain.Job{}, err
	}

	job := domain.Job{
		ID:        uuid.NewString(),
		PlanDate:  req.PlanDate,
		State:     domain.JobPending,
		Progress:  0,
		CreatedAt: time.Now(),
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return domain.Job{}, fmt.Errorf("create job: %w", err)
	}

	o.stats.jobsTotal.Add(1)
	o.wg.Add(1)
	go o.runJob(job.ID, req, snapshot)

	return job, nil
}

// Status returns the current job record, for the status-polling endpoint.
func (o *Orchestrator) Status(ctx context.Context, jobID string) (domain.Job, error) {
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

// validatePreconditions implements §4.6's synchronous precondition check:
// at least one pending shipment and one available vehicle.
func validatePreconditions(snapshot repository.Snapshot) error {
	if len(snapshot.Vehicles) == 0 {
		return apperror.ErrNoVehicles
	}
	if len(snapshot.Shipments) == 0 {
		return apperror.ErrNoShipments
	}
	return nil
}

// Shutdown closes the intake gate and waits for in-flight jobs to finish,
// mirroring the donor solver service's shutdownCh/sync.Once/WaitGroup
// pattern. ctx's deadline bounds how long it waits.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	var err error
	o.shutdownOnce.Do(func() {
		close(o.shutdownCh)

		done := make(chan struct{})
		go func() {
			o.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			logger.Log.Info("orchestrator drained all in-flight jobs")
		case <-ctx.Done():
			err = ctx.Err()
			logger.Log.Warn("orchestrator shutdown timed out", "active_jobs", o.stats.jobsActive.Load())
		}
	})
	return err
}
