// Package repository defines the persistence interfaces the orchestrator
// and plan assembler depend on, replacing the donor's ORM/gRPC-backed data
// access with explicit per-entity load/persist methods (SPEC_FULL.md §9's
// "replace dynamic ORM... with explicit repository interfaces").
package repository

import (
	"context"
	"errors"

	"coldroute/internal/domain"
)

// Sentinel lookup errors, translated to apperror.CodeNotFound / CodeConflict
// at the repository boundary.
var (
	ErrNotFound = errors.New("entity not found")
	ErrConflict = errors.New("optimistic lock conflict")
)

// DepotRepository loads the single depot referenced by a plan request.
type DepotRepository interface {
	Get(ctx context.Context, id string) (domain.Depot, error)
}

// VehicleRepository loads the available-fleet snapshot taken at job start.
type VehicleRepository interface {
	ListAvailable(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id string) (domain.Vehicle, error)
}

// ShipmentRepository loads the pending-shipment snapshot and writes back
// status transitions once a plan is assembled.
type ShipmentRepository interface {
	ListPending(ctx context.Context) ([]domain.Shipment, error)
	GetByID(ctx context.Context, id string) (domain.Shipment, error)
	UpdateStatus(ctx context.Context, id string, status domain.ShipmentStatus) error
}

// RouteRepository persists routes and their stops, and supports the
// optimistic-concurrency update SPEC_FULL.md §5/§6 describes for Route.
type RouteRepository interface {
	// PersistPlan atomically writes all routes (with stops) for a job,
	// replacing any routes the job already owned. Implementations must
	// run this inside a single transaction (§7's "plan writes are
	// all-or-nothing per job").
	PersistPlan(ctx context.Context, jobID string, routes []domain.Route) error
	ListByJob(ctx context.Context, jobID string) ([]domain.Route, error)
	// UpdateVersion applies an optimistic-concurrency update: the write
	// is rejected with ErrConflict if the stored version does not match
	// expectedVersion.
	UpdateVersion(ctx context.Context, route domain.Route, expectedVersion int) error
}

// JobRepository persists the job state machine and its progress/result.
type JobRepository interface {
	Create(ctx context.Context, job domain.Job) error
	Get(ctx context.Context, id string) (domain.Job, error)
	// UpdateState performs a monotone state transition; callers are
	// responsible for calling domain.JobState.CanTransitionTo first.
	UpdateState(ctx context.Context, id string, state domain.JobState) error
	// UpdateProgress writes a new progress value; implementations should
	// reject regressions (§5's "progress writes are monotone
	// non-decreasing").
	UpdateProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id string, summary domain.PlanSummary) error
	Fail(ctx context.Context, id string, errMessage string) error
}

// Snapshot bundles everything the model builder needs, taken at job start.
// LoadSnapshot reads the depot, vehicles and shipments with three separate
// queries; they do not share one transaction.
type Snapshot struct {
	Depot     domain.Depot
	Vehicles  []domain.Vehicle
	Shipments []domain.Shipment
}

// LoadSnapshot reads the depot, available vehicles and pending shipments
// needed to build one plan request's model.
func LoadSnapshot(ctx context.Context, depots DepotRepository, vehicles VehicleRepository, shipments ShipmentRepository, depotID string) (Snapshot, error) {
	depot, err := depots.Get(ctx, depotID)
	if err != nil {
		return Snapshot{}, err
	}
	availableVehicles, err := vehicles.ListAvailable(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	pendingShipments, err := shipments.ListPending(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Depot: depot, Vehicles: availableVehicles, Shipments: pendingShipments}, nil
}
