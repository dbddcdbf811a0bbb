package domain

import "time"

// SLATier classifies how strictly a shipment's constraints must be honored.
type SLATier string

const (
	// SLAStrict shipments force the job to FAILED if their time window or
	// temperature ceiling cannot be honored; they may never be dropped.
	SLAStrict SLATier = "STRICT"
	// SLAStandard shipments may be dropped at a priority-scaled penalty.
	SLAStandard SLATier = "STANDARD"
)

// ShipmentStatus tracks a shipment's lifecycle across planning runs.
type ShipmentStatus string

const (
	ShipmentPending  ShipmentStatus = "PENDING"
	ShipmentAssigned ShipmentStatus = "ASSIGNED"
)

// JobState is the single source of truth for a job's lifecycle. Transitions
// are monotone: PENDING -> RUNNING -> COMPLETED|FAILED, no return.
type JobState string

const (
	JobPending   JobState = "PENDING"
	JobRunning   JobState = "RUNNING"
	JobCompleted JobState = "COMPLETED"
	JobFailed    JobState = "FAILED"
)

// CanTransitionTo reports whether moving from s to next is a legal
// state-machine edge per the job diagram in SPEC_FULL.md §4.4.1.
func (s JobState) CanTransitionTo(next JobState) bool {
	switch s {
	case JobPending:
		return next == JobRunning
	case JobRunning:
		return next == JobCompleted || next == JobFailed
	default:
		return false
	}
}

// TimeWindow is a single [Start, End] interval in minutes-of-day,
// Start < End.
type TimeWindow struct {
	Start int
	End   int
}

// Contains reports whether the interval [arrive, arrive+serviceMinutes]
// fits entirely inside the window.
func (w TimeWindow) Contains(arrive, serviceMinutes int) bool {
	return arrive >= w.Start && arrive+serviceMinutes <= w.End
}

// Depot is the single immutable origin/terminus for a plan request.
type Depot struct {
	ID        string
	Lat       float64
	Lon       float64
	Window    TimeWindow
}

// Vehicle is a refrigerated unit available for a plan request. Snapshot
// fields are taken at job start and never mutated mid-solve.
type Vehicle struct {
	ID              string
	CapacityWeight  float64
	CapacityVolume  float64
	Insulation      float64 // K, ambient-to-interior transfer coefficient
	DoorCoefficient float64 // C, service-time rise coefficient
	Curtain         bool
	CoolingRate     float64 // R, °C/min, negative when refrigeration is active
	MinTemp         float64
	Available       bool
	FixedCost       int
}

// Shipment is a single pickup/delivery with cold-chain constraints.
type Shipment struct {
	ID              string
	Lat             float64
	Lon             float64
	Weight          float64
	Volume          float64
	Windows         []TimeWindow // 1 or 2 disjoint intervals
	ServiceMinutes  int
	TempCeiling     float64
	TempFloor       *float64
	SLA             SLATier
	Priority        int // 0..100
	Status          ShipmentStatus
}

// NodeKind distinguishes the depot node from shipment (pickup) nodes.
type NodeKind string

const (
	NodeDepot   NodeKind = "DEPOT"
	NodePickup  NodeKind = "PICKUP"
)

// Node is a dense, stable index into the canonical model built by
// planmodel.Builder. Node 0 is always the depot.
type Node struct {
	Index      int
	Kind       NodeKind
	ShipmentID string // empty for the depot node
}

// Stop is one visited node on a solved route. Sequence is 1-based and
// contiguous within its owning Route.
type Stop struct {
	Sequence            int
	ShipmentID          string
	ArrivalTime         time.Time
	DepartureTime       time.Time
	TransitRise         float64
	ServiceRise         float64
	CoolingApplied      float64
	PredictedArrivalTemp float64
	Feasible            bool
}

// Route is one vehicle's ordered stop sequence, created atomically at
// solve completion. Version is the optimistic-concurrency counter.
type Route struct {
	ID               string
	JobID            string
	VehicleID        string
	Stops            []Stop
	TotalDistanceM   float64
	TotalDurationMin float64
	InitialTemp      float64
	FinalTemp        float64
	MaxTemp          float64
	Feasible         bool
	Version          int
}

// UnassignedDiagnostic names the likely cause a shipment was not placed on
// any route.
type UnassignedDiagnostic string

const (
	DiagTimeWindow         UnassignedDiagnostic = "TIME_WINDOW"
	DiagStrictSLA          UnassignedDiagnostic = "STRICT_SLA"
	DiagTemperature        UnassignedDiagnostic = "TEMPERATURE"
	DiagCapacityOrRouting  UnassignedDiagnostic = "CAPACITY_OR_ROUTING"
)

// UnassignedShipment records a dropped shipment plus its diagnosis.
type UnassignedShipment struct {
	ShipmentID    string
	LikelyReasons []UnassignedDiagnostic
	Parameter     string
	CurrentValue  float64
	ConstraintValue float64
}

// Job is the persistent record tracked by the orchestrator. Progress is
// monotone non-decreasing; State is the single source of truth for
// polling.
type Job struct {
	ID          string
	PlanDate    time.Time
	State       JobState
	Progress    int
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
	Summary     *PlanSummary
	ErrorMessage string
}

// PlanSummary is the aggregate result attached to a COMPLETED job.
type PlanSummary struct {
	TotalDistanceM    float64
	TotalDurationMin  float64
	VehiclesUsed      int
	ShipmentsAssigned int
	ShipmentsUnassigned int
	AllFeasible       bool
	RouteIDs          []string
	Unassigned        []UnassignedShipment
}
