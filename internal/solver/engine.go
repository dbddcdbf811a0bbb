// Package solver wraps github.com/nextmv-io/sdk/route to run the
// constraint-programming search described in SPEC_FULL.md §4.4: time
// windows, weight/volume capacity, an optional labor penalty, and a
// disjunction penalty per shipment. The router is given no vehicle fixed
// costs and no span coefficient, so the search runs on the router's
// default objective and does not encode the (fleet → distance → slack)
// lexicographic order.
//
// Everything outside this package talks to Engine/Assignment, never to
// route.* types directly, so the one place that depends on the exact
// shape of the nextmv SDK is this file.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/route"
	"github.com/nextmv-io/sdk/store"

	"coldroute/internal/planmodel"
)

// Strategy names the objective emphasis a caller requested. Engine.Solve
// accepts it but does not pass it to the router, so both values run the
// same search.
type Strategy string

const (
	MinimizeVehicles Strategy = "MINIMIZE_VEHICLES"
	MinimizeDistance Strategy = "MINIMIZE_DISTANCE"
)

// Config is the subset of SPEC_FULL.md §6 configuration that shapes the
// search itself (as opposed to model construction, see planmodel.Config).
type Config struct {
	TimeLimit            time.Duration
	EnableLaborDimension bool
	DriverDailyLimitMin  int
	DriverWeeklyLimitMin int
	ExpansionLimit       int
}

// DefaultConfig mirrors solver_time_limit_default from SPEC_FULL.md §6.
func DefaultConfig() Config {
	return Config{
		TimeLimit:      300 * time.Second,
		ExpansionLimit: 1,
	}
}

// VisitedStop is one stop as placed by the search, before thermodynamic
// annotation. Node indices are the same dense indices planmodel.Model
// assigns, so callers can look up coordinates/windows/demand by index.
type VisitedStop struct {
	NodeIndex        int
	ArrivalOffsetMin int // minutes after the vehicle's departure
}

// VehicleRoute is one vehicle's assignment, in visit order.
type VehicleRoute struct {
	VehicleID string
	Stops     []VisitedStop
}

// Assignment is the raw solver output: which shipments each vehicle
// serves, in what order, and which shipments were left unassigned. The
// plan assembler (internal/planassembler) turns this into temperature-
// annotated, diagnosed routes.
type Assignment struct {
	Routes         []VehicleRoute
	Unassigned     []int // node indices not served by any vehicle
	ObjectiveValue int
}

// twoWindowPenalty is charged against the plan's objective value whenever
// both alternative nodes of a two-window shipment end up assigned at
// once. The underlying router has no native "exactly one of these two
// nodes" constraint, so SPEC_FULL.md §4.4's "auxiliary boolean selector"
// is realized here as a value-function penalty applied through the same
// route.Update mechanism the nextmv sample fleet uses for its
// imbalance/unassigned penalties, rather than as a hard constraint.
const twoWindowPenalty = 1_000_000

// Engine runs one VRPTW search per call. It holds no solve-specific state
// between calls; a fresh router is built from the model each time.
type Engine struct {
	cfg Config
}

// New builds an Engine bound to the given search configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Solve builds a nextmv router from model and returns the best assignment
// found within the configured time limit. Context cancellation is honored
// at the router's search boundary via opt.Limits.Duration, clamped to the
// context deadline when one is set; SPEC_FULL.md §5 describes the
// broader cancellation contract the orchestrator enforces around this
// call.
func (e *Engine) Solve(ctx context.Context, model planmodel.Model, departure time.Time, strategy Strategy) (Assignment, error) {
	stops, alternates := buildStops(model, departure)

	routeStops := make([]route.Stop, len(stops))
	services := make([]route.Service, len(stops))
	windows := make([]route.Window, len(stops))
	penalties := make([]int, len(stops))
	weightQuantities := make([]int, len(stops))
	volumeQuantities := make([]int, len(stops))
	stopIDs := make([]string, len(stops))
	for i, s := range stops {
		routeStops[i] = route.Stop{ID: s.id, Position: positionOf(model, s.nodeIndex)}
		stopIDs[i] = s.id
		services[i] = route.Service{
			ID:       s.id,
			Duration: time.Duration(model.ServiceMinutes[s.nodeIndex]) * time.Minute,
		}
		windows[i] = s.window
		penalties[i] = model.DisjunctionPenalty[s.nodeIndex]
		weightQuantities[i] = model.WeightDemand[s.nodeIndex]
		volumeQuantities[i] = model.VolumeDemand[s.nodeIndex]
	}

	depotPos := positionOf(model, 0)
	horizonEnd := departure.Add(time.Duration(model.PlanningHorizonEnd) * time.Minute)

	vehicleIDs := make([]string, len(model.Vehicles))
	velocities := make([]float64, len(model.Vehicles))
	starts := make([]route.Position, len(model.Vehicles))
	ends := make([]route.Position, len(model.Vehicles))
	shifts := make([]route.TimeWindow, len(model.Vehicles))
	weightCapacities := make([]int, len(model.Vehicles))
	volumeCapacities := make([]int, len(model.Vehicles))

	speed := averageSpeedKMH(model)
	for i, v := range model.Vehicles {
		vehicleIDs[i] = v.ID
		velocities[i] = speed
		starts[i] = depotPos
		ends[i] = depotPos
		shifts[i] = route.TimeWindow{Start: departure, End: horizonEnd}
		weightCapacities[i] = model.VehicleCapWeight[i]
		volumeCapacities[i] = model.VehicleCapVolume[i]
	}

	vUpdater := vehicleUpdater{
		stops:          stops,
		matrices:       model.Matrices,
		serviceMinutes: model.ServiceMinutes,
		enabled:        e.cfg.EnableLaborDimension,
		dailyLimitMin:  e.cfg.DriverDailyLimitMin,
		weeklyLimitMin: e.cfg.DriverWeeklyLimitMin,
		penaltyBase:    maxInt(model.VehicleFixedCost),
	}

	opts := []route.Option{
		route.Velocities(velocities),
		route.Starts(starts),
		route.Ends(ends),
		route.Services(services),
		route.Shifts(shifts),
		route.Windows(windows),
		route.Unassigned(penalties),
		route.Capacity(weightQuantities, weightCapacities),
		route.Capacity(volumeQuantities, volumeCapacities),
		route.Update(vUpdater, newFleetUpdater(stopIDs, alternates)),
	}

	router, err := route.NewRouter(routeStops, vehicleIDs, opts...)
	if err != nil {
		return Assignment{}, fmt.Errorf("solver: build router: %w", err)
	}

	solveOpt := store.DefaultOptions()
	solveOpt.Diagram.Expansion.Limit = e.cfg.ExpansionLimit
	solveOpt.Limits.Duration = searchBudget(ctx, e.cfg.TimeLimit)

	solverInstance, err := router.Solver(solveOpt)
	if err != nil {
		return Assignment{}, fmt.Errorf("solver: configure solver: %w", err)
	}

	solution := solverInstance.Last(ctx)
	if solution == nil {
		return Assignment{}, fmt.Errorf("solver: no solution found within %s", solveOpt.Limits.Duration)
	}

	plan, err := router.Plan(solution)
	if err != nil {
		return Assignment{}, fmt.Errorf("solver: format plan: %w", err)
	}

	return toAssignment(plan, stops, departure), nil
}

// searchBudget clamps the configured time limit to whatever remains on
// ctx's deadline, if any.
func searchBudget(ctx context.Context, configured time.Duration) time.Duration {
	limit := configured
	if limit <= 0 {
		limit = DefaultConfig().TimeLimit
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < limit {
			limit = remaining
		}
	}
	return limit
}

// positionOf converts a node's stored lat/lon into the router's Position
// type, returning the zero Position if the index is out of range (should
// not happen for a well-formed model).
func positionOf(model planmodel.Model, nodeIndex int) route.Position {
	if nodeIndex < 0 || nodeIndex >= len(model.Coords) {
		return route.Position{}
	}
	c := model.Coords[nodeIndex]
	return route.Position{Lon: c.Lon, Lat: c.Lat}
}

// maxInt returns the largest value in values, or 0 for an empty slice.
func maxInt(values []int) int {
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// averageSpeedKMH recovers the speed the model's matrices were built
// with, so the router's internal distance calc agrees with
// internal/geodistance's.
func averageSpeedKMH(model planmodel.Model) float64 {
	for i := range model.Matrices.DistanceM {
		for j := range model.Matrices.DistanceM[i] {
			if model.Matrices.TimeMin[i][j] > 0 {
				distKM := float64(model.Matrices.DistanceM[i][j]) / 1000.0
				hours := float64(model.Matrices.TimeMin[i][j]) / 60.0
				return distKM / hours
			}
		}
	}
	return 30.0
}
