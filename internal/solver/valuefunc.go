package solver

import (
	"time"

	"github.com/nextmv-io/sdk/route"

	"coldroute/internal/geodistance"
)

// vehicleUpdater charges §4.4.3's optional labor-dimension penalty: a
// soft upper bound on a vehicle's accumulated travel+service minutes,
// recomputed from the same stop-index/matrix data Engine.Solve already
// closes over rather than any per-vehicle elapsed-time accessor, so this
// stays grounded in the one route.PartialVehicle method
// (fleetUpdater.vehicleStopIDs) this package has confirmed the SDK
// exposes. When the labor dimension is disabled it degenerates to the
// nextmv sample fleet's empty vehicleData.Update.
type vehicleUpdater struct {
	stops          []internalStop
	matrices       geodistance.Matrices
	serviceMinutes []int
	enabled        bool
	dailyLimitMin  int
	weeklyLimitMin int
	penaltyBase    int
	chargedPenalty int
}

// Update implements route.VehicleUpdater.
func (v vehicleUpdater) Update(s route.PartialVehicle) (route.VehicleUpdater, int, bool) {
	if !v.enabled {
		return v, 0, false
	}

	elapsed := v.elapsedMinutes(s)
	limit := v.softLimitMinutes()
	penalty := laborPenalty(elapsed, limit, v.penaltyBase)

	next := v
	next.chargedPenalty = penalty
	delta := penalty - v.chargedPenalty
	return next, delta, delta != 0
}

// elapsedMinutes replays the vehicle's current partial route through the
// same distance/time matrix and service-duration arrays the router was
// built from, summing drive and service minutes depot-to-depot.
func (v vehicleUpdater) elapsedMinutes(s route.PartialVehicle) int {
	prevNode := 0
	total := 0
	for _, idx := range s.Route() {
		if idx < 0 || idx >= len(v.stops) {
			continue
		}
		node := v.stops[idx].nodeIndex
		total += v.matrices.TimeMin[prevNode][node] + v.serviceMinutes[node]
		prevNode = node
	}
	total += v.matrices.TimeMin[prevNode][0]
	return total
}

// softLimitMinutes is min(remaining daily, remaining weekly), per
// §4.4.3; a non-positive bound means that dimension is not constrained.
func (v vehicleUpdater) softLimitMinutes() int {
	limit := v.dailyLimitMin
	if v.weeklyLimitMin > 0 && (limit <= 0 || v.weeklyLimitMin < limit) {
		limit = v.weeklyLimitMin
	}
	return limit
}

// laborPenalty charges §4.4.3's overage penalty:
//
//	P = penaltyBase · max(1, overage_hours)
//
// with partial overage hours rounded up. Engine.Solve passes the largest
// vehicle fixed cost as penaltyBase; route distance does not enter it.
func laborPenalty(elapsedMin, limitMin, penaltyBase int) int {
	if limitMin <= 0 {
		return 0
	}
	overage := elapsedMin - limitMin
	if overage <= 0 {
		return 0
	}
	overageHours := (overage + 59) / 60
	if overageHours < 1 {
		overageHours = 1
	}
	return penaltyBase * overageHours
}

// fleetUpdater implements route.PlanUpdater, penalizing the plan's
// objective value whenever both alternate stops of a two-window shipment
// are assigned simultaneously. See stops.go's internalStop doc comment
// for why two-window shipments are modeled as alternate stop pairs.
type fleetUpdater struct {
	stopIDs     []string // index-aligned with the router's own stop slice
	alternates  []alternatePair
	penaltyPaid map[int]bool // shipmentNodeIndex -> already charged this round
}

func newFleetUpdater(stopIDs []string, alternates []alternatePair) fleetUpdater {
	return fleetUpdater{stopIDs: stopIDs, alternates: alternates, penaltyPaid: make(map[int]bool, len(alternates))}
}

// Update implements route.PlanUpdater.
func (f fleetUpdater) Update(p route.PartialPlan, vehicles []route.PartialVehicle) (route.PlanUpdater, int, bool) {
	if len(f.alternates) == 0 {
		return f, 0, false
	}

	assigned := make(map[string]bool)
	for _, v := range vehicles {
		for _, stopID := range f.vehicleStopIDs(v) {
			assigned[stopID] = true
		}
	}

	delta := 0
	next := fleetUpdater{stopIDs: f.stopIDs, alternates: f.alternates, penaltyPaid: make(map[int]bool, len(f.alternates))}
	for _, pair := range f.alternates {
		bothAssigned := assigned[pair.stopIDs[0]] && assigned[pair.stopIDs[1]]
		if bothAssigned {
			next.penaltyPaid[pair.shipmentNodeIndex] = true
			if !f.penaltyPaid[pair.shipmentNodeIndex] {
				delta += twoWindowPenalty
			}
		}
	}
	return next, delta, delta != 0 || len(f.penaltyPaid) != len(next.penaltyPaid)
}

// vehicleStopIDs resolves the stop IDs a partial vehicle currently
// serves. PartialVehicle.Route() returns indices into the original stop
// slice handed to route.NewRouter, exactly as the nextmv sample fleet's
// own SizeClassificationConstraint.Violated indexes into its captured
// stops slice.
func (f fleetUpdater) vehicleStopIDs(v route.PartialVehicle) []string {
	indices := v.Route()
	ids := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(f.stopIDs) {
			ids = append(ids, f.stopIDs[idx])
		}
	}
	return ids
}

// toAssignment converts the router's solved Plan into the package's own
// Assignment type, so nothing downstream needs route.Plan's shape.
func toAssignment(plan route.Plan, stops []internalStop, departure time.Time) Assignment {
	byID := make(map[string]internalStop, len(stops))
	for _, s := range stops {
		byID[s.id] = s
	}

	assignedShipments := make(map[int]bool, len(stops))
	routes := make([]VehicleRoute, 0, len(plan.Vehicles))
	for _, v := range plan.Vehicles {
		vr := VehicleRoute{VehicleID: v.ID}
		for _, stop := range v.Route {
			s, ok := byID[stop.ID]
			if !ok {
				continue
			}
			assignedShipments[s.nodeIndex] = true
			vr.Stops = append(vr.Stops, VisitedStop{
				NodeIndex:        s.nodeIndex,
				ArrivalOffsetMin: int(stop.EstimatedArrival.Sub(departure).Minutes()),
			})
		}
		if len(vr.Stops) > 0 {
			routes = append(routes, vr)
		}
	}

	var unassigned []int
	for _, s := range stops {
		if !assignedShipments[s.nodeIndex] {
			unassigned = append(unassigned, s.nodeIndex)
		}
	}

	return Assignment{Routes: routes, Unassigned: dedupInts(unassigned)}
}

func dedupInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
