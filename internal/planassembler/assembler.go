// Package planassembler turns a raw solver assignment into the
// temperature-annotated, diagnosed plan SPEC_FULL.md §4.5 describes: it
// replays each vehicle's visit order through the thermodynamic tracker,
// classifies shipments the solver could not place, and rolls both up
// into a domain.PlanSummary.
package planassembler

import (
	"time"

	"coldroute/internal/domain"
	"coldroute/internal/planmodel"
	"coldroute/internal/solver"
	"coldroute/internal/thermo"
)

// Config carries the run parameters that come from the plan request
// rather than from the model or the fleet itself.
type Config struct {
	Departure         time.Time
	AmbientTemp       float64
	InitialCargoTemp  float64
}

// Assemble converts a solver.Assignment into ordered, temperature-checked
// routes plus diagnosed unassigned shipments, per SPEC_FULL.md §4.5's
// five-step post-processing sequence.
func Assemble(model planmodel.Model, assignment solver.Assignment, cfg Config) ([]domain.Route, []domain.UnassignedShipment) {
	vehiclesByID := make(map[string]domain.Vehicle, len(model.Vehicles))
	for _, v := range model.Vehicles {
		vehiclesByID[v.ID] = v
	}

	routes := make([]domain.Route, 0, len(assignment.Routes))
	for _, vr := range assignment.Routes {
		vehicle, ok := vehiclesByID[vr.VehicleID]
		if !ok {
			continue
		}
		routes = append(routes, buildRoute(model, vr, vehicle, cfg))
	}

	unassigned := make([]domain.UnassignedShipment, 0, len(assignment.Unassigned))
	for _, nodeIndex := range assignment.Unassigned {
		unassigned = append(unassigned, diagnose(model, nodeIndex, cfg))
	}

	return routes, unassigned
}

// buildRoute replays one vehicle's visit order: steps 1-3 of §4.5 (extract
// sequence, compute arrival/departure times, run the tracker).
func buildRoute(model planmodel.Model, vr solver.VehicleRoute, vehicle domain.Vehicle, cfg Config) domain.Route {
	legs := make([]thermo.Leg, 0, len(vr.Stops))
	prevIndex := domain.DepotNodeIndex
	totalDistanceM := 0.0

	for _, stop := range vr.Stops {
		driveMin := float64(model.Matrices.TimeMin[prevIndex][stop.NodeIndex])
		totalDistanceM += float64(model.Matrices.DistanceM[prevIndex][stop.NodeIndex])

		shipment := model.Shipments[stop.NodeIndex]
		legs = append(legs, thermo.Leg{
			ShipmentID:     shipment.ID,
			DriveMinutes:   driveMin,
			ServiceMinutes: float64(model.ServiceMinutes[stop.NodeIndex]),
			TempCeiling:    shipment.TempCeiling,
		})
		prevIndex = stop.NodeIndex
	}
	// Return leg back to the depot, charged to distance/duration but not
	// to the tracker (no cargo is on board after the last delivery).
	totalDistanceM += float64(model.Matrices.DistanceM[prevIndex][domain.DepotNodeIndex])
	returnMin := float64(model.Matrices.TimeMin[prevIndex][domain.DepotNodeIndex])

	profile := thermo.VehicleProfile{
		Insulation:      vehicle.Insulation,
		DoorCoefficient: vehicle.DoorCoefficient,
		Curtain:         vehicle.Curtain,
		CoolingRate:     vehicle.CoolingRate,
	}
	result := thermo.Track(legs, profile, cfg.InitialCargoTemp, cfg.AmbientTemp)

	stops := make([]domain.Stop, len(vr.Stops))
	cursor := cfg.Departure
	for i, visited := range vr.Stops {
		arrival := cfg.Departure.Add(time.Duration(visited.ArrivalOffsetMin) * time.Minute)
		departure := arrival.Add(time.Duration(model.ServiceMinutes[visited.NodeIndex]) * time.Minute)
		tr := result.Stops[i]

		stops[i] = domain.Stop{
			Sequence:             i + 1,
			ShipmentID:           tr.ShipmentID,
			ArrivalTime:          arrival,
			DepartureTime:        departure,
			TransitRise:          tr.TransitRise,
			ServiceRise:          tr.ServiceRise,
			CoolingApplied:       tr.CoolingApplied,
			PredictedArrivalTemp: tr.ArrivalTemp,
			Feasible:             tr.Feasible,
		}
		cursor = departure
	}

	lastStopOffset := time.Duration(0)
	if len(vr.Stops) > 0 {
		lastStopOffset = cursor.Sub(cfg.Departure)
	}
	totalDurationMin := lastStopOffset.Minutes() + returnMin

	return domain.Route{
		VehicleID:        vehicle.ID,
		Stops:            stops,
		TotalDistanceM:   totalDistanceM,
		TotalDurationMin: totalDurationMin,
		InitialTemp:      cfg.InitialCargoTemp,
		FinalTemp:        result.FinalTemp,
		MaxTemp:          result.MaxTemp,
		Feasible:         result.IsFeasible,
	}
}
