package planassembler

import (
	"coldroute/internal/domain"
	"coldroute/internal/planmodel"
	"coldroute/internal/thermo"
)

// diagnose implements step 4 of §4.5: classify why nodeIndex was not
// placed on any route. Each available vehicle is tried in isolation, as a
// single-stop depot round trip, to tell apart a structural constraint
// (this shipment cannot be served by anything in the fleet) from ordinary
// combinatorial pressure (it could be served, just not alongside
// everything else the solver also had to place).
func diagnose(model planmodel.Model, nodeIndex int, cfg Config) domain.UnassignedShipment {
	shipment := model.Shipments[nodeIndex]

	var (
		reasons           []domain.UnassignedDiagnostic
		capacityFits      bool
		anyWindowReachable bool
		anyTempFeasible   bool
	)

	for _, vehicle := range model.Vehicles {
		if fitsCapacity(vehicle, shipment) {
			capacityFits = true
		}

		driveMin := float64(model.Matrices.TimeMin[domain.DepotNodeIndex][nodeIndex])
		if windowReachable(model, nodeIndex, driveMin, cfg) {
			anyWindowReachable = true
		}

		if tempFeasible(vehicle, shipment, driveMin, cfg) {
			anyTempFeasible = true
		}
	}

	if !capacityFits {
		reasons = append(reasons, domain.DiagCapacityOrRouting)
	}
	if !anyWindowReachable {
		reasons = append(reasons, domain.DiagTimeWindow)
	}
	if !anyTempFeasible {
		reasons = append(reasons, domain.DiagTemperature)
	}
	if shipment.SLA == domain.SLAStrict && len(reasons) == 0 {
		// No single-vehicle structural cause found: this STRICT shipment
		// was dropped purely by competition with other STRICT shipments
		// for the same fleet capacity/time budget.
		reasons = append(reasons, domain.DiagStrictSLA)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, domain.DiagCapacityOrRouting)
	}

	diag := domain.UnassignedShipment{
		ShipmentID:    shipment.ID,
		LikelyReasons: reasons,
	}
	if contains(reasons, domain.DiagTemperature) {
		diag.Parameter = "predicted_arrival_temp_c"
		diag.ConstraintValue = shipment.TempCeiling
	}
	return diag
}

func fitsCapacity(vehicle domain.Vehicle, shipment domain.Shipment) bool {
	return shipment.Weight <= vehicle.CapacityWeight && shipment.Volume <= vehicle.CapacityVolume
}

// windowReachable reports whether a direct depot departure could land
// inside one of the shipment's windows, waiting for a window to open when
// it arrives early, and ignoring every other stop the vehicle might also
// need to serve.
func windowReachable(model planmodel.Model, nodeIndex int, driveMin float64, cfg Config) bool {
	departureMinuteOfDay := cfg.Departure.Hour()*60 + cfg.Departure.Minute()
	arrival := departureMinuteOfDay + int(driveMin)
	for _, w := range model.Windows[nodeIndex] {
		start := arrival
		if start < w.Start {
			start = w.Start
		}
		if w.Contains(start, model.ServiceMinutes[nodeIndex]) {
			return true
		}
	}
	return false
}

// tempFeasible replays the tracker over the single depot->shipment leg a
// vehicle would drive if it served nothing else, using the job's ambient
// and initial cargo temperatures.
func tempFeasible(vehicle domain.Vehicle, shipment domain.Shipment, driveMin float64, cfg Config) bool {
	profile := thermo.VehicleProfile{
		Insulation:      vehicle.Insulation,
		DoorCoefficient: vehicle.DoorCoefficient,
		Curtain:         vehicle.Curtain,
		CoolingRate:     vehicle.CoolingRate,
	}
	legs := []thermo.Leg{{
		ShipmentID:     shipment.ID,
		DriveMinutes:   driveMin,
		ServiceMinutes: float64(shipment.ServiceMinutes),
		TempCeiling:    shipment.TempCeiling,
	}}
	result := thermo.Track(legs, profile, cfg.InitialCargoTemp, cfg.AmbientTemp)
	return result.IsFeasible
}

func contains(reasons []domain.UnassignedDiagnostic, target domain.UnassignedDiagnostic) bool {
	for _, r := range reasons {
		if r == target {
			return true
		}
	}
	return false
}
