// Package thermo implements the thermodynamic tracker: a pure function
// over a route sequence and vehicle parameters that predicts per-stop
// cargo temperature and decides route feasibility.
//
// # Thread Safety
//
// Track has no shared or package-level state; it is safe to call
// concurrently from any number of goroutines.
//
// # Determinism
//
// Track is a pure function of its inputs. Re-running it on the same leg
// sequence reproduces identical results, which is what the round-trip
// property in SPEC_FULL.md §8 relies on.
package thermo

// VehicleProfile carries the refrigeration characteristics that drive the
// transit/service temperature formulas.
type VehicleProfile struct {
	Insulation      float64 // K
	DoorCoefficient float64 // C
	Curtain         bool
	CoolingRate     float64 // R, °C/min, negative when active
}

// Leg is one drive-then-service segment of a route: the travel time to
// reach a stop, followed by the service time spent there.
type Leg struct {
	ShipmentID     string
	DriveMinutes   float64
	ServiceMinutes float64
	TempCeiling    float64
}

// StopResult is the thermodynamic outcome for a single stop.
type StopResult struct {
	ShipmentID           string
	TransitRise          float64
	CoolingApplied        float64
	ArrivalTemp          float64
	ServiceRise          float64
	DepartureTemp        float64
	Feasible             bool
}

// Result is the outcome for an entire route.
type Result struct {
	Stops       []StopResult
	FinalTemp   float64
	MaxTemp     float64
	IsFeasible  bool
}

// Track runs the tracker over legs, starting from initial cargo
// temperature initialTemp and ambient temperature ambientTemp.
//
// Per leg:
//
//	ΔT_drive = t_drive · (T_a − T_cur) · K
//	ΔT_cool  = t_drive · R                          (R is negative)
//	T_arr    = T_cur + ΔT_drive + ΔT_cool
//	ΔT_svc   = t_svc · C · (1 − 0.5·curtain)
//	T_dep    = T_arr + ΔT_svc
//
// Drive/service minutes are converted to hours before use; mixing minutes
// directly into these formulas produces order-of-magnitude errors.
func Track(legs []Leg, vehicle VehicleProfile, initialTemp, ambientTemp float64) Result {
	cur := initialTemp
	maxTemp := initialTemp
	stops := make([]StopResult, 0, len(legs))
	feasible := true

	curtainFactor := 1.0
	if vehicle.Curtain {
		curtainFactor = 0.5
	}

	for _, leg := range legs {
		driveHours := leg.DriveMinutes / 60.0
		serviceHours := leg.ServiceMinutes / 60.0

		transitRise := driveHours * (ambientTemp - cur) * vehicle.Insulation
		coolingApplied := driveHours * vehicle.CoolingRate
		arrivalTemp := cur + transitRise + coolingApplied

		serviceRise := serviceHours * vehicle.DoorCoefficient * curtainFactor
		departureTemp := arrivalTemp + serviceRise

		stopFeasible := arrivalTemp <= leg.TempCeiling
		if !stopFeasible {
			feasible = false
		}

		if arrivalTemp > maxTemp {
			maxTemp = arrivalTemp
		}
		if departureTemp > maxTemp {
			maxTemp = departureTemp
		}

		stops = append(stops, StopResult{
			ShipmentID:     leg.ShipmentID,
			TransitRise:    transitRise,
			CoolingApplied: coolingApplied,
			ArrivalTemp:    arrivalTemp,
			ServiceRise:    serviceRise,
			DepartureTemp:  departureTemp,
			Feasible:       stopFeasible,
		})

		cur = departureTemp
	}

	return Result{
		Stops:      stops,
		FinalTemp:  cur,
		MaxTemp:    maxTemp,
		IsFeasible: feasible,
	}
}
