package thermo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioS1Vehicle mirrors SPEC_FULL.md §8 scenario S1.
func scenarioS1Vehicle() VehicleProfile {
	return VehicleProfile{
		Insulation:      0.05,
		DoorCoefficient: 0.8,
		Curtain:         true,
		CoolingRate:     -2.5,
	}
}

func TestTrackSingleStopHappyPath(t *testing.T) {
	vehicle := scenarioS1Vehicle()
	legs := []Leg{
		{ShipmentID: "S1", DriveMinutes: 10, ServiceMinutes: 15, TempCeiling: 5},
	}

	result := Track(legs, vehicle, -5, 30)

	require.Len(t, result.Stops, 1)
	stop := result.Stops[0]
	assert.True(t, stop.Feasible)
	assert.True(t, result.IsFeasible)

	driveHours := 10.0 / 60.0
	wantTransitRise := driveHours * (30 - (-5)) * 0.05
	wantCooling := driveHours * -2.5
	wantArrival := -5 + wantTransitRise + wantCooling
	assert.InDelta(t, wantArrival, stop.ArrivalTemp, 1e-9)

	serviceHours := 15.0 / 60.0
	wantServiceRise := serviceHours * 0.8 * 0.5 // curtain halves the coefficient
	wantDeparture := wantArrival + wantServiceRise
	assert.InDelta(t, wantDeparture, stop.DepartureTemp, 1e-9)
}

func TestTrackNoCurtainDoublesServiceRise(t *testing.T) {
	withCurtain := scenarioS1Vehicle()
	withoutCurtain := withCurtain
	withoutCurtain.Curtain = false

	legs := []Leg{{ShipmentID: "S1", DriveMinutes: 0, ServiceMinutes: 30, TempCeiling: 100}}

	rCurtain := Track(legs, withCurtain, 0, 0)
	rNoCurtain := Track(legs, withoutCurtain, 0, 0)

	assert.InDelta(t, rCurtain.Stops[0].ServiceRise*2, rNoCurtain.Stops[0].ServiceRise, 1e-9)
}

func TestTrackTemperatureBreachMarksInfeasible(t *testing.T) {
	// Mirrors scenario S5: hot ambient, weak insulation, no active cooling.
	vehicle := VehicleProfile{Insulation: 0.10, DoorCoefficient: 0.8, Curtain: false, CoolingRate: 0}
	legs := []Leg{{ShipmentID: "S1", DriveMinutes: 90, ServiceMinutes: 10, TempCeiling: 0}}

	result := Track(legs, vehicle, -5, 40)

	assert.False(t, result.Stops[0].Feasible)
	assert.False(t, result.IsFeasible)
	assert.Greater(t, result.Stops[0].ArrivalTemp, 0.0)
}

func TestTrackRouteFeasibleIsConjunctionOfStops(t *testing.T) {
	vehicle := scenarioS1Vehicle()
	legs := []Leg{
		{ShipmentID: "S1", DriveMinutes: 5, ServiceMinutes: 5, TempCeiling: 5},
		{ShipmentID: "S2", DriveMinutes: 5, ServiceMinutes: 5, TempCeiling: -100},
	}

	result := Track(legs, vehicle, -5, 30)

	require.Len(t, result.Stops, 2)
	assert.True(t, result.Stops[0].Feasible)
	assert.False(t, result.Stops[1].Feasible)
	assert.False(t, result.IsFeasible)
}

func TestTrackIsDeterministic(t *testing.T) {
	vehicle := scenarioS1Vehicle()
	legs := []Leg{
		{ShipmentID: "S1", DriveMinutes: 12, ServiceMinutes: 15, TempCeiling: 5},
		{ShipmentID: "S2", DriveMinutes: 20, ServiceMinutes: 10, TempCeiling: 5},
	}

	first := Track(legs, vehicle, -5, 30)
	second := Track(legs, vehicle, -5, 30)

	assert.Equal(t, first, second)
}
