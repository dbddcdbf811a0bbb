package planassembler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldroute/internal/domain"
	"coldroute/internal/planmodel"
	"coldroute/internal/solver"
)

func testModel() planmodel.Model {
	depot := domain.Depot{ID: "DEPOT", Lat: 0, Lon: 0, Window: domain.TimeWindow{Start: 0, End: 1440}}
	vehicles := []domain.Vehicle{
		{ID: "V1", CapacityWeight: 1000, CapacityVolume: 1000, Insulation: 0.01, DoorCoefficient: 0.5,
			CoolingRate: -0.05, MinTemp: -20, Available: true},
	}
	shipments := []domain.Shipment{
		{ID: "S1", Lat: 0, Lon: 0.05, Weight: 10, Volume: 10, ServiceMinutes: 10,
			Windows: []domain.TimeWindow{{Start: 0, End: 1440}}, TempCeiling: 8, SLA: domain.SLAStandard, Priority: 50},
		{ID: "S2", Lat: 0, Lon: 0.1, Weight: 5000, Volume: 5000, ServiceMinutes: 10,
			Windows: []domain.TimeWindow{{Start: 0, End: 1440}}, TempCeiling: 8, SLA: domain.SLAStrict, Priority: 90},
	}
	return planmodel.Build(depot, vehicles, shipments, planmodel.DefaultConfig())
}

func TestAssembleBuildsRouteWithTemperatureAnnotations(t *testing.T) {
	model := testModel()
	assignment := solver.Assignment{
		Routes: []solver.VehicleRoute{
			{VehicleID: "V1", Stops: []solver.VisitedStop{{NodeIndex: 1, ArrivalOffsetMin: 10}}},
		},
		Unassigned: []int{2},
	}
	cfg := Config{Departure: time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC), AmbientTemp: 25, InitialCargoTemp: 2}

	routes, unassigned := Assemble(model, assignment, cfg)

	require.Len(t, routes, 1)
	route := routes[0]
	assert.Equal(t, "V1", route.VehicleID)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, "S1", route.Stops[0].ShipmentID)
	assert.True(t, route.Stops[0].Feasible)
	assert.Greater(t, route.TotalDistanceM, 0.0)

	require.Len(t, unassigned, 1)
	assert.Equal(t, "S2", unassigned[0].ShipmentID)
	// S2 exceeds every vehicle's capacity in this fixture.
	assert.Contains(t, unassigned[0].LikelyReasons, domain.DiagCapacityOrRouting)
}

func TestSummarizeAggregatesAcrossRoutes(t *testing.T) {
	routes := []domain.Route{
		{ID: "R1", TotalDistanceM: 100, TotalDurationMin: 20, Feasible: true, Stops: []domain.Stop{{}, {}}},
		{ID: "R2", TotalDistanceM: 50, TotalDurationMin: 10, Feasible: false, Stops: []domain.Stop{{}}},
	}
	unassigned := []domain.UnassignedShipment{{ShipmentID: "S9"}}

	summary := Summarize(routes, unassigned)

	assert.Equal(t, 150.0, summary.TotalDistanceM)
	assert.Equal(t, 30.0, summary.TotalDurationMin)
	assert.Equal(t, 2, summary.VehiclesUsed)
	assert.Equal(t, 3, summary.ShipmentsAssigned)
	assert.Equal(t, 1, summary.ShipmentsUnassigned)
	assert.False(t, summary.AllFeasible)
	assert.Equal(t, []string{"R1", "R2"}, summary.RouteIDs)
}
