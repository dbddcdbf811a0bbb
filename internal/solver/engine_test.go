package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldroute/internal/domain"
	"coldroute/internal/planmodel"
)

// TestSolveSingleShipmentHappyPath exercises the real route.NewRouter/
// route.Windows path against SPEC_FULL.md §8 scenario S1: one vehicle, one
// STRICT shipment whose window is reachable from the depot. It guards
// against stops.go's window construction regressing (wrong route.Window
// field names, or a stop window anchored to a different calendar day than
// the vehicle's shift) the way valuefunc_test.go alone could not, since
// that file never drives a real router.
func TestSolveSingleShipmentHappyPath(t *testing.T) {
	depot := domain.Depot{ID: "D1", Lat: 25.033, Lon: 121.565, Window: domain.TimeWindow{Start: 0, End: 1439}}
	vehicles := []domain.Vehicle{
		{ID: "V1", CapacityWeight: 1000, CapacityVolume: 10, Insulation: 0.05, DoorCoefficient: 0.8,
			Curtain: true, CoolingRate: -2.5, Available: true},
	}
	shipments := []domain.Shipment{
		{ID: "S1", Lat: 25.050, Lon: 121.580, Weight: 100, Volume: 1, ServiceMinutes: 15,
			Windows: []domain.TimeWindow{{Start: 8 * 60, End: 10 * 60}}, TempCeiling: 5,
			SLA: domain.SLAStrict, Priority: 100, Status: domain.ShipmentPending},
	}

	model := planmodel.Build(depot, vehicles, shipments, planmodel.DefaultConfig())
	departure := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)

	engine := New(Config{TimeLimit: 2 * time.Second, ExpansionLimit: 1})
	assignment, err := engine.Solve(context.Background(), model, departure, MinimizeVehicles)
	require.NoError(t, err)

	require.Empty(t, assignment.Unassigned, "S1's shipment is reachable within its window and must not be dropped")
	require.Len(t, assignment.Routes, 1)
	route := assignment.Routes[0]
	assert.Equal(t, "V1", route.VehicleID)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, 1, route.Stops[0].NodeIndex)
	// Arrival must land inside the shipment's 08:00-10:00 window, not
	// before year-1-anchored windows made every stop unreachable.
	assert.GreaterOrEqual(t, route.Stops[0].ArrivalOffsetMin, 0)
	assert.LessOrEqual(t, route.Stops[0].ArrivalOffsetMin, 2*60)
}
