package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldroute/internal/domain"
	"coldroute/internal/planmodel"
	"coldroute/internal/solver"
)

func testModel() planmodel.Model {
	return planmodel.Model{
		Nodes: []domain.Node{
			{Index: 0, Kind: domain.NodeDepot},
			{Index: 1, Kind: domain.NodePickup, ShipmentID: "S1"},
		},
		WeightDemand: []int{0, 10},
		VolumeDemand: []int{0, 5},
		Vehicles:     []domain.Vehicle{{ID: "V1"}},
	}
}

func TestAssignmentCacheSetGetRoundTrips(t *testing.T) {
	mem := newMemoryCache(Options{})
	defer mem.Close()
	ac := NewAssignmentCache(mem, 5*time.Minute)

	ctx := context.Background()
	model := testModel()
	assignment := solver.Assignment{
		Routes: []solver.VehicleRoute{{VehicleID: "V1", Stops: []solver.VisitedStop{{NodeIndex: 1, ArrivalOffsetMin: 30}}}},
	}

	require.NoError(t, ac.Set(ctx, "D1", model, solver.MinimizeVehicles, assignment))

	got, found, err := ac.Get(ctx, "D1", model, solver.MinimizeVehicles)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, assignment, got)
}

func TestAssignmentCacheMissesOnDifferentStrategy(t *testing.T) {
	mem := newMemoryCache(Options{})
	defer mem.Close()
	ac := NewAssignmentCache(mem, 5*time.Minute)

	ctx := context.Background()
	model := testModel()
	require.NoError(t, ac.Set(ctx, "D1", model, solver.MinimizeVehicles, solver.Assignment{}))

	_, found, err := ac.Get(ctx, "D1", model, solver.MinimizeDistance)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAssignmentCacheInvalidateDepotDropsAllStrategies(t *testing.T) {
	mem := newMemoryCache(Options{})
	defer mem.Close()
	ac := NewAssignmentCache(mem, 5*time.Minute)

	ctx := context.Background()
	model := testModel()
	require.NoError(t, ac.Set(ctx, "D1", model, solver.MinimizeVehicles, solver.Assignment{}))
	require.NoError(t, ac.Set(ctx, "D1", model, solver.MinimizeDistance, solver.Assignment{}))

	n, err := ac.InvalidateDepot(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, found, err := ac.Get(ctx, "D1", model, solver.MinimizeVehicles)
	require.NoError(t, err)
	assert.False(t, found)
}
