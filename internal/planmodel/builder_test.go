package planmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldroute/internal/domain"
)

func sampleDepot() domain.Depot {
	return domain.Depot{
		ID:     "D1",
		Lat:    25.033,
		Lon:    121.565,
		Window: domain.TimeWindow{Start: 0, End: 1439},
	}
}

func sampleVehicle() domain.Vehicle {
	return domain.Vehicle{
		ID:              "V1",
		CapacityWeight:  1000,
		CapacityVolume:  10,
		Insulation:      0.05,
		DoorCoefficient: 0.8,
		Curtain:         true,
		CoolingRate:     -2.5,
		Available:       true,
	}
}

func TestBuildNodeZeroIsDepot(t *testing.T) {
	shipment := domain.Shipment{ID: "S1", Lat: 25.05, Lon: 121.58, SLA: domain.SLAStrict}
	model := Build(sampleDepot(), []domain.Vehicle{sampleVehicle()}, []domain.Shipment{shipment}, DefaultConfig())

	require.Len(t, model.Nodes, 2)
	assert.Equal(t, domain.NodeDepot, model.Nodes[0].Kind)
	assert.Equal(t, domain.NodePickup, model.Nodes[1].Kind)
	assert.Equal(t, "S1", model.Nodes[1].ShipmentID)
}

func TestBuildMatricesZeroDiagonal(t *testing.T) {
	shipment := domain.Shipment{ID: "S1", Lat: 25.05, Lon: 121.58}
	model := Build(sampleDepot(), []domain.Vehicle{sampleVehicle()}, []domain.Shipment{shipment}, DefaultConfig())

	assert.Equal(t, 0, model.Matrices.DistanceM[0][0])
	assert.Equal(t, 0, model.Matrices.DistanceM[1][1])
	assert.Greater(t, model.Matrices.DistanceM[0][1], 0)
}

func TestBuildStrictShipmentGetsInfeasibleDisjunctionCost(t *testing.T) {
	cfg := DefaultConfig()
	strict := domain.Shipment{ID: "S1", SLA: domain.SLAStrict, Priority: 0}
	model := Build(sampleDepot(), []domain.Vehicle{sampleVehicle()}, []domain.Shipment{strict}, cfg)

	assert.Equal(t, cfg.InfeasibleCost, model.DisjunctionPenalty[1])
}

func TestBuildStandardShipmentPenaltyScalesWithPriority(t *testing.T) {
	cfg := DefaultConfig()
	low := domain.Shipment{ID: "S1", SLA: domain.SLAStandard, Priority: 0}
	high := domain.Shipment{ID: "S2", SLA: domain.SLAStandard, Priority: 100}
	model := Build(sampleDepot(), []domain.Vehicle{sampleVehicle()}, []domain.Shipment{low, high}, cfg)

	assert.Less(t, model.DisjunctionPenalty[1], model.DisjunctionPenalty[2])
	assert.Less(t, model.DisjunctionPenalty[2], cfg.InfeasibleCost)
}

func TestBuildVehicleFixedCostDefaultsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	v := sampleVehicle()
	v.FixedCost = 0
	model := Build(sampleDepot(), []domain.Vehicle{v}, nil, cfg)

	require.Len(t, model.VehicleFixedCost, 1)
	assert.Equal(t, cfg.VehicleFixedCost, model.VehicleFixedCost[0])
}
