// Package planmodel normalizes a depot/vehicle/shipment snapshot into the
// canonical VRP model the solver engine consumes: nodes, distance/time
// matrices, demand arrays, time windows, service durations, fixed costs
// and disjunction penalties. All quantities are integers to suit
// integer-cost search.
package planmodel

import (
	"coldroute/internal/domain"
	"coldroute/internal/geodistance"
)

// Config carries the tunables named in SPEC_FULL.md §6's Configuration
// table that affect model construction.
type Config struct {
	AverageSpeedKMH      float64
	VehicleFixedCost     int
	InfeasibleCost       int
	TempViolationPenalty int
	LateDeliveryPenalty  int
}

// DefaultConfig mirrors the donor's config-default style: sane values a
// caller can override from koanf-loaded configuration.
func DefaultConfig() Config {
	return Config{
		AverageSpeedKMH:      geodistance.DefaultAverageSpeedKMH,
		VehicleFixedCost:     100_000,
		InfeasibleCost:       10_000_000,
		TempViolationPenalty: 50_000,
		LateDeliveryPenalty:  25_000,
	}
}

// Model is the canonical, solver-ready representation of one plan request.
type Model struct {
	Nodes               []domain.Node
	Coords              []geodistance.Coordinate // index-aligned with Nodes; Coords[0] is the depot
	Matrices            geodistance.Matrices
	WeightDemand        []int
	VolumeDemand        []int
	VehicleCapWeight    []int
	VehicleCapVolume    []int
	VehicleFixedCost    []int
	Windows             [][]domain.TimeWindow // per node, 1-2 windows; the depot holds its operating window
	ServiceMinutes      []int                 // per node; zero at depot
	DisjunctionPenalty  []int                 // per node, index-aligned with Nodes; zero at the depot
	PlanningHorizonEnd  int
	Shipments           []domain.Shipment // index-aligned with Nodes (index 0 unused)
	Vehicles            []domain.Vehicle
}

// Build assembles a Model from a depot, the available vehicle snapshot and
// the pending shipment snapshot. Shipments and vehicles must already be
// filtered to the job's eligible set (PENDING shipments, available
// vehicles) by the caller.
func Build(depot domain.Depot, vehicles []domain.Vehicle, shipments []domain.Shipment, cfg Config) Model {
	n := len(shipments) + 1
	nodes := make([]domain.Node, n)
	nodes[0] = domain.Node{Index: 0, Kind: domain.NodeDepot}

	coords := make([]geodistance.Coordinate, n)
	coords[0] = geodistance.Coordinate{Lat: depot.Lat, Lon: depot.Lon}

	weightDemand := make([]int, n)
	volumeDemand := make([]int, n)
	windows := make([][]domain.TimeWindow, n)
	serviceMinutes := make([]int, n)
	disjunction := make([]int, n)
	allShipments := make([]domain.Shipment, n)

	windows[0] = []domain.TimeWindow{depot.Window}

	for i, s := range shipments {
		idx := i + 1
		nodes[idx] = domain.Node{Index: idx, Kind: domain.NodePickup, ShipmentID: s.ID}
		coords[idx] = geodistance.Coordinate{Lat: s.Lat, Lon: s.Lon}
		weightDemand[idx] = int(s.Weight)
		volumeDemand[idx] = int(s.Volume)
		windows[idx] = s.Windows
		serviceMinutes[idx] = s.ServiceMinutes
		disjunction[idx] = disjunctionPenalty(s, cfg)
		allShipments[idx] = s
	}

	matrices := geodistance.BuildMatrices(coords, cfg.AverageSpeedKMH)

	capWeight := make([]int, len(vehicles))
	capVolume := make([]int, len(vehicles))
	fixedCost := make([]int, len(vehicles))
	for i, v := range vehicles {
		capWeight[i] = int(v.CapacityWeight)
		capVolume[i] = int(v.CapacityVolume)
		fixedCost[i] = vehicleFixedCost(v, cfg)
	}

	return Model{
		Nodes:              nodes,
		Coords:             coords,
		Matrices:           matrices,
		WeightDemand:       weightDemand,
		VolumeDemand:       volumeDemand,
		VehicleCapWeight:   capWeight,
		VehicleCapVolume:   capVolume,
		VehicleFixedCost:   fixedCost,
		Windows:            windows,
		ServiceMinutes:     serviceMinutes,
		DisjunctionPenalty: disjunction,
		PlanningHorizonEnd: depot.Window.End,
		Shipments:          allShipments,
		Vehicles:           vehicles,
	}
}

// vehicleFixedCost charges per-vehicle fixed cost per §4.3/§4.4: a flat
// cost large enough that an additional vehicle always dominates any
// distance saving (Level 1 of the lexicographic objective).
func vehicleFixedCost(v domain.Vehicle, cfg Config) int {
	if v.FixedCost > 0 {
		return v.FixedCost
	}
	return cfg.VehicleFixedCost
}

// disjunctionPenalty implements §4.3: STRICT shipments get a penalty that
// exceeds any feasible route cost (effectively disallowing the drop);
// STANDARD shipments get a finite penalty scaled by priority so
// higher-priority shipments resist being dropped.
func disjunctionPenalty(s domain.Shipment, cfg Config) int {
	if s.SLA == domain.SLAStrict {
		return cfg.InfeasibleCost
	}
	// Priority in [0,100]; scale so priority 100 costs ~10x priority 0,
	// never reaching the infeasible threshold reserved for STRICT.
	base := cfg.LateDeliveryPenalty
	scaled := base + base*s.Priority/10
	if scaled >= cfg.InfeasibleCost {
		scaled = cfg.InfeasibleCost - 1
	}
	return scaled
}
