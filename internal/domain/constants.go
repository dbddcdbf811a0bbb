// Package domain holds the core entity types shared across the cold-chain
// routing pipeline: depots, vehicles, shipments, nodes, routes, stops and
// jobs. Types here carry no behavior beyond small invariants and
// comparisons; the algorithms that operate on them live in sibling
// packages (geodistance, thermo, planmodel, solver, planassembler,
// orchestrator).
package domain

import "math"

// Epsilon is the tolerance used for floating point comparisons across the
// planning pipeline (temperatures, distances, demand sums).
const Epsilon = 1e-6

// FloatEquals reports whether a and b are equal within Epsilon.
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloatLessOrEqual reports whether a <= b within Epsilon tolerance.
func FloatLessOrEqual(a, b float64) bool {
	return a <= b+Epsilon
}

// DepotNodeIndex is the fixed node index reserved for the depot in any
// canonical model built by planmodel.Builder.
const DepotNodeIndex = 0
