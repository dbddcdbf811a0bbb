package planassembler

import "coldroute/internal/domain"

// Summarize implements step 5 of §4.5: roll routes and unassigned
// shipments up into the aggregate record attached to a completed job.
func Summarize(routes []domain.Route, unassigned []domain.UnassignedShipment) domain.PlanSummary {
	summary := domain.PlanSummary{
		VehiclesUsed:        len(routes),
		ShipmentsUnassigned: len(unassigned),
		AllFeasible:         true,
		Unassigned:          unassigned,
	}

	for _, route := range routes {
		summary.TotalDistanceM += route.TotalDistanceM
		summary.TotalDurationMin += route.TotalDurationMin
		summary.ShipmentsAssigned += len(route.Stops)
		summary.RouteIDs = append(summary.RouteIDs, route.ID)
		if !route.Feasible {
			summary.AllFeasible = false
		}
	}

	if len(unassigned) > 0 {
		summary.AllFeasible = false
	}

	return summary
}
