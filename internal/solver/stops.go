package solver

import (
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/route"

	"coldroute/internal/planmodel"
)

// internalStop is one router-visible stop. A shipment with a single time
// window maps to exactly one internalStop; a shipment with two disjoint
// windows maps to two alternate internalStops (same nodeIndex, same
// demand, different window), realizing the "auxiliary boolean selector"
// SPEC_FULL.md §4.4 calls for when the underlying engine has no native
// disjunctive cumulative range.
type internalStop struct {
	id        string
	nodeIndex int
	window    route.Window
}

// alternatePair names the two stop IDs generated for one two-window
// shipment, so the plan-level value function (valuefunc.go) can detect
// and penalize the case where both got assigned.
type alternatePair struct {
	shipmentNodeIndex int
	stopIDs           [2]string
}

// windowMaxWait is passed as route.Window's own MaxWait field: -1 leaves
// pre-window wait time unbounded, matching §4.4.2's "wait time before the
// window opens is permitted", the same sentinel
// "Parcel Routing Techtalk/main.go"'s solver func uses by default.
const windowMaxWait = -1

// buildStops expands model's per-node window sets into router stops,
// returning the alternate pairs that need mutual-exclusion enforcement.
// departure anchors the minute-of-day windows to the plan's actual
// calendar date, the same date the vehicle shifts in engine.go are built
// from, so stop windows and vehicle shifts compare against the same clock.
func buildStops(model planmodel.Model, departure time.Time) ([]internalStop, []alternatePair) {
	var stops []internalStop
	var alternates []alternatePair

	for nodeIndex := 1; nodeIndex < len(model.Nodes); nodeIndex++ {
		windows := model.Windows[nodeIndex]
		shipmentID := model.Nodes[nodeIndex].ShipmentID

		switch len(windows) {
		case 0:
			// No window recorded: treat as open all day so the node is
			// still reachable; this should not occur for well-formed
			// shipments but keeps the builder total.
			stops = append(stops, internalStop{
				id:        shipmentID,
				nodeIndex: nodeIndex,
				window:    windowAt(departure, 0, 1439),
			})
		case 1:
			stops = append(stops, internalStop{
				id:        shipmentID,
				nodeIndex: nodeIndex,
				window:    windowAt(departure, windows[0].Start, windows[0].End),
			})
		default:
			idA := fmt.Sprintf("%s#w0", shipmentID)
			idB := fmt.Sprintf("%s#w1", shipmentID)
			stops = append(stops,
				internalStop{id: idA, nodeIndex: nodeIndex, window: windowAt(departure, windows[0].Start, windows[0].End)},
				internalStop{id: idB, nodeIndex: nodeIndex, window: windowAt(departure, windows[1].Start, windows[1].End)},
			)
			alternates = append(alternates, alternatePair{shipmentNodeIndex: nodeIndex, stopIDs: [2]string{idA, idB}})
		}
	}
	return stops, alternates
}

// windowAt builds a route.Window anchored to departure's own calendar day,
// so it compares correctly against the router's absolute-time shifts
// (engine.go builds those from the same departure value). route.Window
// embeds route.TimeWindow rather than exposing Start/End directly, per
// "Parcel Routing Techtalk/main.go"'s `route.Window{TimeWindow: ...,
// MaxWait: ...}` construction.
func windowAt(departure time.Time, startMinute, endMinute int) route.Window {
	day := time.Date(departure.Year(), departure.Month(), departure.Day(), 0, 0, 0, 0, departure.Location())
	return route.Window{
		TimeWindow: route.TimeWindow{
			Start: day.Add(time.Duration(startMinute) * time.Minute),
			End:   day.Add(time.Duration(endMinute) * time.Minute),
		},
		MaxWait: windowMaxWait,
	}
}
