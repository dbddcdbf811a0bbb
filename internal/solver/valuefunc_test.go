package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coldroute/internal/geodistance"
)

func TestLaborPenaltyNoOverageIsZero(t *testing.T) {
	assert.Equal(t, 0, laborPenalty(400, 480, 100_000))
}

func TestLaborPenaltyChargesWholeOverageHours(t *testing.T) {
	// 90 minutes over an 8-hour (480 min) limit rounds up to 2 hours.
	assert.Equal(t, 200_000, laborPenalty(480+90, 480, 100_000))
}

func TestLaborPenaltyDisabledWhenLimitIsZero(t *testing.T) {
	assert.Equal(t, 0, laborPenalty(10_000, 0, 100_000))
}

func TestVehicleUpdaterElapsedMinutesSumsDriveAndService(t *testing.T) {
	matrices := geodistance.Matrices{
		DistanceM: [][]int{{0, 1000, 2000}, {1000, 0, 1500}, {2000, 1500, 0}},
		TimeMin:   [][]int{{0, 10, 20}, {10, 0, 15}, {20, 15, 0}},
	}
	u := vehicleUpdater{
		stops:          []internalStop{{id: "s1", nodeIndex: 1}, {id: "s2", nodeIndex: 2}},
		matrices:       matrices,
		serviceMinutes: []int{0, 5, 8},
	}
	elapsed := u.elapsedMinutes(fakePartialVehicle{route: []int{0, 1}})
	// depot->node1 (10) + service(5) + node1->node2 (15) + service(8) + node2->depot (20)
	assert.Equal(t, 58, elapsed)
}

type fakePartialVehicle struct{ route []int }

func (f fakePartialVehicle) Route() []int { return f.route }
