package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldroute/internal/config"
	"coldroute/internal/domain"
)

func sampleData() Data {
	now := time.Date(2026, 7, 31, 8, 0, 0, 0, time.UTC)
	summary := domain.PlanSummary{
		TotalDistanceM:      4200,
		TotalDurationMin:    35,
		VehiclesUsed:        1,
		ShipmentsAssigned:   1,
		ShipmentsUnassigned: 1,
		AllFeasible:         false,
		Unassigned: []domain.UnassignedShipment{
			{ShipmentID: "S2", LikelyReasons: []domain.UnassignedDiagnostic{domain.DiagTimeWindow}},
		},
	}
	routes := []domain.Route{{
		ID:        "R1",
		VehicleID: "V1",
		Feasible:  false,
		Stops: []domain.Stop{{
			Sequence:             1,
			ShipmentID:           "S1",
			ArrivalTime:          now,
			DepartureTime:        now.Add(15 * time.Minute),
			PredictedArrivalTemp: 8,
			Feasible:             false,
		}},
	}}
	shipments := []domain.Shipment{
		{ID: "S1", SLA: domain.SLAStrict, TempCeiling: 5},
		{ID: "S2", SLA: domain.SLAStandard, TempCeiling: 5},
	}
	return BuildData("job-1", now, "Cold Chain Logistics", summary, routes, shipments)
}

func TestBuildDataDerivesViolations(t *testing.T) {
	data := sampleData()

	require.Len(t, data.Violations, 1)
	v := data.Violations[0]
	assert.Equal(t, "S1", v.ShipmentID)
	assert.Equal(t, domain.SLAStrict, v.SLA)
	assert.InDelta(t, 3.0, v.OvershootC, 1e-9)
	require.Len(t, data.Unassigned, 1)
	assert.Equal(t, "S2", data.Unassigned[0].ShipmentID)
}

func TestPDFGeneratorProducesNonEmptyDocument(t *testing.T) {
	g := NewPDFGenerator(config.PDFConfig{
		PageSize: "A4", Orientation: "portrait",
		MarginTop: 15, MarginBottom: 15, MarginLeft: 15, MarginRight: 15,
	})
	out, err := g.Generate(sampleData())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestExcelGeneratorProducesValidWorkbook(t *testing.T) {
	g := NewExcelGenerator()
	out, err := g.Generate(sampleData())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// .xlsx files are zip archives; the local file header signature is PK.
	assert.Equal(t, "PK", string(out[:2]))
}

func TestCellByIndexMatchesSpreadsheetColumnNaming(t *testing.T) {
	assert.Equal(t, "A1", cellByIndex(0, 1))
	assert.Equal(t, "Z1", cellByIndex(25, 1))
	assert.Equal(t, "AA1", cellByIndex(26, 1))
}
