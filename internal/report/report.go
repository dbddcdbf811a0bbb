// Package report renders the violations/plan summary described in
// SPEC_FULL.md §6 ("Report export") as PDF (maroto) and Excel (excelize)
// documents, re-theming the donor report-svc's generator package from a
// flow-network simulation domain onto cold-chain routing plans.
package report

import (
	"fmt"
	"time"

	"coldroute/internal/domain"
)

// TemperatureViolation is one stop whose predicted arrival temperature
// breached its shipment's ceiling, as surfaced by the violations report
// endpoint in SPEC_FULL.md §6.
type TemperatureViolation struct {
	RouteID              string
	ShipmentID           string
	SLA                  domain.SLATier
	PredictedArrivalTemp float64
	TempCeiling          float64
	OvershootC           float64
}

// Data bundles everything a generator needs to render one job's report,
// re-themed from the donor's ReportData (Type/Options/Graph/FlowResult)
// onto a completed planning Job.
type Data struct {
	JobID       string
	PlanDate    time.Time
	GeneratedAt time.Time
	CompanyName string

	Summary    domain.PlanSummary
	Routes     []domain.Route
	Violations []TemperatureViolation
	Unassigned []domain.UnassignedShipment
}

// BuildData assembles Data from a completed job's routes and summary,
// deriving the violations list the way the orchestrator's plan assembler
// already flagged infeasible stops (SPEC_FULL.md §4.5 step 3). shipments
// supplies each shipment's SLA tier and temp ceiling for annotating a
// violating stop; it is typically the same snapshot the job solved over.
func BuildData(jobID string, planDate time.Time, companyName string, summary domain.PlanSummary, routes []domain.Route, shipments []domain.Shipment) Data {
	byID := make(map[string]domain.Shipment, len(shipments))
	for _, s := range shipments {
		byID[s.ID] = s
	}

	data := Data{
		JobID:       jobID,
		PlanDate:    planDate,
		GeneratedAt: time.Now(),
		CompanyName: companyName,
		Summary:     summary,
		Routes:      routes,
		Unassigned:  summary.Unassigned,
	}

	for _, route := range routes {
		for _, stop := range route.Stops {
			if stop.Feasible {
				continue
			}
			shipment := byID[stop.ShipmentID]
			data.Violations = append(data.Violations, TemperatureViolation{
				RouteID:              route.ID,
				ShipmentID:           stop.ShipmentID,
				SLA:                  shipment.SLA,
				PredictedArrivalTemp: stop.PredictedArrivalTemp,
				TempCeiling:          shipment.TempCeiling,
				OvershootC:           stop.PredictedArrivalTemp - shipment.TempCeiling,
			})
		}
	}
	return data
}

// FormatFloat matches the donor BaseGenerator's fixed-precision helper.
func FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatTimestamp matches the donor BaseGenerator's timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
