package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelGenerator renders a Data as a multi-sheet workbook (Summary,
// Violations, Unassigned, one sheet per route), grounded on the donor
// report-svc generator's excelize wiring (NewFile/NewSheet/SetCellValue,
// header style via NewStyle).
type ExcelGenerator struct{}

// NewExcelGenerator builds an ExcelGenerator.
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate renders data as an .xlsx workbook and returns its bytes.
func (g *ExcelGenerator) Generate(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2C3E50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("build header style: %w", err)
	}

	g.writeSummarySheet(f, data, headerStyle)
	g.writeViolationsSheet(f, data, headerStyle)
	g.writeUnassignedSheet(f, data, headerStyle)
	g.writeRouteSheets(f, data, headerStyle)

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummarySheet(f *excelize.File, data Data, headerStyle int) {
	const sheet = "Summary"
	f.NewSheet(sheet)

	rows := [][2]string{
		{"Job ID", data.JobID},
		{"Plan date", data.PlanDate.Format("2006-01-02")},
		{"Generated at", FormatTimestamp(data.GeneratedAt)},
		{"Vehicles used", fmt.Sprintf("%d", data.Summary.VehiclesUsed)},
		{"Total distance (m)", FormatFloat(data.Summary.TotalDistanceM, 1)},
		{"Total duration (min)", FormatFloat(data.Summary.TotalDurationMin, 1)},
		{"Shipments assigned", fmt.Sprintf("%d", data.Summary.ShipmentsAssigned)},
		{"Shipments unassigned", fmt.Sprintf("%d", data.Summary.ShipmentsUnassigned)},
		{"All feasible", fmt.Sprintf("%t", data.Summary.AllFeasible)},
	}
	for i, row := range rows {
		r := i + 1
		f.SetCellValue(sheet, cellAddr("A", r), row[0])
		f.SetCellValue(sheet, cellAddr("B", r), row[1])
	}
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	f.SetColWidth(sheet, "A", "B", 24)
}

func (g *ExcelGenerator) writeViolationsSheet(f *excelize.File, data Data, headerStyle int) {
	const sheet = "Violations"
	f.NewSheet(sheet)

	headers := []string{"Route", "Shipment", "SLA", "Predicted °C", "Ceiling °C", "Overshoot °C"}
	for i, h := range headers {
		cell := cellByIndex(i, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for i, v := range data.Violations {
		row := i + 2
		f.SetCellValue(sheet, cellAddr("A", row), v.RouteID)
		f.SetCellValue(sheet, cellAddr("B", row), v.ShipmentID)
		f.SetCellValue(sheet, cellAddr("C", row), string(v.SLA))
		f.SetCellValue(sheet, cellAddr("D", row), v.PredictedArrivalTemp)
		f.SetCellValue(sheet, cellAddr("E", row), v.TempCeiling)
		f.SetCellValue(sheet, cellAddr("F", row), v.OvershootC)
	}
	f.SetColWidth(sheet, "A", "F", 16)
}

func (g *ExcelGenerator) writeUnassignedSheet(f *excelize.File, data Data, headerStyle int) {
	const sheet = "Unassigned"
	f.NewSheet(sheet)

	headers := []string{"Shipment", "Likely reasons", "Parameter", "Current value", "Constraint value"}
	for i, h := range headers {
		cell := cellByIndex(i, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for i, u := range data.Unassigned {
		row := i + 2
		reasons := ""
		for j, r := range u.LikelyReasons {
			if j > 0 {
				reasons += ", "
			}
			reasons += string(r)
		}
		f.SetCellValue(sheet, cellAddr("A", row), u.ShipmentID)
		f.SetCellValue(sheet, cellAddr("B", row), reasons)
		f.SetCellValue(sheet, cellAddr("C", row), u.Parameter)
		f.SetCellValue(sheet, cellAddr("D", row), u.CurrentValue)
		f.SetCellValue(sheet, cellAddr("E", row), u.ConstraintValue)
	}
	f.SetColWidth(sheet, "A", "E", 20)
}

func (g *ExcelGenerator) writeRouteSheets(f *excelize.File, data Data, headerStyle int) {
	for i, route := range data.Routes {
		sheet := fmt.Sprintf("Route %d", i+1)
		f.NewSheet(sheet)

		f.SetCellValue(sheet, "A1", fmt.Sprintf("Vehicle %s", route.VehicleID))
		headers := []string{"Seq", "Shipment", "Arrival", "Departure", "Transit rise", "Service rise", "Cooling applied", "Predicted °C", "Feasible"}
		for j, h := range headers {
			cell := cellByIndex(j, 2)
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
		for j, stop := range route.Stops {
			row := j + 3
			f.SetCellValue(sheet, cellAddr("A", row), stop.Sequence)
			f.SetCellValue(sheet, cellAddr("B", row), stop.ShipmentID)
			f.SetCellValue(sheet, cellAddr("C", row), stop.ArrivalTime.Format("2006-01-02 15:04"))
			f.SetCellValue(sheet, cellAddr("D", row), stop.DepartureTime.Format("2006-01-02 15:04"))
			f.SetCellValue(sheet, cellAddr("E", row), stop.TransitRise)
			f.SetCellValue(sheet, cellAddr("F", row), stop.ServiceRise)
			f.SetCellValue(sheet, cellAddr("G", row), stop.CoolingApplied)
			f.SetCellValue(sheet, cellAddr("H", row), stop.PredictedArrivalTemp)
			f.SetCellValue(sheet, cellAddr("I", row), stop.Feasible)
		}
		f.SetColWidth(sheet, "A", "I", 16)
	}
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// cellByIndex converts a zero-based column index to its A1 address,
// matching the donor generator's ColName helper (0 -> A, 25 -> Z, 26 -> AA).
func cellByIndex(colIndex, row int) string {
	name := ""
	for {
		name = string(rune('A'+colIndex%26)) + name
		colIndex = colIndex/26 - 1
		if colIndex < 0 {
			break
		}
	}
	return fmt.Sprintf("%s%d", name, row)
}
