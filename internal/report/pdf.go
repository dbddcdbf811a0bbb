package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"coldroute/internal/config"
)

var (
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}
	dangerColor    = &props.Color{Red: 231, Green: 76, Blue: 60}
	successColor   = &props.Color{Red: 39, Green: 174, Blue: 96}
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{Size: 22, Style: fontstyle.Bold, Align: align.Center, Color: headerBgColor}
	h2Style    = props.Text{Size: 15, Style: fontstyle.Bold, Color: headerBgColor, Top: 5}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}
	normalStyle = props.Text{Size: 10}
	boldStyle   = props.Text{Size: 10, Style: fontstyle.Bold}

	metricValueStyle = props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center, Color: primaryColor}
	metricLabelStyle = props.Text{Size: 9, Align: align.Center, Color: darkGrayColor}

	tableHeaderStyle     = &props.Cell{BackgroundColor: headerBgColor}
	tableHeaderTextStyle = props.Text{Size: 9, Style: fontstyle.Bold, Color: &props.Color{Red: 255, Green: 255, Blue: 255}, Align: align.Center}
	tableCellStyle       = &props.Cell{BorderType: border.Bottom, BorderColor: lightGrayColor}
	tableCellTextStyle   = props.Text{Size: 9, Align: align.Center}
)

// PDFGenerator renders a Data into the violations/plan summary PDF named
// in SPEC_FULL.md §6's "Report export", grounded on the donor report-svc
// generator's maroto wiring (config.NewBuilder + AddRow(col...) layout).
type PDFGenerator struct {
	cfg config.PDFConfig
}

// NewPDFGenerator builds a PDFGenerator from the process's report.pdf
// configuration block.
func NewPDFGenerator(cfg config.PDFConfig) *PDFGenerator {
	return &PDFGenerator{cfg: cfg}
}

// Generate renders data as a PDF document and returns its bytes.
func (g *PDFGenerator) Generate(data Data) ([]byte, error) {
	builder := marotocfg.NewBuilder().
		WithPageNumber().
		WithLeftMargin(g.cfg.MarginLeft).
		WithTopMargin(g.cfg.MarginTop).
		WithRightMargin(g.cfg.MarginRight)

	m := maroto.New(builder.Build())

	g.addHeader(m, data)
	g.addSummary(m, data)
	if len(data.Violations) > 0 {
		g.addViolations(m, data)
	}
	if len(data.Unassigned) > 0 {
		g.addUnassigned(m, data)
	}
	g.addRoutes(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data Data) {
	m.AddRow(14, text.NewCol(12, fmt.Sprintf("%s — Dispatch Plan Report", data.CompanyName), titleStyle))
	m.AddRow(4, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Job: %s", data.JobID), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Plan date: %s", data.PlanDate.Format("2006-01-02")), smallStyle))
	m.AddRow(8)
}

func (g *PDFGenerator) addSummary(m core.Maroto, data Data) {
	m.AddRow(10, text.NewCol(12, "Summary", h2Style))
	feasibility := "FEASIBLE"
	if !data.Summary.AllFeasible {
		feasibility = "HAS VIOLATIONS"
	}
	m.AddRow(18,
		col.New(3).Add(text.New(fmt.Sprintf("%d", data.Summary.VehiclesUsed), metricValueStyle), text.New("Vehicles used", metricLabelStyle)),
		col.New(3).Add(text.New(FormatFloat(data.Summary.TotalDistanceM/1000, 1), metricValueStyle), text.New("Total distance (km)", metricLabelStyle)),
		col.New(3).Add(text.New(fmt.Sprintf("%d", data.Summary.ShipmentsAssigned), metricValueStyle), text.New("Shipments assigned", metricLabelStyle)),
		col.New(3).Add(text.New(fmt.Sprintf("%d", data.Summary.ShipmentsUnassigned), metricValueStyle), text.New("Shipments unassigned", metricLabelStyle)),
	)
	m.AddRow(8, text.NewCol(12, fmt.Sprintf("Feasibility: %s", feasibility), boldStyle))
	m.AddRow(6)
}

func (g *PDFGenerator) addViolations(m core.Maroto, data Data) {
	m.AddRow(10, text.NewCol(12, "Temperature Violations", h2Style))
	m.AddRow(8,
		text.NewCol(2, "Route", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Shipment", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "SLA", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Predicted °C", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Ceiling °C", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(1, "Over °C", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)
	for _, v := range data.Violations {
		m.AddRow(6,
			text.NewCol(2, v.RouteID, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, v.ShipmentID, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, string(v.SLA), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, FormatFloat(v.PredictedArrivalTemp, 1), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, FormatFloat(v.TempCeiling, 1), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(1, FormatFloat(v.OvershootC, 1), props.Text{Size: 9, Align: align.Center, Color: dangerColor}).WithStyle(tableCellStyle),
		)
	}
	m.AddRow(6)
}

func (g *PDFGenerator) addUnassigned(m core.Maroto, data Data) {
	m.AddRow(10, text.NewCol(12, "Unassigned Shipments", h2Style))
	m.AddRow(8,
		text.NewCol(4, "Shipment", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(8, "Likely reasons", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)
	for _, u := range data.Unassigned {
		reasons := ""
		for i, r := range u.LikelyReasons {
			if i > 0 {
				reasons += ", "
			}
			reasons += string(r)
		}
		m.AddRow(6,
			text.NewCol(4, u.ShipmentID, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(8, reasons, props.Text{Size: 9, Align: align.Left}).WithStyle(tableCellStyle),
		)
	}
	m.AddRow(6)
}

func (g *PDFGenerator) addRoutes(m core.Maroto, data Data) {
	m.AddRow(10, text.NewCol(12, "Routes", h2Style))
	for _, route := range data.Routes {
		color := successColor
		status := "feasible"
		if !route.Feasible {
			color = dangerColor
			status = "infeasible"
		}
		m.AddRow(7, text.NewCol(12, fmt.Sprintf("Vehicle %s — %d stop(s), %.0f m, %s",
			route.VehicleID, len(route.Stops), route.TotalDistanceM, status),
			props.Text{Size: 10, Style: fontstyle.Bold, Color: color}))

		m.AddRow(7,
			text.NewCol(1, "#", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(3, "Shipment", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(3, "Arrival", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(3, "Departure", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
			text.NewCol(2, "Temp °C", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		)
		for _, stop := range route.Stops {
			m.AddRow(6,
				text.NewCol(1, fmt.Sprintf("%d", stop.Sequence), tableCellTextStyle).WithStyle(tableCellStyle),
				text.NewCol(3, stop.ShipmentID, tableCellTextStyle).WithStyle(tableCellStyle),
				text.NewCol(3, stop.ArrivalTime.Format("15:04"), tableCellTextStyle).WithStyle(tableCellStyle),
				text.NewCol(3, stop.DepartureTime.Format("15:04"), tableCellTextStyle).WithStyle(tableCellStyle),
				text.NewCol(2, FormatFloat(stop.PredictedArrivalTemp, 1), tableCellTextStyle).WithStyle(tableCellStyle),
			)
		}
		m.AddRow(4)
	}
}
