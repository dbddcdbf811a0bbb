// Package excelimport reads the Shipments/Vehicles worksheets described in
// SPEC_FULL.md §6 ("Shipment/vehicle ingest") into the same snapshot structs
// the HTTP plan-request path consumes, using excelize's row-iterator API the
// way the donor report-svc generator uses excelize's write-side API.
package excelimport

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"coldroute/internal/apperror"
	"coldroute/internal/domain"
)

const (
	shipmentsSheet = "Shipments"
	vehiclesSheet  = "Vehicles"
)

var shipmentColumns = []string{
	"id", "lat", "lon", "weight", "volume",
	"window1_start", "window1_end", "window2_start", "window2_end",
	"service_minutes", "temp_ceiling", "temp_floor", "sla", "priority",
}

var vehicleColumns = []string{
	"id", "capacity_weight", "capacity_volume", "insulation",
	"door_coefficient", "curtain", "cooling_rate", "min_temp", "fixed_cost",
}

// Snapshot mirrors repository.Snapshot's shipment/vehicle fields; depot
// assignment is left to the caller, matching the HTTP ingest path which
// always resolves the depot separately. Every imported vehicle is marked
// available.
type Snapshot struct {
	Vehicles  []domain.Vehicle
	Shipments []domain.Shipment
}

// Load parses an .xlsx workbook containing Shipments and Vehicles sheets.
// Both sheets are required; a missing sheet or header is a validation error
// surfaced to the caller the same way a malformed JSON plan request is.
func Load(r io.Reader) (Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Snapshot{}, apperror.New(apperror.CodeValidation, "open workbook: "+err.Error())
	}
	defer f.Close()

	vehicles, err := parseVehicles(f)
	if err != nil {
		return Snapshot{}, err
	}
	shipments, err := parseShipments(f)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Vehicles: vehicles, Shipments: shipments}, nil
}

// header maps a lowercased column name to its zero-based position, read
// from a sheet's first row.
type header map[string]int

func readHeader(row []string) header {
	h := make(header, len(row))
	for i, cell := range row {
		h[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	return h
}

func (h header) require(sheet string, columns []string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperror.New(apperror.CodeValidation,
			fmt.Sprintf("sheet %q missing column(s): %s", sheet, strings.Join(missing, ", ")))
	}
	return nil
}

func (h header) cell(row []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseVehicles(f *excelize.File) ([]domain.Vehicle, error) {
	rows, err := f.GetRows(vehiclesSheet)
	if err != nil {
		return nil, apperror.New(apperror.CodeValidation, "read sheet \"Vehicles\": "+err.Error())
	}
	if len(rows) == 0 {
		return nil, apperror.New(apperror.CodeValidation, "sheet \"Vehicles\" is empty")
	}

	h := readHeader(rows[0])
	if err := h.require(vehiclesSheet, vehicleColumns); err != nil {
		return nil, err
	}

	vehicles := make([]domain.Vehicle, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if allBlank(row) {
			continue
		}
		rowNum := i + 2
		v := domain.Vehicle{
			ID:        h.cell(row, "id"),
			Available: true,
		}
		if v.ID == "" {
			return nil, rowErr(vehiclesSheet, rowNum, "id", "must not be blank")
		}

		var ferr error
		v.CapacityWeight, ferr = parseFloat(h.cell(row, "capacity_weight"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "capacity_weight", ferr.Error())
		}
		v.CapacityVolume, ferr = parseFloat(h.cell(row, "capacity_volume"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "capacity_volume", ferr.Error())
		}
		v.Insulation, ferr = parseFloat(h.cell(row, "insulation"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "insulation", ferr.Error())
		}
		v.DoorCoefficient, ferr = parseFloat(h.cell(row, "door_coefficient"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "door_coefficient", ferr.Error())
		}
		v.Curtain = parseBool(h.cell(row, "curtain"))
		v.CoolingRate, ferr = parseFloat(h.cell(row, "cooling_rate"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "cooling_rate", ferr.Error())
		}
		v.MinTemp, ferr = parseFloat(h.cell(row, "min_temp"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "min_temp", ferr.Error())
		}
		fixedCost, ferr := parseFloat(h.cell(row, "fixed_cost"))
		if ferr != nil {
			return nil, rowErr(vehiclesSheet, rowNum, "fixed_cost", ferr.Error())
		}
		v.FixedCost = int(fixedCost)

		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

func parseShipments(f *excelize.File) ([]domain.Shipment, error) {
	rows, err := f.GetRows(shipmentsSheet)
	if err != nil {
		return nil, apperror.New(apperror.CodeValidation, "read sheet \"Shipments\": "+err.Error())
	}
	if len(rows) == 0 {
		return nil, apperror.New(apperror.CodeValidation, "sheet \"Shipments\" is empty")
	}

	h := readHeader(rows[0])
	if err := h.require(shipmentsSheet, shipmentColumns); err != nil {
		return nil, err
	}

	shipments := make([]domain.Shipment, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if allBlank(row) {
			continue
		}
		rowNum := i + 2
		s := domain.Shipment{
			ID:     h.cell(row, "id"),
			Status: domain.ShipmentPending,
			SLA:    domain.SLAStandard,
		}
		if s.ID == "" {
			return nil, rowErr(shipmentsSheet, rowNum, "id", "must not be blank")
		}

		var ferr error
		s.Lat, ferr = parseFloat(h.cell(row, "lat"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "lat", ferr.Error())
		}
		s.Lon, ferr = parseFloat(h.cell(row, "lon"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "lon", ferr.Error())
		}
		s.Weight, ferr = parseFloat(h.cell(row, "weight"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "weight", ferr.Error())
		}
		s.Volume, ferr = parseFloat(h.cell(row, "volume"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "volume", ferr.Error())
		}

		windows, werr := parseWindows(h, row)
		if werr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "window", werr.Error())
		}
		s.Windows = windows

		serviceMinutes, ferr := parseFloat(h.cell(row, "service_minutes"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "service_minutes", ferr.Error())
		}
		s.ServiceMinutes = int(serviceMinutes)

		s.TempCeiling, ferr = parseFloat(h.cell(row, "temp_ceiling"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "temp_ceiling", ferr.Error())
		}
		if raw := h.cell(row, "temp_floor"); raw != "" {
			floor, ferr := parseFloat(raw)
			if ferr != nil {
				return nil, rowErr(shipmentsSheet, rowNum, "temp_floor", ferr.Error())
			}
			s.TempFloor = &floor
		}

		if raw := strings.ToUpper(h.cell(row, "sla")); raw != "" {
			switch domain.SLATier(raw) {
			case domain.SLAStrict, domain.SLAStandard:
				s.SLA = domain.SLATier(raw)
			default:
				return nil, rowErr(shipmentsSheet, rowNum, "sla", "must be STRICT or STANDARD")
			}
		}

		priority, ferr := parseFloat(h.cell(row, "priority"))
		if ferr != nil {
			return nil, rowErr(shipmentsSheet, rowNum, "priority", ferr.Error())
		}
		s.Priority = int(priority)

		shipments = append(shipments, s)
	}
	return shipments, nil
}

func parseWindows(h header, row []string) ([]domain.TimeWindow, error) {
	w1s, err := parseFloat(h.cell(row, "window1_start"))
	if err != nil {
		return nil, fmt.Errorf("window1_start: %w", err)
	}
	w1e, err := parseFloat(h.cell(row, "window1_end"))
	if err != nil {
		return nil, fmt.Errorf("window1_end: %w", err)
	}
	windows := []domain.TimeWindow{{Start: int(w1s), End: int(w1e)}}

	w2sRaw := h.cell(row, "window2_start")
	w2eRaw := h.cell(row, "window2_end")
	if w2sRaw == "" && w2eRaw == "" {
		return windows, nil
	}
	w2s, err := parseFloat(w2sRaw)
	if err != nil {
		return nil, fmt.Errorf("window2_start: %w", err)
	}
	w2e, err := parseFloat(w2eRaw)
	if err != nil {
		return nil, fmt.Errorf("window2_end: %w", err)
	}
	return append(windows, domain.TimeWindow{Start: int(w2s), End: int(w2e)}), nil
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func parseBool(raw string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return v
}

func allBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowErr(sheet string, row int, field, reason string) error {
	return apperror.New(apperror.CodeValidation,
		fmt.Sprintf("sheet %q row %d: %s: %s", sheet, row, field, reason))
}
