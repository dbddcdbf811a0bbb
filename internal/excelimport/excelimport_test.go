package excelimport

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coldroute/internal/domain"
)

func writeSheet(t *testing.T, f *excelize.File, sheet string, header []string, dataRows [][]string) {
	t.Helper()
	f.NewSheet(sheet)
	for col, name := range header {
		require.NoError(t, f.SetCellValue(sheet, cellByIndex(col, 1), name))
	}
	for r, row := range dataRows {
		for col, v := range row {
			require.NoError(t, f.SetCellValue(sheet, cellByIndex(col, r+2), v))
		}
	}
}

func buildWorkbook(t *testing.T, shipmentRows, vehicleRows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	writeSheet(t, f, shipmentsSheet, []string{
		"id", "lat", "lon", "weight", "volume",
		"window1_start", "window1_end", "window2_start", "window2_end",
		"service_minutes", "temp_ceiling", "temp_floor", "sla", "priority",
	}, shipmentRows)

	writeSheet(t, f, vehiclesSheet, []string{
		"id", "capacity_weight", "capacity_volume", "insulation",
		"door_coefficient", "curtain", "cooling_rate", "min_temp", "fixed_cost",
	}, vehicleRows)

	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// cellByIndex converts a zero-based column index to its A1 address.
func cellByIndex(colIndex, row int) string {
	name := ""
	for {
		name = string(rune('A'+colIndex%26)) + name
		colIndex = colIndex/26 - 1
		if colIndex < 0 {
			break
		}
	}
	return name + strconv.Itoa(row)
}

func TestLoadParsesShipmentsAndVehicles(t *testing.T) {
	data := buildWorkbook(t,
		[][]string{
			{"S1", "40.71", "-74.00", "100", "2", "480", "720", "", "", "15", "5", "2", "STRICT", "80"},
		},
		[][]string{
			{"V1", "1000", "20", "0.5", "0.2", "false", "-0.3", "-18", "5000"},
		},
	)

	snap, err := Load(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, snap.Shipments, 1)
	s := snap.Shipments[0]
	assert.Equal(t, "S1", s.ID)
	assert.InDelta(t, 40.71, s.Lat, 1e-9)
	require.Len(t, s.Windows, 1)
	assert.Equal(t, domain.TimeWindow{Start: 480, End: 720}, s.Windows[0])
	assert.Equal(t, domain.SLAStrict, s.SLA)
	require.NotNil(t, s.TempFloor)
	assert.InDelta(t, 2.0, *s.TempFloor, 1e-9)
	assert.Equal(t, domain.ShipmentPending, s.Status)

	require.Len(t, snap.Vehicles, 1)
	v := snap.Vehicles[0]
	assert.Equal(t, "V1", v.ID)
	assert.True(t, v.Available)
	assert.InDelta(t, -0.3, v.CoolingRate, 1e-9)
	assert.Equal(t, 5000, v.FixedCost)
}

func TestLoadParsesTwoWindowShipment(t *testing.T) {
	data := buildWorkbook(t,
		[][]string{
			{"S1", "40.71", "-74.00", "10", "1", "480", "600", "780", "900", "10", "5", "", "STANDARD", "50"},
		},
		[][]string{
			{"V1", "1000", "20", "0.5", "0.2", "true", "-0.3", "-18", "5000"},
		},
	)

	snap, err := Load(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, snap.Shipments[0].Windows, 2)
	assert.Equal(t, domain.TimeWindow{Start: 780, End: 900}, snap.Shipments[0].Windows[1])
	assert.Nil(t, snap.Shipments[0].TempFloor)
	assert.True(t, snap.Vehicles[0].Curtain)
}

func TestLoadRejectsMissingColumn(t *testing.T) {
	f := excelize.NewFile()
	writeSheet(t, f, shipmentsSheet, []string{"id", "lat"}, [][]string{{"S1", "40.71"}})
	writeSheet(t, f, vehiclesSheet, []string{
		"id", "capacity_weight", "capacity_volume", "insulation",
		"door_coefficient", "curtain", "cooling_rate", "min_temp", "fixed_cost",
	}, nil)
	f.DeleteSheet("Sheet1")
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	f.Close()

	_, err := Load(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestLoadSkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t,
		[][]string{
			{"S1", "40.71", "-74.00", "10", "1", "480", "600", "", "", "10", "5", "", "STANDARD", "50"},
			{"", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		},
		[][]string{
			{"V1", "1000", "20", "0.5", "0.2", "true", "-0.3", "-18", "5000"},
		},
	)

	snap, err := Load(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, snap.Shipments, 1)
}
