package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"netpulse/internal/telemetry"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "file_arrival.xlsx", Filename(telemetry.ModeArrival))
	assert.Equal(t, "delay_heatmap.xlsx", Filename(telemetry.ModeDelay))
}

func TestWriteHeatmap(t *testing.T) {
	p := telemetry.Pivot{
		Sites:   []string{"S1", "S2"},
		Columns: []string{"00:00", "00:15"},
		Cells: [][]telemetry.Value{
			{telemetry.Num(100), telemetry.Num(10)},
			{telemetry.Num(60), telemetry.Missing},
		},
	}

	data, err := WriteHeatmap(p, telemetry.ModeArrival)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		return v
	}
	raw := func(cell string) string {
		v, err := f.GetCellValue(SheetName, cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "gNodeB", get("A1"))
	assert.Equal(t, "00:00", get("B1"))
	assert.Equal(t, "00:15", get("C1"))
	assert.Equal(t, "S1", get("A2"))
	assert.Equal(t, "S2", get("A3"))
	assert.Equal(t, "100", raw("B2"))
	assert.Equal(t, "60", raw("B3"))
	assert.Equal(t, "100%", get("B2"), "number format adds the unit suffix")
	assert.Equal(t, "", get("C3"), "missing cells stay empty")
}

func TestWriteHeatmapCellColorsMatchBands(t *testing.T) {
	p := telemetry.Pivot{
		Sites:   []string{"S1"},
		Columns: []string{"00:00", "00:15", "00:30"},
		Cells: [][]telemetry.Value{
			{telemetry.Num(100), telemetry.Num(80), telemetry.Num(10)},
		},
	}

	data, err := WriteHeatmap(p, telemetry.ModeArrival)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	fillOf := func(cell string) string {
		styleID, err := f.GetCellStyle(SheetName, cell)
		require.NoError(t, err)
		style, err := f.GetStyle(styleID)
		require.NoError(t, err)
		require.NotEmpty(t, style.Fill.Color)
		// Stored colors may gain an alpha prefix; compare the RGB tail.
		c := style.Fill.Color[0]
		if len(c) == 8 {
			c = c[2:]
		}
		return strings.ToLower(c)
	}

	band := func(v float64) string {
		return strings.ToLower(telemetry.Band(v, telemetry.ModeArrival).Fill)
	}
	assert.Equal(t, band(100), fillOf("B2"))
	assert.Equal(t, band(80), fillOf("C2"))
	assert.Equal(t, band(10), fillOf("D2"))
}

func TestWriteHeatmapEmptyPivot(t *testing.T) {
	data, err := WriteHeatmap(telemetry.Pivot{Columns: []string{"00:00"}}, telemetry.ModeDelay)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "an empty pivot still yields a valid workbook with headers")
}
