package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"netpulse/internal/telemetry"
)

// SheetName is the single data sheet of an exported workbook.
const SheetName = "Data"

// Filename returns the download filename for a heatmap export.
func Filename(mode telemetry.Mode) string {
	if mode == telemetry.ModeArrival {
		return "file_arrival.xlsx"
	}
	return "delay_heatmap.xlsx"
}

// WriteHeatmap renders a pivot matrix into a colored spreadsheet. Every
// numeric cell is filled by telemetry.Band, the same step function the
// JSON views use, so the workbook and the on-screen heatmap can never
// disagree. Missing cells are left unstyled and empty.
func WriteHeatmap(p telemetry.Pivot, mode telemetry.Mode) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(SheetName, "A1", "gNodeB"); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for ci, col := range p.Columns {
		cell, err := excelize.CoordinatesToCellName(ci+2, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, col); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	// Styles are cached per band; the whole workbook uses at most five.
	styles := make(map[telemetry.CellBand]int)
	numFmt := telemetry.NumberFormat(mode)

	for ri, site := range p.Sites {
		rowNum := ri + 2
		siteCell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, siteCell, site); err != nil {
			return nil, fmt.Errorf("write site %s: %w", site, err)
		}

		for ci, v := range p.Cells[ri] {
			if !v.Valid {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+2, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, v.Float64); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}

			band := telemetry.Band(v.Float64, mode)
			styleID, ok := styles[band]
			if !ok {
				styleID, err = f.NewStyle(&excelize.Style{
					Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{band.Fill}},
					Font:         &excelize.Font{Color: band.Font},
					Alignment:    &excelize.Alignment{Horizontal: "center", Vertical: "center"},
					CustomNumFmt: &numFmt,
				})
				if err != nil {
					return nil, fmt.Errorf("create style: %w", err)
				}
				styles[band] = styleID
			}
			if err := f.SetCellStyle(SheetName, cell, cell, styleID); err != nil {
				return nil, fmt.Errorf("style cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
