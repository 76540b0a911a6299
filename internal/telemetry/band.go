package telemetry

import (
	"fmt"
)

// Mode distinguishes the two metric tables.
type Mode string

const (
	// ModeArrival is the file-arrival percentage table (higher is better).
	ModeArrival Mode = "arrival"
	// ModeDelay is the delay-in-minutes table (lower is better).
	ModeDelay Mode = "delay"
)

// ParseMode validates a wire mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeArrival, ModeDelay:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// CellBand is the color assignment of a heatmap cell. Fill and Font are
// RRGGBB hex without a leading '#'. An empty Fill means no fill.
type CellBand struct {
	Fill string `json:"fill"`
	Font string `json:"font"`
}

const (
	fillDarkest = "08306b"
	fillStrong  = "1f78ff"
	fillMid     = "73b3ff"
	fillLight   = "d0e7ff"
	fillRed     = "FF0000"
	fontBlack   = "000000"
	fontWhite   = "FFFFFF"
)

// Band assigns the color band for a numeric cell. It is the single
// source of the threshold step function: the JSON heatmap views and the
// spreadsheet exporter both call it, so the two can never disagree.
func Band(value float64, mode Mode) CellBand {
	if mode == ModeArrival {
		switch {
		case value == 100:
			return CellBand{Fill: fillDarkest, Font: fontWhite}
		case value >= 75:
			return CellBand{Fill: fillStrong, Font: fontWhite}
		case value >= 50:
			return CellBand{Fill: fillMid, Font: fontBlack}
		case value >= 25:
			return CellBand{Fill: fillLight, Font: fontBlack}
		default:
			return CellBand{Fill: fillRed, Font: fontWhite}
		}
	}
	switch {
	case value <= 5:
		return CellBand{Fill: fillLight, Font: fontBlack}
	case value <= 10:
		return CellBand{Fill: fillMid, Font: fontBlack}
	case value <= 15:
		return CellBand{Fill: fillStrong, Font: fontWhite}
	default:
		return CellBand{Fill: fillDarkest, Font: fontWhite}
	}
}

// BandCell bands an optional cell; missing cells get no fill.
func BandCell(v Value, mode Mode) CellBand {
	if !v.Valid {
		return CellBand{Font: fontBlack}
	}
	return Band(v.Float64, mode)
}

// FormatCell renders a cell label with the mode's unit suffix. Missing
// cells render empty.
func FormatCell(v Value, mode Mode) string {
	if !v.Valid {
		return ""
	}
	if mode == ModeArrival {
		return fmt.Sprintf("%.0f%%", v.Float64)
	}
	return fmt.Sprintf("%.1f min", v.Float64)
}

// NumberFormat is the spreadsheet number format carrying the mode's
// unit suffix, matching FormatCell's precision.
func NumberFormat(mode Mode) string {
	if mode == ModeArrival {
		return `0"%"`
	}
	return `0.0" min"`
}
