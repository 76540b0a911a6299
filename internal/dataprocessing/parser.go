package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"netpulse/internal/telemetry"
)

// ErrSourceMissing reports that a required source file could not be
// located or read. It is fatal for the current session; the pipeline
// never falls back to an empty table.
var ErrSourceMissing = errors.New("telemetry source not found")

// ParseTable reads one delimited telemetry file into a normalized table.
// Headers are canonicalized, the report-date column is parsed
// permissively, the market column is kept as an opaque string, and the
// risk column defaults to 0 when absent.
func ParseTable(path string) (telemetry.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return telemetry.Table{}, fmt.Errorf("%w: %s: %v", ErrSourceMissing, path, err)
	}
	defer f.Close()

	table, err := parse(f)
	if err != nil {
		return telemetry.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}

	slog.Debug("telemetry source loaded",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("interval_columns", len(table.Columns)))
	return table, nil
}

// LoadSources loads the arrival and delay tables concurrently.
func LoadSources(ctx context.Context, arrivalPath, delayPath string) (telemetry.Table, telemetry.Table, error) {
	var arrival, delay telemetry.Table
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		arrival, err = ParseTable(arrivalPath)
		return err
	})
	g.Go(func() error {
		var err error
		delay, err = ParseTable(delayPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return telemetry.Table{}, telemetry.Table{}, err
	}
	return arrival, delay, nil
}

func parse(r io.Reader) (telemetry.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rawHeader, err := reader.Read()
	if err != nil {
		return telemetry.Table{}, fmt.Errorf("read header: %w", err)
	}
	header := telemetry.NormalizeHeaders(rawHeader)

	// Identity and risk column positions; everything else is a value column.
	identity := map[string]int{
		telemetry.ColRegion: -1,
		telemetry.ColMarket: -1,
		telemetry.ColSite:   -1,
		telemetry.ColDate:   -1,
		telemetry.ColRisk:   -1,
	}
	var valueCols []string
	var valueIdx []int
	for i, h := range header {
		if _, ok := identity[h]; ok {
			identity[h] = i
			continue
		}
		valueCols = append(valueCols, h)
		valueIdx = append(valueIdx, i)
	}

	table := telemetry.Table{Columns: valueCols}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return telemetry.Table{}, fmt.Errorf("read row: %w", err)
		}

		row := telemetry.Record{
			Region: cell(fields, identity[telemetry.ColRegion]),
			Market: cell(fields, identity[telemetry.ColMarket]),
			Site:   cell(fields, identity[telemetry.ColSite]),
			Values: make([]telemetry.Value, len(valueIdx)),
		}
		if d, ok := telemetry.ParseDate(cell(fields, identity[telemetry.ColDate])); ok {
			row.Date = d
			row.DateValid = true
		}
		if riskStr := cell(fields, identity[telemetry.ColRisk]); riskStr != "" {
			if risk, err := strconv.Atoi(riskStr); err == nil {
				row.Risk = risk
			}
		}
		for vi, fi := range valueIdx {
			row.Values[vi] = parseValue(cell(fields, fi))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func cell(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

// parseValue converts a raw reading. Empty or non-numeric cells become
// missing, never zero.
func parseValue(s string) telemetry.Value {
	if s == "" {
		return telemetry.Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return telemetry.Missing
	}
	return telemetry.Num(f)
}
