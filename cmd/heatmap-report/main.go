package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"netpulse/internal/config"
	"netpulse/internal/services"
	"netpulse/internal/telemetry"
)

func main() {
	outputDir := flag.String("out", "", "output directory for heatmap workbooks (defaults to the configured reports dir)")
	granularity := flag.String("granularity", "daily", "resampling granularity: native, hourly or daily")
	region := flag.String("region", telemetry.All, "region filter")
	market := flag.String("market", telemetry.All, "market filter")
	date := flag.String("date", telemetry.All, "date filter (YYYY-MM-DD)")
	riskOnly := flag.Bool("risk-only", false, "restrict the export to problematic sites")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	g, err := telemetry.ParseGranularity(*granularity)
	if err != nil {
		slog.Error("Invalid granularity", "error", err)
		os.Exit(1)
	}
	sel := telemetry.FilterSelection{
		Region:      *region,
		Market:      *market,
		Date:        *date,
		Granularity: g,
		RiskOnly:    *riskOnly,
	}

	if *outputDir == "" {
		*outputDir = cfg.Data.ReportsDir
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("Failed to create output directory", "dir", *outputDir, "error", err)
		os.Exit(1)
	}

	svc := services.NewTelemetryService(cfg, slog.Default(), nil)
	ctx := context.Background()

	slog.Info("Generating heatmap workbooks",
		"arrival_file", cfg.Data.ArrivalFile,
		"delay_file", cfg.Data.DelayFile,
		"granularity", g.String(),
		"out", *outputDir)

	for _, mode := range []telemetry.Mode{telemetry.ModeArrival, telemetry.ModeDelay} {
		data, filename, err := svc.ExportHeatmap(ctx, sel, mode)
		if err != nil {
			slog.Error("Failed to generate workbook", "mode", string(mode), "error", err)
			os.Exit(1)
		}

		path := filepath.Join(*outputDir, filename)
		if err := os.WriteFile(path, data, 0644); err != nil {
			slog.Error("Failed to write workbook", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("Workbook written", "path", path, "bytes", len(data))
	}
}
