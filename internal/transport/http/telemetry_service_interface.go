package http

import (
	"context"

	"netpulse/internal/services"
	"netpulse/internal/telemetry"
)

// TelemetryServiceInterface defines the operations the telemetry handler
// needs. Satisfied by services.TelemetryService; tests substitute mocks.
type TelemetryServiceInterface interface {
	FilterDomains(ctx context.Context, sel telemetry.FilterSelection) (*services.FilterView, error)
	Heatmap(ctx context.Context, sel telemetry.FilterSelection, mode telemetry.Mode) (*services.HeatmapView, error)
	ExportHeatmap(ctx context.Context, sel telemetry.FilterSelection, mode telemetry.Mode) ([]byte, string, error)
	LatencyTrend(ctx context.Context, sel telemetry.FilterSelection, site string) (*services.TrendView, error)
	DelaySummary(ctx context.Context, sel telemetry.FilterSelection) (*services.DelaySummaryView, error)
	RiskSummary(ctx context.Context, sel telemetry.FilterSelection) (*services.RiskSummaryView, error)
	ZeroDistribution(ctx context.Context, sel telemetry.FilterSelection) (*services.ZeroDistributionView, error)
}
