package services

import (
	"netpulse/internal/telemetry"
)

// FilterView carries the cascading candidate domains for the sidebar
// filters, plus the resolved problematic-site set when risk-only mode
// is active.
type FilterView struct {
	Regions   []string `json:"regions"`
	Markets   []string `json:"markets"`
	Dates     []string `json:"dates"`
	Sites     []string `json:"sites"`
	RiskSites []string `json:"risk_sites,omitempty"`
	Notice    string   `json:"notice,omitempty"`
}

// HeatmapCell is one rendered pivot cell: the raw value, its display
// label and its color band. Missing cells have a null value, empty
// label and no fill.
type HeatmapCell struct {
	Value telemetry.Value `json:"value"`
	Label string          `json:"label"`
	Fill  string          `json:"fill"`
	Font  string          `json:"font"`
}

// HeatmapView is the site × interval heatmap of one metric table.
type HeatmapView struct {
	Mode        string          `json:"mode"`
	Granularity string          `json:"granularity"`
	Columns     []string        `json:"columns"`
	Sites       []string        `json:"sites"`
	Cells       [][]HeatmapCell `json:"cells"`
	TotalSites  int             `json:"total_sites"`
}

// TrendPoint is one bar of a latency trend chart.
type TrendPoint struct {
	Interval string          `json:"interval"`
	Value    telemetry.Value `json:"value"`
}

// TrendView is the per-interval (or per-day) delay series of one site,
// with the fixed SLA reference line.
type TrendView struct {
	Site      string       `json:"site"`
	Points    []TrendPoint `json:"points"`
	Threshold float64      `json:"threshold"`
}

// DelaySummaryView carries average delay grouped by region and by
// market, with the SLA reference line for chart rendering.
type DelaySummaryView struct {
	ByRegion  []telemetry.GroupValue `json:"by_region"`
	ByMarket  []telemetry.GroupValue `json:"by_market"`
	Threshold float64                `json:"threshold"`
}

// RiskSummaryView carries problematic-site counts grouped by region and
// by market.
type RiskSummaryView struct {
	ByRegion []telemetry.GroupCount `json:"by_region"`
	ByMarket []telemetry.GroupCount `json:"by_market"`
}

// ZeroDistributionView carries exactly-zero reading counts per market
// (pie chart data).
type ZeroDistributionView struct {
	Markets []telemetry.GroupCount `json:"markets"`
}
