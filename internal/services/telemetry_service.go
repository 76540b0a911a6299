package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"netpulse/internal/config"
	"netpulse/internal/dataprocessing"
	"netpulse/internal/exporter"
	"netpulse/internal/metrics"
	"netpulse/internal/telemetry"
)

// Snapshot is one immutable load of both base tables. It is shared
// read-only across requests and replaced wholesale on expiry, never
// mutated in place.
type Snapshot struct {
	Arrival  telemetry.Table
	Delay    telemetry.Table
	LoadedAt time.Time
}

// TelemetryService orchestrates the transformation pipeline over a
// TTL-cached snapshot of the two source tables. Every view is a pure,
// deterministic recomputation from the snapshot plus an explicit
// FilterSelection.
type TelemetryService struct {
	cfg     *config.Config
	logger  *slog.Logger
	clock   clockwork.Clock
	metrics *metrics.Metrics

	group singleflight.Group
	mu    sync.RWMutex
	snap  *Snapshot
}

// NewTelemetryService creates a telemetry service with the real clock.
func NewTelemetryService(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *TelemetryService {
	return NewTelemetryServiceWithClock(cfg, logger, m, clockwork.NewRealClock())
}

// NewTelemetryServiceWithClock creates a telemetry service with an
// injectable clock for cache-expiry tests.
func NewTelemetryServiceWithClock(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, clock clockwork.Clock) *TelemetryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelemetryService{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "telemetry_service")),
		clock:   clock,
		metrics: m,
	}
}

// snapshot returns the cached snapshot, reloading both source files
// when the TTL has lapsed. Concurrent expirations collapse into a
// single reload.
func (s *TelemetryService) snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current(); snap != nil {
		return snap, nil
	}

	v, err, _ := s.group.Do("snapshot", func() (interface{}, error) {
		// Another caller may have finished the reload while we queued.
		if snap := s.current(); snap != nil {
			return snap, nil
		}

		start := s.clock.Now()
		arrival, delay, err := dataprocessing.LoadSources(ctx, s.cfg.Data.ArrivalFile, s.cfg.Data.DelayFile)
		if err != nil {
			if s.metrics != nil {
				s.metrics.SnapshotReloads.WithLabelValues("error").Inc()
			}
			return nil, err
		}

		snap := &Snapshot{Arrival: arrival, Delay: delay, LoadedAt: s.clock.Now()}
		s.mu.Lock()
		s.snap = snap
		s.mu.Unlock()

		if s.metrics != nil {
			s.metrics.SnapshotReloads.WithLabelValues("success").Inc()
			s.metrics.ReloadDuration.Observe(s.clock.Since(start).Seconds())
			s.metrics.SnapshotAge.Set(0)
		}
		s.logger.InfoContext(ctx, "telemetry snapshot reloaded",
			slog.Int("arrival_rows", len(arrival.Rows)),
			slog.Int("delay_rows", len(delay.Rows)),
			slog.Duration("took", s.clock.Since(start)))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// current returns the cached snapshot when still fresh, else nil.
func (s *TelemetryService) current() *Snapshot {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap == nil || s.clock.Since(snap.LoadedAt) >= s.cfg.Data.CacheTTL {
		return nil
	}
	if s.metrics != nil {
		s.metrics.SnapshotAge.Set(s.clock.Since(snap.LoadedAt).Seconds())
	}
	return snap
}

// viewData is the shared prologue of every view: the fresh snapshot,
// both tables resampled to the selection's granularity, the cascading
// domains, and the selection with its site set fully resolved.
type viewData struct {
	arrival   telemetry.Table
	delay     telemetry.Table
	domains   telemetry.Domains
	sel       telemetry.FilterSelection
	riskSites []string
}

func (s *TelemetryService) resolve(ctx context.Context, sel telemetry.FilterSelection) (*viewData, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	arrival, delay := telemetry.Resample(snap.Arrival, snap.Delay, sel.Granularity)
	domains := telemetry.CascadingDomains(snap.Arrival, snap.Delay, sel)

	d := &viewData{arrival: arrival, delay: delay, domains: domains, sel: sel}

	if sel.RiskOnly {
		// Risk detection runs on the resampled, unfiltered tables; the
		// result replaces the site domain, restricted to legal sites.
		risky := telemetry.RiskSites(arrival, delay, sel.Granularity)
		d.riskSites = telemetry.Intersect(risky, domains.Sites)
		if len(sel.Sites) > 0 {
			d.riskSites = telemetry.Intersect(d.riskSites, sel.Sites)
		}
		if len(d.riskSites) == 0 {
			return d, ErrNoRiskSites
		}
		d.sel.Sites = d.riskSites
	} else if len(sel.Sites) > 0 {
		d.sel.Sites = telemetry.Intersect(sel.Sites, domains.Sites)
		if len(d.sel.Sites) == 0 {
			return d, ErrNoData
		}
	}
	return d, nil
}

// totalSites counts the distinct sites in the filtered delay table,
// shown as the site total on every view header.
func (d *viewData) totalSites() int {
	seen := make(map[string]bool)
	for _, row := range telemetry.Apply(d.delay, d.sel).Rows {
		seen[row.Site] = true
	}
	return len(seen)
}

// FilterDomains returns the legal candidate sets for each cascading
// filter level. When risk-only mode matches no sites the view carries
// an informational notice instead of failing.
func (s *TelemetryService) FilterDomains(ctx context.Context, sel telemetry.FilterSelection) (*FilterView, error) {
	s.count("filters")
	d, err := s.resolve(ctx, sel)
	if err != nil && err != ErrNoRiskSites {
		return nil, err
	}

	view := &FilterView{
		Regions:   d.domains.Regions,
		Markets:   d.domains.Markets,
		Dates:     d.domains.Dates,
		Sites:     d.domains.Sites,
		RiskSites: d.riskSites,
	}
	if err == ErrNoRiskSites {
		view.Notice = ErrNoRiskSites.Error()
	}
	return view, nil
}

// Heatmap builds the site × interval heatmap for one metric table.
func (s *TelemetryService) Heatmap(ctx context.Context, sel telemetry.FilterSelection, mode telemetry.Mode) (*HeatmapView, error) {
	s.count("heatmap")
	d, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	pivot, err := s.pivot(d, mode)
	if err != nil {
		return nil, err
	}

	view := &HeatmapView{
		Mode:        string(mode),
		Granularity: sel.Granularity.String(),
		Columns:     pivot.Columns,
		Sites:       pivot.Sites,
		Cells:       make([][]HeatmapCell, len(pivot.Sites)),
		TotalSites:  d.totalSites(),
	}
	for ri, cells := range pivot.Cells {
		rendered := make([]HeatmapCell, len(cells))
		for ci, v := range cells {
			band := telemetry.BandCell(v, mode)
			rendered[ci] = HeatmapCell{
				Value: v,
				Label: telemetry.FormatCell(v, mode),
				Fill:  band.Fill,
				Font:  band.Font,
			}
		}
		view.Cells[ri] = rendered
	}
	return view, nil
}

// ExportHeatmap renders the current heatmap pivot as a colored
// spreadsheet. Returns the workbook bytes and the download filename.
func (s *TelemetryService) ExportHeatmap(ctx context.Context, sel telemetry.FilterSelection, mode telemetry.Mode) ([]byte, string, error) {
	s.count("export")
	d, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, "", err
	}

	pivot, err := s.pivot(d, mode)
	if err != nil {
		return nil, "", err
	}

	data, err := exporter.WriteHeatmap(pivot, mode)
	if err != nil {
		return nil, "", fmt.Errorf("export heatmap: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ExportsGenerated.WithLabelValues(string(mode)).Inc()
	}
	return data, exporter.Filename(mode), nil
}

func (s *TelemetryService) pivot(d *viewData, mode telemetry.Mode) (telemetry.Pivot, error) {
	table := d.arrival
	if mode == telemetry.ModeDelay {
		table = d.delay
	}
	filtered := telemetry.Apply(table, d.sel)
	if filtered.Empty() {
		return telemetry.Pivot{}, ErrNoData
	}
	pivot := telemetry.PivotTable(filtered, d.sel.Granularity)
	if pivot.Empty() || len(pivot.Columns) == 0 {
		return telemetry.Pivot{}, ErrNoData
	}
	return pivot, nil
}

// LatencyTrend builds the delay series of a single site.
func (s *TelemetryService) LatencyTrend(ctx context.Context, sel telemetry.FilterSelection, site string) (*TrendView, error) {
	s.count("trend")
	d, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	filtered := telemetry.Apply(d.delay, d.sel)
	if filtered.Empty() {
		return nil, ErrNoData
	}

	subset := telemetry.Table{Columns: filtered.Columns}
	for _, row := range filtered.Rows {
		if row.Site == site {
			subset.Rows = append(subset.Rows, row)
		}
	}
	if subset.Empty() {
		return nil, ErrUnknownSite
	}

	pivot := telemetry.PivotTable(subset, d.sel.Granularity)
	view := &TrendView{Site: site, Threshold: telemetry.DelaySLAMinutes}
	for ci, col := range pivot.Columns {
		view.Points = append(view.Points, TrendPoint{Interval: col, Value: pivot.Cells[0][ci]})
	}
	return view, nil
}

// DelaySummary builds the average-delay aggregates by region and market.
func (s *TelemetryService) DelaySummary(ctx context.Context, sel telemetry.FilterSelection) (*DelaySummaryView, error) {
	s.count("delay_summary")
	d, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	filtered := telemetry.Apply(d.delay, d.sel)
	if filtered.Empty() {
		return nil, ErrNoData
	}
	return &DelaySummaryView{
		ByRegion:  telemetry.MeanByGroup(filtered, telemetry.ByRegion),
		ByMarket:  telemetry.MeanByGroup(filtered, telemetry.ByMarket),
		Threshold: telemetry.DelaySLAMinutes,
	}, nil
}

// RiskSummary builds the problematic-site count aggregates by region
// and market from the arrival table's risk counter.
func (s *TelemetryService) RiskSummary(ctx context.Context, sel telemetry.FilterSelection) (*RiskSummaryView, error) {
	s.count("risk_summary")
	d, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	filtered := telemetry.Apply(d.arrival, d.sel)
	if filtered.Empty() {
		return nil, ErrNoData
	}
	return &RiskSummaryView{
		ByRegion: telemetry.RiskSumByGroup(filtered, telemetry.ByRegion),
		ByMarket: telemetry.RiskSumByGroup(filtered, telemetry.ByMarket),
	}, nil
}

// ZeroDistribution counts exactly-zero arrival readings per market.
func (s *TelemetryService) ZeroDistribution(ctx context.Context, sel telemetry.FilterSelection) (*ZeroDistributionView, error) {
	s.count("zero_distribution")
	d, err := s.resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	filtered := telemetry.Apply(d.arrival, d.sel)
	if filtered.Empty() {
		return nil, ErrNoData
	}
	return &ZeroDistributionView{Markets: telemetry.ZeroDistribution(filtered)}, nil
}

func (s *TelemetryService) count(view string) {
	if s.metrics != nil {
		s.metrics.ViewRecomputes.WithLabelValues(view).Inc()
	}
}
