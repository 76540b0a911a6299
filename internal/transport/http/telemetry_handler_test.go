package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse/internal/dataprocessing"
	apierrors "netpulse/internal/errors"
	"netpulse/internal/services"
	"netpulse/internal/telemetry"
)

func dataprocessingErr() error {
	return fmt.Errorf("%w: data/arrival.csv", dataprocessing.ErrSourceMissing)
}

// mockTelemetryService implements TelemetryServiceInterface with
// pluggable behaviors and records the last bound selection.
type mockTelemetryService struct {
	lastSel telemetry.FilterSelection

	filterDomains    func() (*services.FilterView, error)
	heatmap          func(mode telemetry.Mode) (*services.HeatmapView, error)
	exportHeatmap    func(mode telemetry.Mode) ([]byte, string, error)
	latencyTrend     func(site string) (*services.TrendView, error)
	delaySummary     func() (*services.DelaySummaryView, error)
	riskSummary      func() (*services.RiskSummaryView, error)
	zeroDistribution func() (*services.ZeroDistributionView, error)
}

func (m *mockTelemetryService) FilterDomains(_ context.Context, sel telemetry.FilterSelection) (*services.FilterView, error) {
	m.lastSel = sel
	return m.filterDomains()
}

func (m *mockTelemetryService) Heatmap(_ context.Context, sel telemetry.FilterSelection, mode telemetry.Mode) (*services.HeatmapView, error) {
	m.lastSel = sel
	return m.heatmap(mode)
}

func (m *mockTelemetryService) ExportHeatmap(_ context.Context, sel telemetry.FilterSelection, mode telemetry.Mode) ([]byte, string, error) {
	m.lastSel = sel
	return m.exportHeatmap(mode)
}

func (m *mockTelemetryService) LatencyTrend(_ context.Context, sel telemetry.FilterSelection, site string) (*services.TrendView, error) {
	m.lastSel = sel
	return m.latencyTrend(site)
}

func (m *mockTelemetryService) DelaySummary(_ context.Context, sel telemetry.FilterSelection) (*services.DelaySummaryView, error) {
	m.lastSel = sel
	return m.delaySummary()
}

func (m *mockTelemetryService) RiskSummary(_ context.Context, sel telemetry.FilterSelection) (*services.RiskSummaryView, error) {
	m.lastSel = sel
	return m.riskSummary()
}

func (m *mockTelemetryService) ZeroDistribution(_ context.Context, sel telemetry.FilterSelection) (*services.ZeroDistributionView, error) {
	m.lastSel = sel
	return m.zeroDistribution()
}

func newTestHandler(mock *mockTelemetryService) *TelemetryHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTelemetryHandler(mock, logger, apierrors.NewErrorHandler(logger))
}

func doRequest(t *testing.T, h *TelemetryHandler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestGetFiltersBindsSelection(t *testing.T) {
	mock := &mockTelemetryService{
		filterDomains: func() (*services.FilterView, error) {
			return &services.FilterView{Regions: []string{"East"}}, nil
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/filters?region=East&market=M1&date=2024-03-15&sites=S1,S2&granularity=daily&risk_only=true")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "East", mock.lastSel.Region)
	assert.Equal(t, "M1", mock.lastSel.Market)
	assert.Equal(t, "2024-03-15", mock.lastSel.Date)
	assert.Equal(t, []string{"S1", "S2"}, mock.lastSel.Sites)
	assert.Equal(t, telemetry.Daily, mock.lastSel.Granularity)
	assert.True(t, mock.lastSel.RiskOnly)

	var view services.FilterView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, []string{"East"}, view.Regions)
}

func TestGetFiltersDefaultsToAll(t *testing.T) {
	mock := &mockTelemetryService{
		filterDomains: func() (*services.FilterView, error) { return &services.FilterView{}, nil },
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/filters")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, telemetry.All, mock.lastSel.Region)
	assert.Equal(t, telemetry.All, mock.lastSel.Market)
	assert.Equal(t, telemetry.All, mock.lastSel.Date)
	assert.Empty(t, mock.lastSel.Sites)
	assert.Equal(t, telemetry.Native, mock.lastSel.Granularity)
	assert.False(t, mock.lastSel.RiskOnly)
}

func TestInvalidGranularityIs400(t *testing.T) {
	h := newTestHandler(&mockTelemetryService{})

	rec := doRequest(t, h, "/filters?granularity=weekly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION_FAILED", envelope.Error.ErrorCode)
}

func TestInvalidModeIs400(t *testing.T) {
	h := newTestHandler(&mockTelemetryService{})
	rec := doRequest(t, h, "/heatmap/latency")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeatmapEmptyResultIsNotice(t *testing.T) {
	mock := &mockTelemetryService{
		heatmap: func(telemetry.Mode) (*services.HeatmapView, error) {
			return nil, services.ErrNoData
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/heatmap/arrival")
	require.Equal(t, http.StatusOK, rec.Code, "empty data degrades to a notice, not an error status")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "empty", body["status"])
	assert.Equal(t, services.ErrNoData.Error(), body["notice"])
}

func TestHeatmapNoRiskSitesIsNotice(t *testing.T) {
	mock := &mockTelemetryService{
		heatmap: func(telemetry.Mode) (*services.HeatmapView, error) {
			return nil, services.ErrNoRiskSites
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/heatmap/delay?risk_only=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.ErrNoRiskSites.Error(), body["notice"])
}

func TestMissingSourceIs503(t *testing.T) {
	mock := &mockTelemetryService{
		heatmap: func(telemetry.Mode) (*services.HeatmapView, error) {
			return nil, dataprocessingErr()
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/heatmap/arrival")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var envelope struct {
		Error struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "SOURCE_NOT_FOUND", envelope.Error.ErrorCode)
}

func TestDownloadHeatmap(t *testing.T) {
	payload := []byte("workbook-bytes")
	mock := &mockTelemetryService{
		exportHeatmap: func(mode telemetry.Mode) ([]byte, string, error) {
			return payload, "file_arrival.xlsx", nil
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/download/arrival")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "file_arrival.xlsx")
}

func TestGetTrend(t *testing.T) {
	mock := &mockTelemetryService{
		latencyTrend: func(site string) (*services.TrendView, error) {
			return &services.TrendView{Site: site, Threshold: telemetry.DelaySLAMinutes}, nil
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/trend/S2")
	require.Equal(t, http.StatusOK, rec.Code)

	var view services.TrendView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "S2", view.Site)
}

func TestGetTrendUnknownSiteIs404(t *testing.T) {
	mock := &mockTelemetryService{
		latencyTrend: func(string) (*services.TrendView, error) {
			return nil, services.ErrUnknownSite
		},
	}
	h := newTestHandler(mock)

	rec := doRequest(t, h, "/trend/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryEndpoints(t *testing.T) {
	mock := &mockTelemetryService{
		delaySummary: func() (*services.DelaySummaryView, error) {
			return &services.DelaySummaryView{Threshold: telemetry.DelaySLAMinutes}, nil
		},
		riskSummary: func() (*services.RiskSummaryView, error) {
			return &services.RiskSummaryView{}, nil
		},
		zeroDistribution: func() (*services.ZeroDistributionView, error) {
			return &services.ZeroDistributionView{}, nil
		},
	}
	h := newTestHandler(mock)

	for _, path := range []string{"/summary/delay", "/summary/risk", "/summary/zero"} {
		rec := doRequest(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
