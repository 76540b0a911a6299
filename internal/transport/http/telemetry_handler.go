package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"netpulse/internal/dataprocessing"
	apierrors "netpulse/internal/errors"
	"netpulse/internal/services"
	"netpulse/internal/telemetry"
)

// TelemetryHandler handles the telemetry view HTTP requests.
type TelemetryHandler struct {
	service      TelemetryServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(service TelemetryServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TelemetryHandler {
	return &TelemetryHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "telemetry_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the telemetry routes.
func (h *TelemetryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/filters", h.GetFilters)
	r.Get("/summary/delay", h.GetDelaySummary)
	r.Get("/summary/risk", h.GetRiskSummary)
	r.Get("/summary/zero", h.GetZeroDistribution)
	r.Get("/trend/{site}", h.GetTrend)

	r.Route("/heatmap/{mode}", func(r chi.Router) {
		r.Use(h.ModeCtx)
		r.Get("/", h.GetHeatmap)
	})
	r.Route("/download/{mode}", func(r chi.Router) {
		r.Use(h.ModeCtx)
		r.Get("/", h.DownloadHeatmap)
	})

	return r
}

// ModeCtx middleware validates the heatmap mode parameter.
func (h *TelemetryHandler) ModeCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := telemetry.ParseMode(chi.URLParam(r, "mode")); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("mode",
				fmt.Sprintf("Invalid heatmap mode: %s", chi.URLParam(r, "mode"))))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bindSelection parses the shared filter query parameters. Supported
// parameters: region, market, date, sites (comma separated), granularity
// and risk_only.
func (h *TelemetryHandler) bindSelection(r *http.Request) (telemetry.FilterSelection, error) {
	q := r.URL.Query()

	sel := telemetry.FilterSelection{
		Region: q.Get("region"),
		Market: q.Get("market"),
		Date:   q.Get("date"),
	}
	if sel.Region == "" {
		sel.Region = telemetry.All
	}
	if sel.Market == "" {
		sel.Market = telemetry.All
	}
	if sel.Date == "" {
		sel.Date = telemetry.All
	}

	if raw := q.Get("sites"); raw != "" {
		for _, site := range strings.Split(raw, ",") {
			if site = strings.TrimSpace(site); site != "" {
				sel.Sites = append(sel.Sites, site)
			}
		}
	}

	g, err := telemetry.ParseGranularity(q.Get("granularity"))
	if err != nil {
		return sel, apierrors.ErrValidation("granularity", err.Error())
	}
	sel.Granularity = g

	if raw := q.Get("risk_only"); raw != "" {
		riskOnly, err := strconv.ParseBool(raw)
		if err != nil {
			return sel, apierrors.ErrValidation("risk_only", "must be a boolean")
		}
		sel.RiskOnly = riskOnly
	}

	return sel, nil
}

// handleViewError maps service errors to responses. Empty-result
// sentinels render as a 200 notice so the dashboard keeps its other
// panels alive; a missing source file is a 503.
func (h *TelemetryHandler) handleViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoData), errors.Is(err, services.ErrNoRiskSites):
		render.JSON(w, r, map[string]interface{}{
			"status": "empty",
			"notice": err.Error(),
		})
	case errors.Is(err, services.ErrUnknownSite):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("site"))
	case errors.Is(err, dataprocessing.ErrSourceMissing):
		h.errorHandler.HandleError(w, r, apierrors.SourceNotFoundError(err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetFilters handles GET /api/telemetry/filters.
func (h *TelemetryHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.FilterDomains(r.Context(), sel)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetHeatmap handles GET /api/telemetry/heatmap/{mode}.
func (h *TelemetryHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	mode, _ := telemetry.ParseMode(chi.URLParam(r, "mode"))

	view, err := h.service.Heatmap(r.Context(), sel, mode)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// DownloadHeatmap handles GET /api/telemetry/download/{mode}, streaming
// the colored spreadsheet of the current heatmap.
func (h *TelemetryHandler) DownloadHeatmap(w http.ResponseWriter, r *http.Request) {
	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	mode, _ := telemetry.ParseMode(chi.URLParam(r, "mode"))

	data, filename, err := h.service.ExportHeatmap(r.Context(), sel, mode)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "heatmap export generated",
		slog.String("mode", string(mode)),
		slog.String("filename", filename),
		slog.Int("bytes", len(data)))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetTrend handles GET /api/telemetry/trend/{site}.
func (h *TelemetryHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	if site == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("site", "Site identifier is required"))
		return
	}

	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.LatencyTrend(r.Context(), sel, site)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetDelaySummary handles GET /api/telemetry/summary/delay.
func (h *TelemetryHandler) GetDelaySummary(w http.ResponseWriter, r *http.Request) {
	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.DelaySummary(r.Context(), sel)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetRiskSummary handles GET /api/telemetry/summary/risk.
func (h *TelemetryHandler) GetRiskSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.RiskSummary(r.Context(), sel)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetZeroDistribution handles GET /api/telemetry/summary/zero.
func (h *TelemetryHandler) GetZeroDistribution(w http.ResponseWriter, r *http.Request) {
	sel, err := h.bindSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.ZeroDistribution(r.Context(), sel)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}
