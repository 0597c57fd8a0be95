package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/charts"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// ChartHandler serves statistics charts as PNG images.
type ChartHandler struct {
	logger  *common.Logger
	service StatisticsService
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(logger *common.Logger, service StatisticsService) *ChartHandler {
	return &ChartHandler{logger: logger, service: service}
}

// ServeHTTP handles GET /api/charts/{chart}.png where chart is return,
// risk or expected. The selection comes from the query string.
func (h *ChartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	name := strings.TrimSuffix(r.PathValue("chart"), ".png")
	sel, err := selectionFromValues(r.URL.Query())
	if err != nil {
		writeComputeError(w, h.logger, err)
		return
	}

	var png []byte
	switch name {
	case "return", "risk":
		rr, cerr := h.service.ComputeReturnRisk(r.Context(), sel.Symbols, nil)
		if cerr != nil {
			writeComputeError(w, h.logger, cerr)
			return
		}
		if name == "return" {
			png, err = charts.ReturnChart(rr)
		} else {
			png, err = charts.RiskChart(rr)
		}
	case "expected":
		report, cerr := h.service.Calculate(r.Context(), sel)
		if cerr != nil {
			writeComputeError(w, h.logger, cerr)
			return
		}
		png, err = charts.ExpectedReturnChart(report.ExpectedReturns)
	default:
		WriteError(w, http.StatusNotFound, "unknown chart: "+name)
		return
	}

	if errors.Is(err, charts.ErrNoValues) {
		WriteValidationError(w, &models.ValidationError{Field: "symbols", Message: "no price data available to chart"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("chart", name).Msg("chart rendering failed")
		WriteError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
