package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// StatisticsService computes portfolio statistics.
type StatisticsService interface {
	Calculate(ctx context.Context, sel models.Selection) (models.Report, error)
	ComputeReturnRisk(ctx context.Context, symbols []string, periods []models.PeriodCode) (models.ReturnRisk, error)
	MinCapital() float64
	Currency() string
}

// StatisticsHandler serves the statistics page and the statistics API.
type StatisticsHandler struct {
	logger         *common.Logger
	templates      *template.Template
	devMode        bool
	service        StatisticsService
	defaultCapital float64
	capitalStep    float64
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(logger *common.Logger, templates *template.Template, devMode bool, service StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{
		logger:         logger,
		templates:      templates,
		devMode:        devMode,
		service:        service,
		defaultCapital: service.MinCapital(),
		capitalStep:    10000,
	}
}

// SetCapitalDefaults sets the initial capital and input step of the form.
func (h *StatisticsHandler) SetCapitalDefaults(initial, step float64) {
	if initial > 0 {
		h.defaultCapital = initial
	}
	if step > 0 {
		h.capitalStep = step
	}
}

type weightInput struct {
	Symbol string
	Value  int
}

type metricRow struct {
	Symbol string
	Cells  []string
}

type expectedRow struct {
	Label    string
	Percent  string
	Capital  string
	Selected bool
}

// ServePage handles GET /estadistica. With calcular=1 it runs the
// calculation for the submitted selection.
func (h *StatisticsHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	q := r.URL.Query()
	sel, parseErr := selectionFromValues(q)
	if sel.Capital == 0 {
		sel.Capital = h.defaultCapital
	}
	if sel.Period == "" {
		sel.Period = models.AllPeriods[0]
	}

	data := pageData("estadistica", "Estadística", h.devMode)
	data["Symbols"] = sel.Symbols
	data["SymbolsParam"] = selectionQuery(models.Selection{Symbols: sel.Symbols}).Get("symbols")
	data["MinCapital"] = strconv.FormatFloat(h.service.MinCapital(), 'f', -1, 64)
	data["CapitalStep"] = strconv.FormatFloat(h.capitalStep, 'f', -1, 64)
	data["Capital"] = strconv.FormatFloat(sel.Capital, 'f', -1, 64)
	data["Periods"] = periodViews(sel.Period)
	data["ShowOptions"] = q.Get("opciones") == "1"

	inputs := make([]weightInput, len(sel.Symbols))
	for i, s := range sel.Symbols {
		inputs[i] = weightInput{Symbol: s, Value: sel.Weights[s]}
	}
	data["WeightInputs"] = inputs

	if q.Get("calcular") == "1" && len(sel.Symbols) > 0 {
		if parseErr != nil {
			data["Error"] = parseErr.Error()
		} else {
			report, err := h.service.Calculate(r.Context(), sel)
			var ve *models.ValidationError
			switch {
			case errors.As(err, &ve):
				data["Error"] = validationMessage(ve)
			case err != nil:
				h.logger.Error().Err(err).Msg("calculation failed")
				data["Error"] = "No fue posible completar el cálculo. Intente nuevamente."
			default:
				h.fillReport(data, report)
			}
		}
	}

	render(w, h.logger, h.templates, "estadistica.html", data)
}

func (h *StatisticsHandler) fillReport(data map[string]interface{}, report models.Report) {
	rr := report.Metrics

	headers := make([]string, 0, 2*len(rr.Periods))
	for _, p := range rr.Periods {
		headers = append(headers, "Rendimiento "+p.Header(), "Riesgo "+p.Header())
	}

	rows := make([]metricRow, len(rr.Symbols))
	for i, s := range rr.Symbols {
		row := metricRow{Symbol: s.Symbol}
		for _, p := range rr.Periods {
			m, _ := s.Get(p)
			row.Cells = append(row.Cells, common.FormatOptionalPct(m.Return), common.FormatOptionalPct(m.Risk))
		}
		rows[i] = row
	}

	expected := make([]expectedRow, len(report.ExpectedReturns))
	for i, e := range report.ExpectedReturns {
		expected[i] = expectedRow{
			Label:    e.Period.Label(),
			Percent:  common.FormatPct(e.Percent),
			Capital:  common.FormatMoneyWithCurrency(e.Capital, report.Currency),
			Selected: e.Selected,
		}
	}

	data["Report"] = report
	data["MetricHeaders"] = headers
	data["MetricRows"] = rows
	data["ExpectedRows"] = expected
	data["ChartQuery"] = trustedQuery(selectionQuery(report.Selection))
}

// validationMessage translates a ValidationError for the Spanish UI.
func validationMessage(ve *models.ValidationError) string {
	switch ve.Field {
	case "weights":
		return "La suma de los porcentajes debe ser exactamente 100%. Ajuste los valores. (" + ve.Message + ")"
	case "capital":
		return "El capital debe ser un monto válido, igual o mayor al mínimo permitido. (" + ve.Message + ")"
	case "symbols":
		return "Seleccione al menos un instrumento financiero."
	case "period":
		return "Seleccione un periodo válido."
	default:
		return ve.Error()
	}
}

// Calculate handles POST /api/statistics.
func (h *StatisticsHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var sel models.Selection
	if err := decodeJSON(r, &sel); err != nil {
		writeComputeError(w, h.logger, err)
		return
	}
	if sel.Period != "" {
		p, err := models.ParsePeriod(string(sel.Period))
		if err != nil {
			writeComputeError(w, h.logger, err)
			return
		}
		sel.Period = p
	}

	report, err := h.service.Calculate(r.Context(), sel)
	if err != nil {
		writeComputeError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

type returnRiskRequest struct {
	Symbols []string `json:"symbols"`
	Periods []string `json:"periods"`
}

// ReturnRisk handles POST /api/statistics/return-risk.
func (h *StatisticsHandler) ReturnRisk(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req returnRiskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeComputeError(w, h.logger, err)
		return
	}
	periods, err := models.ParsePeriods(req.Periods)
	if err != nil {
		writeComputeError(w, h.logger, err)
		return
	}

	rr, err := h.service.ComputeReturnRisk(r.Context(), req.Symbols, periods)
	if err != nil {
		writeComputeError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, rr)
}
