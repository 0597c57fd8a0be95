package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
	"github.com/bobmcallan/optimaxx-portal/internal/report"
)

// ReportHandler serves the printable calculation report.
type ReportHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
	service   StatisticsService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(logger *common.Logger, templates *template.Template, devMode bool, service StatisticsService) *ReportHandler {
	return &ReportHandler{
		logger:    logger,
		templates: templates,
		devMode:   devMode,
		service:   service,
	}
}

// ServeHTTP handles GET /report?… and POST /report (form fields).
// Responds with text/markdown when the client asks for it.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sel, err := selectionFromValues(r.Form)
	if err == nil {
		var rep models.Report
		rep, err = h.service.Calculate(r.Context(), sel)
		if err == nil {
			h.write(w, r, rep)
			return
		}
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		http.Error(w, validationMessage(ve), http.StatusBadRequest)
		return
	}
	h.logger.Error().Err(err).Msg("report calculation failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *ReportHandler) write(w http.ResponseWriter, r *http.Request, rep models.Report) {
	md := report.Markdown(rep)

	if r.Header.Get("Accept") == "text/markdown" || r.Form.Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
		return
	}

	body, err := report.HTML(md)
	if err != nil {
		h.logger.Error().Err(err).Msg("report rendering failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pageData("report", "Reporte", h.devMode)
	data["Body"] = template.HTML(body)
	data["ChartQuery"] = trustedQuery(selectionQuery(rep.Selection))

	render(w, h.logger, h.templates, "report.html", data)
}
