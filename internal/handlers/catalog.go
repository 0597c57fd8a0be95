package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// CatalogHandler serves the instrument catalog as a page and as JSON.
type CatalogHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(logger *common.Logger, templates *template.Template, devMode bool) *CatalogHandler {
	return &CatalogHandler{
		logger:    logger,
		templates: templates,
		devMode:   devMode,
	}
}

// ServePage handles GET /resumen: instrument picker plus details of the
// chosen instruments.
func (h *CatalogHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbols := symbolsFromValues(r.URL.Query())
	chosen := catalog.Filter(symbols)

	selected := make(map[string]bool, len(chosen))
	kept := make([]string, len(chosen))
	for i, inst := range chosen {
		selected[inst.Symbol] = true
		kept[i] = inst.Symbol
	}

	data := pageData("resumen", "Resumen", h.devMode)
	data["Instruments"] = catalog.All()
	data["Selected"] = selected
	data["Chosen"] = chosen
	data["SymbolsParam"] = strings.Join(kept, ",")

	render(w, h.logger, h.templates, "resumen.html", data)
}

// List handles GET /api/instruments.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"instruments": catalog.All(),
	})
}

// Get handles GET /api/instruments/{symbol}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol := r.PathValue("symbol")
	inst, ok := catalog.BySymbol(symbol)
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown instrument: "+strings.ToUpper(symbol))
		return
	}
	WriteJSON(w, http.StatusOK, inst)
}

// periodView is a period option for JSON and templates.
type periodView struct {
	Code     models.PeriodCode `json:"code"`
	Label    string            `json:"label"`
	Selected bool              `json:"-"`
}

func periodViews(selected models.PeriodCode) []periodView {
	out := make([]periodView, len(models.AllPeriods))
	for i, p := range models.AllPeriods {
		out[i] = periodView{Code: p, Label: p.Label(), Selected: p == selected}
	}
	return out
}

// Periods handles GET /api/periods.
func (h *CatalogHandler) Periods(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"periods": periodViews(""),
	})
}
