package handlers

import (
	"html/template"
	"net/http"

	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
)

// LandingHandler renders the home page. It owns "/" and so answers 404 for
// any path no other route claimed.
type LandingHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
}

func NewLandingHandler(logger *common.Logger, templates *template.Template, devMode bool) *LandingHandler {
	return &LandingHandler{logger: logger, templates: templates, devMode: devMode}
}

func (h *LandingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := pageData("home", "Inicio", h.devMode)
	data["InstrumentCount"] = len(catalog.Symbols())
	render(w, h.logger, h.templates, "landing.html", data)
}
