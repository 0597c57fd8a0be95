package server

import (
	"net/http"

	"github.com/bobmcallan/optimaxx-portal/internal/handlers"
)

// routes builds the mux. Pages come first, then static assets, MCP and the
// JSON API. Unknown /api/ paths get a JSON 404 instead of the landing page.
func (s *Server) routes() *http.ServeMux {
	a := s.app
	mux := http.NewServeMux()

	mux.Handle("/", a.LandingHandler)
	mux.HandleFunc("/resumen", a.CatalogHandler.ServePage)
	mux.HandleFunc("/estadistica", a.StatisticsHandler.ServePage)
	mux.Handle("/report", a.ReportHandler)
	mux.Handle("/static/", handlers.StaticHandler())

	if a.MCPHandler != nil {
		mux.Handle("/mcp", a.MCPHandler)
	}

	mux.HandleFunc("/api/health", a.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", handlers.ServeVersion)
	mux.HandleFunc("/api/instruments", a.CatalogHandler.List)
	mux.HandleFunc("GET /api/instruments/{symbol}", a.CatalogHandler.Get)
	mux.HandleFunc("/api/periods", a.CatalogHandler.Periods)
	mux.HandleFunc("/api/statistics", a.StatisticsHandler.Calculate)
	mux.HandleFunc("/api/statistics/return-risk", a.StatisticsHandler.ReturnRisk)
	mux.Handle("GET /api/charts/{chart}", a.ChartHandler)
	mux.HandleFunc("/api/", apiNotFound)

	return mux
}

// apiNotFound answers unmatched /api/ paths with a JSON 404.
func apiNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "no such endpoint: "+r.URL.Path)
}
