package handlers

import (
	"net/http"

	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
)

// HealthHandler answers liveness probes and reports the price store state.
type HealthHandler struct {
	logger      *common.Logger
	storeStatus func() string
	history     interfaces.WarmLog
}

func NewHealthHandler(logger *common.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// SetStoreStatus reports the persistent price store state ("ok", "disabled").
func (h *HealthHandler) SetStoreStatus(fn func() string) {
	h.storeStatus = fn
}

// SetWarmHistory adds the most recent warmer run to the response.
func (h *HealthHandler) SetWarmHistory(log interfaces.WarmLog) {
	h.history = log
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	body := map[string]interface{}{
		"status":      "ok",
		"instruments": len(catalog.Symbols()),
		"store":       "disabled",
	}
	if h.storeStatus != nil {
		body["store"] = h.storeStatus()
	}
	if h.history != nil {
		runs, err := h.history.Recent(r.Context(), 1)
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to read warm history")
		} else if len(runs) == 1 {
			body["last_warm"] = runs[0]
		}
	}

	WriteJSON(w, http.StatusOK, body)
}

// ServeVersion handles GET /api/version.
func ServeVersion(w http.ResponseWriter, r *http.Request) {
	if RequireMethod(w, r, http.MethodGet) {
		WriteJSON(w, http.StatusOK, config.Version())
	}
}
