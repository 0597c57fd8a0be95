package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// RequireMethod reports whether r uses one of methods, HEAD counting as
// GET. Otherwise it answers 405 with an Allow header and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m || (m == http.MethodGet && r.Method == http.MethodHead) {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteValidationError writes a 400 response naming the offending field.
func WriteValidationError(w http.ResponseWriter, ve *models.ValidationError) error {
	return WriteJSON(w, http.StatusBadRequest, map[string]string{
		"status": "error",
		"field":  ve.Field,
		"error":  ve.Error(),
	})
}

// writeComputeError maps an engine error to a JSON response.
func writeComputeError(w http.ResponseWriter, logger *common.Logger, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		WriteValidationError(w, ve)
		return
	}
	if logger != nil {
		logger.Error().Err(err).Msg("statistics computation failed")
	}
	WriteError(w, http.StatusInternalServerError, "statistics computation failed")
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
