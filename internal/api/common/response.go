// Package common provides the HTTP helpers shared by the API handlers.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes data as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

// WriteError writes an ErrorResponse with the given status code
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteQueryError classifies an error returned by the query service.
// subject names what was looked up (an entity ref or a project). Errors that
// do not match a known sentinel are logged and answered with fallback and a 500,
// so internal details never reach the client.
func WriteQueryError(w http.ResponseWriter, r *http.Request, err error, subject, fallback string) {
	switch {
	case errors.Is(err, pipeline.ErrEntityNotFound):
		WriteError(w, http.StatusUnprocessableEntity, "Entity not found: "+subject)
	case errors.Is(err, pipeline.ErrProjectNotFound):
		WriteError(w, http.StatusNotFound, "Project not found: "+subject)
	case errors.Is(err, pipeline.ErrCatalogUnavailable):
		slog.WarnContext(r.Context(), "Catalog unavailable", "subject", subject, "error", err)
		WriteError(w, http.StatusServiceUnavailable, "Catalog unavailable")
	default:
		slog.ErrorContext(r.Context(), fallback, "subject", subject, "error", err)
		WriteError(w, http.StatusInternalServerError, fallback)
	}
}
