package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gagyebu/internal/core"
	"gagyebu/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Validation
// failures carry the offending field; everything unexpected is a bare
// 500 so internals don't leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *core.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message, Field: validation.Field})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, core.ErrLinkExpired):
		writeJSON(w, http.StatusGone, errorResponse{Error: "link expired"})
	case errors.Is(err, core.ErrRateUnavailable):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "exchange rate unavailable"})
	case errors.Is(err, core.ErrPersistenceRejected):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "write rejected"})
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldPath, r.URL.Path, log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
