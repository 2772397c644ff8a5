// Package http provides the JSON HTTP handlers and router of the FaultKeeper API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/FaultKeeper/internal/service"
	"github.com/atinyakov/FaultKeeper/internal/validation"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes. Unknown errors are logged
// and answered with a generic 500 so the client can offer a retry.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: service.ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrQuotaExceeded):
		writeJSON(w, http.StatusPaymentRequired, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrUpgradeRequired):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "temporarily unavailable, please retry"})
	}
}

func notFound(w http.ResponseWriter) {
	writeError(w, nil, service.ErrNotFound)
}
