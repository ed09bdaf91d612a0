package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"netseg/internal/service"
	"netseg/internal/topology"
)

// maxBodyBytes caps request bodies, imported designs included
const maxBodyBytes = 4 << 20

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// responder holds the shared write helpers
type responder struct {
	logger *zap.Logger
}

func (h responder) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h responder) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

// writeServiceError maps a service error to its status code. action reads
// like "Failed to add node".
func (h responder) writeServiceError(w http.ResponseWriter, action string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, ErrorResponse{
			Error:   "Validation failed",
			Details: verr.Error(),
			Fields:  verr.Fields,
		}, http.StatusBadRequest)
	case service.IsNotFound(err):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, topology.ErrSelfConnection),
		errors.Is(err, topology.ErrNotFixable),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrInvalidAction):
		h.writeError(w, action, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrDeployBlocked),
		errors.Is(err, service.ErrBusy):
		h.writeError(w, action, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrDeployTimeout):
		h.writeError(w, action, err.Error(), http.StatusGatewayTimeout)
	default:
		h.logger.Error(action, zap.Error(err))
		h.writeError(w, action, err.Error(), http.StatusInternalServerError)
	}
}

// decode reads a JSON body into v. It writes the 400 response itself and
// reports false when the body is unusable.
func (h responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
