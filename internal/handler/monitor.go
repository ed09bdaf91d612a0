package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"netseg/internal/domain"
)

// MetricsSource provides the live network metrics
type MetricsSource interface {
	Snapshot() domain.MetricsSnapshot
	RefreshInterval() time.Duration
	SetRefreshInterval(d time.Duration)
}

// MonitorHandler serves the monitoring page
type MonitorHandler struct {
	responder
	source MetricsSource
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(source MetricsSource, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{responder: responder{logger: logger}, source: source}
}

// monitorResponse is the monitoring page state
type monitorResponse struct {
	domain.MetricsSnapshot
	RefreshSeconds int `json:"refresh_seconds"`
}

// Get returns the current metrics
func (h *MonitorHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, monitorResponse{
		MetricsSnapshot: h.source.Snapshot(),
		RefreshSeconds:  int(h.source.RefreshInterval() / time.Second),
	}, http.StatusOK)
}

// refreshRequest sets the refresh interval in seconds
type refreshRequest struct {
	Seconds int `json:"seconds"`
}

// SetRefresh changes how often the metrics update
func (h *MonitorHandler) SetRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Seconds < 1 || req.Seconds > 3600 {
		h.writeJSON(w, ErrorResponse{
			Error:   "Validation failed",
			Details: "seconds must be between 1 and 3600",
			Fields:  map[string]string{"seconds": "Must be between 1 and 3600"},
		}, http.StatusBadRequest)
		return
	}

	h.source.SetRefreshInterval(time.Duration(req.Seconds) * time.Second)
	h.writeJSON(w, refreshRequest{Seconds: req.Seconds}, http.StatusOK)
}
