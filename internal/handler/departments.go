package handler

import (
	"net/http"

	"go.uber.org/zap"

	"netseg/internal/domain"
	"netseg/internal/service"
)

// DepartmentHandler serves department zone configuration
type DepartmentHandler struct {
	responder
	svc *service.DepartmentService
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(svc *service.DepartmentService, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{responder: responder{logger: logger}, svc: svc}
}

// List returns all zones
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	zones, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list departments", err)
		return
	}
	h.writeJSON(w, zones, http.StatusOK)
}

// Get returns one zone
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	zone, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get department", err)
		return
	}
	h.writeJSON(w, zone, http.StatusOK)
}

// Update saves a zone configuration
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var cfg domain.ZoneConfig
	if !h.decode(w, r, &cfg) {
		return
	}

	zone, err := h.svc.Update(r.Context(), r.PathValue("id"), cfg)
	if err != nil {
		h.writeServiceError(w, "Failed to update department", err)
		return
	}
	h.writeJSON(w, zone, http.StatusOK)
}

// Select remembers a zone as the selected one
func (h *DepartmentHandler) Select(w http.ResponseWriter, r *http.Request) {
	zone, err := h.svc.Select(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to select department", err)
		return
	}
	h.writeJSON(w, zone, http.StatusOK)
}

// Selected returns the remembered zone, or 204 when none is selected
func (h *DepartmentHandler) Selected(w http.ResponseWriter, r *http.Request) {
	zone, err := h.svc.Selected(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to get selected department", err)
		return
	}
	if zone == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, zone, http.StatusOK)
}
