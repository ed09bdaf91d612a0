package handler

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"netseg/internal/domain"
	"netseg/internal/service"
)

// HostHandler serves virtual host management
type HostHandler struct {
	responder
	svc *service.HostService
}

// NewHostHandler creates a new host handler
func NewHostHandler(svc *service.HostService, logger *zap.Logger) *HostHandler {
	return &HostHandler{responder: responder{logger: logger}, svc: svc}
}

// List returns hosts filtered by ?search=, ?department=, ?status= and
// ?subnet=, ordered by ?sort= (with ?order=desc)
func (h *HostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.HostFilter{
		Search:     q.Get("search"),
		Department: domain.Department(q.Get("department")),
		Status:     domain.HostStatus(q.Get("status")),
		Subnet:     q.Get("subnet"),
		SortBy:     service.HostSortKey(q.Get("sort")),
		Desc:       q.Get("order") == "desc",
	}

	hosts, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, "Failed to list hosts", err)
		return
	}
	h.writeJSON(w, hosts, http.StatusOK)
}

// Stats counts hosts by status
func (h *HostHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to count hosts", err)
		return
	}
	h.writeJSON(w, stats, http.StatusOK)
}

// Get returns one host
func (h *HostHandler) Get(w http.ResponseWriter, r *http.Request) {
	host, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get host", err)
		return
	}
	h.writeJSON(w, host, http.StatusOK)
}

// Create adds a host; it starts in the background
func (h *HostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var spec domain.HostSpec
	if !h.decode(w, r, &spec) {
		return
	}

	host, err := h.svc.Create(r.Context(), spec)
	if err != nil {
		h.writeServiceError(w, "Failed to create host", err)
		return
	}
	h.writeJSON(w, host, http.StatusCreated)
}

// Update edits a host
func (h *HostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var spec domain.HostSpec
	if !h.decode(w, r, &spec) {
		return
	}

	host, err := h.svc.Update(r.Context(), r.PathValue("id"), spec)
	if err != nil {
		h.writeServiceError(w, "Failed to update host", err)
		return
	}
	h.writeJSON(w, host, http.StatusOK)
}

// Delete removes a host
func (h *HostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to delete host", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Action applies start, stop, restart or delete to one host
func (h *HostHandler) Action(w http.ResponseWriter, r *http.Request) {
	action := domain.HostAction(r.PathValue("action"))
	host, err := h.svc.Action(r.Context(), r.PathValue("id"), action)
	if err != nil {
		h.writeServiceError(w, "Failed to apply host action", err)
		return
	}
	if host == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, host, http.StatusOK)
}

// bulkRequest applies one action to many hosts
type bulkRequest struct {
	Action domain.HostAction `json:"action"`
	IDs    []string          `json:"ids"`
}

// Bulk applies an action to every selected host
func (h *HostHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !h.decode(w, r, &req) {
		return
	}

	hosts, err := h.svc.Bulk(r.Context(), req.Action, req.IDs)
	if err != nil {
		h.writeServiceError(w, "Failed to apply bulk action", err)
		return
	}
	h.writeJSON(w, hosts, http.StatusOK)
}

// Inventory downloads the hosts as an Ansible inventory
func (h *HostHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.Inventory(r.Context(), &buf); err != nil {
		h.writeServiceError(w, "Failed to export inventory", err)
		return
	}

	attachment(w, "application/x-yaml", "inventory.yml")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write inventory", zap.Error(err))
	}
}
