package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"netseg/internal/domain"
	"netseg/internal/service"
)

// TestHandler serves the connectivity tester
type TestHandler struct {
	responder
	svc *service.TestingService
}

// NewTestHandler creates a new test handler
func NewTestHandler(svc *service.TestingService, logger *zap.Logger) *TestHandler {
	return &TestHandler{responder: responder{logger: logger}, svc: svc}
}

// Endpoints returns the selectable test hosts
func (h *TestHandler) Endpoints(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Endpoints(), http.StatusOK)
}

// History returns results newest first, up to ?limit=
func (h *TestHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	results, err := h.svc.History(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, "Failed to list test results", err)
		return
	}
	h.writeJSON(w, results, http.StatusOK)
}

// Run executes one test and returns its result
func (h *TestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req domain.TestRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.Run(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "Failed to run test", err)
		return
	}
	h.writeJSON(w, result, http.StatusCreated)
}

// RunBatch tests every pair of endpoints
func (h *TestHandler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req service.BatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	results, err := h.svc.RunBatch(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "Failed to run batch test", err)
		return
	}
	h.writeJSON(w, results, http.StatusCreated)
}

// Clear deletes the test history
func (h *TestHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to clear test results", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export downloads the test history as JSON
func (h *TestHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filename, err := h.svc.Export(r.Context(), &buf)
	if err != nil {
		h.writeServiceError(w, "Failed to export test results", err)
		return
	}

	attachment(w, "application/json", filename)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write test export", zap.Error(err))
	}
}
