package handler

import (
	"net/http"

	"go.uber.org/zap"

	"netseg/internal/prefs"
	"netseg/internal/service"
)

// PrefsHandler serves the preferences remembered between visits
type PrefsHandler struct {
	responder
	prefs       *prefs.Preferences
	departments *service.DepartmentService
}

// NewPrefsHandler creates a new preferences handler
func NewPrefsHandler(p *prefs.Preferences, departments *service.DepartmentService, logger *zap.Logger) *PrefsHandler {
	return &PrefsHandler{responder: responder{logger: logger}, prefs: p, departments: departments}
}

// prefValue is the body of a preference read or write
type prefValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *PrefsHandler) known(w http.ResponseWriter, key string) bool {
	switch key {
	case prefs.KeyActiveTab, prefs.KeySelectedDepartment:
		return true
	}
	h.writeError(w, "Not found", "unknown preference "+key, http.StatusNotFound)
	return false
}

// Get returns a preference; the active tab falls back to its default
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !h.known(w, key) {
		return
	}

	var (
		value string
		err   error
	)
	if key == prefs.KeyActiveTab {
		var tab prefs.Tab
		tab, err = h.prefs.ActiveTab(r.Context())
		value = string(tab)
	} else {
		value, err = h.prefs.SelectedDepartment(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, "Failed to read preference", err)
		return
	}
	h.writeJSON(w, prefValue{Key: key, Value: value}, http.StatusOK)
}

// Set stores a preference. Tabs must be known; departments must exist.
func (h *PrefsHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !h.known(w, key) {
		return
	}
	var req prefValue
	if !h.decode(w, r, &req) {
		return
	}

	if key == prefs.KeyActiveTab {
		if err := h.prefs.SetActiveTab(r.Context(), prefs.Tab(req.Value)); err != nil {
			h.writeServiceError(w, "Failed to store preference", service.NewValidationError("value", err.Error()))
			return
		}
	} else if _, err := h.departments.Select(r.Context(), req.Value); err != nil {
		h.writeServiceError(w, "Failed to store preference", err)
		return
	}
	h.writeJSON(w, prefValue{Key: key, Value: req.Value}, http.StatusOK)
}

// Delete forgets a preference
func (h *PrefsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !h.known(w, key) {
		return
	}
	if err := h.prefs.Store().Remove(r.Context(), key); err != nil {
		h.writeServiceError(w, "Failed to remove preference", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
