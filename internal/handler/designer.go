package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"netseg/internal/domain"
	"netseg/internal/service"
	"netseg/internal/topology"
)

// DesignerHandler serves the network design canvas
type DesignerHandler struct {
	responder
	svc *service.DesignerService
}

// NewDesignerHandler creates a new designer handler
func NewDesignerHandler(svc *service.DesignerService, logger *zap.Logger) *DesignerHandler {
	return &DesignerHandler{responder: responder{logger: logger}, svc: svc}
}

// GetCanvas returns nodes, links, history state and options
func (h *DesignerHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Canvas(), http.StatusOK)
}

// ListNodes returns all nodes on the canvas
func (h *DesignerHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Nodes(), http.StatusOK)
}

// GetNode returns a single node
func (h *DesignerHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.Node(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// AddNode places a palette element on the canvas
func (h *DesignerHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req service.AddNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	node, err := h.svc.AddNode(req)
	if err != nil {
		h.writeServiceError(w, "Failed to add node", err)
		return
	}
	h.writeJSON(w, node, http.StatusCreated)
}

// UpdateNode applies a property patch
func (h *DesignerHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var patch domain.NodePatch
	if !h.decode(w, r, &patch) {
		return
	}

	node, err := h.svc.UpdateNode(r.PathValue("id"), patch)
	if err != nil {
		h.writeServiceError(w, "Failed to update node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode removes a node and its connections
func (h *DesignerHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveNode(r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNode drops a node at a new position
func (h *DesignerHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if !h.decode(w, r, &pos) {
		return
	}

	node, err := h.svc.MoveNode(r.PathValue("id"), pos)
	if err != nil {
		h.writeServiceError(w, "Failed to move node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// connectionResponse reports whether a connection edit changed anything
type connectionResponse struct {
	Changed bool          `json:"changed"`
	Links   []domain.Link `json:"links"`
}

// Connect links two nodes
func (h *DesignerHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req service.ConnectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	changed, err := h.svc.Connect(req)
	if err != nil {
		h.writeServiceError(w, "Failed to connect nodes", err)
		return
	}
	h.writeJSON(w, connectionResponse{Changed: changed, Links: h.svc.Canvas().Links}, http.StatusOK)
}

// Disconnect removes the link between ?a= and ?b=
func (h *DesignerHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	req := service.ConnectionRequest{
		A: r.URL.Query().Get("a"),
		B: r.URL.Query().Get("b"),
	}

	changed, err := h.svc.Disconnect(req)
	if err != nil {
		h.writeServiceError(w, "Failed to disconnect nodes", err)
		return
	}
	h.writeJSON(w, connectionResponse{Changed: changed, Links: h.svc.Canvas().Links}, http.StatusOK)
}

// historyResponse is the canvas after an undo or redo
type historyResponse struct {
	Applied bool           `json:"applied"`
	Canvas  service.Canvas `json:"canvas"`
}

// Undo steps back one edit
func (h *DesignerHandler) Undo(w http.ResponseWriter, r *http.Request) {
	_, applied := h.svc.Undo()
	h.writeJSON(w, historyResponse{Applied: applied, Canvas: h.svc.Canvas()}, http.StatusOK)
}

// Redo re-applies an undone edit
func (h *DesignerHandler) Redo(w http.ResponseWriter, r *http.Request) {
	_, applied := h.svc.Redo()
	h.writeJSON(w, historyResponse{Applied: applied, Canvas: h.svc.Canvas()}, http.StatusOK)
}

// Validate runs the design checks
func (h *DesignerHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Validate(), http.StatusOK)
}

// fixResponse carries the repaired node and the remaining findings
type fixResponse struct {
	Report *topology.Report `json:"report"`
	Node   domain.Node      `json:"node"`
}

// FixFinding applies the automatic fix of a finding
func (h *DesignerHandler) FixFinding(w http.ResponseWriter, r *http.Request) {
	report, node, err := h.svc.Fix(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to fix finding", err)
		return
	}
	h.writeJSON(w, fixResponse{Report: report, Node: node}, http.StatusOK)
}

// GetOptions returns the canvas settings
func (h *DesignerHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Options(), http.StatusOK)
}

// SetOptions changes the canvas settings
func (h *DesignerHandler) SetOptions(w http.ResponseWriter, r *http.Request) {
	var req service.OptionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	opts, err := h.svc.SetOptions(req)
	if err != nil {
		h.writeServiceError(w, "Failed to update options", err)
		return
	}
	h.writeJSON(w, opts, http.StatusOK)
}

// saveRequest names a design to save
type saveRequest struct {
	Name string `json:"name"`
}

// Save stores the canvas as a named design
func (h *DesignerHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !h.decode(w, r, &req) {
		return
	}

	summary, err := h.svc.Save(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, "Failed to save design", err)
		return
	}
	h.writeJSON(w, summary, http.StatusCreated)
}

// ListDesigns returns the saved designs
func (h *DesignerHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := h.svc.ListDesigns(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list designs", err)
		return
	}
	h.writeJSON(w, designs, http.StatusOK)
}

// LoadDesign replaces the canvas with a saved design
func (h *DesignerHandler) LoadDesign(w http.ResponseWriter, r *http.Request) {
	canvas, err := h.svc.LoadDesign(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeServiceError(w, "Failed to load design", err)
		return
	}
	h.writeJSON(w, canvas, http.StatusOK)
}

// DeleteDesign removes a saved design
func (h *DesignerHandler) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDesign(r.Context(), r.PathValue("name")); err != nil {
		h.writeServiceError(w, "Failed to delete design", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deployBlockedResponse lists the findings that stopped a deployment
type deployBlockedResponse struct {
	ErrorResponse
	Report *topology.Report `json:"report"`
}

// Deploy validates and deploys the design to the test environment
func (h *DesignerHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Deploy(r.Context())
	if errors.Is(err, service.ErrDeployBlocked) && result != nil {
		h.writeJSON(w, deployBlockedResponse{
			ErrorResponse: ErrorResponse{
				Error:   "Deployment blocked",
				Details: "Please fix high severity issues before deploying",
			},
			Report: result.Report,
		}, http.StatusConflict)
		return
	}
	if err != nil {
		h.writeServiceError(w, "Failed to deploy design", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// Export downloads the canvas as ?name= in the path's format
func (h *DesignerHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "network-design"
	}

	var buf bytes.Buffer
	contentType, err := h.svc.Export(format, name, &buf)
	if err != nil {
		h.writeServiceError(w, "Failed to export design", err)
		return
	}

	ext := format
	if ext == "yml" {
		ext = "yaml"
	}
	attachment(w, contentType, name+"."+ext)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", zap.Error(err))
	}
}

// Import replaces the canvas with an uploaded design document
func (h *DesignerHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	canvas, err := h.svc.Import(r.PathValue("format"), body)
	if err != nil {
		h.writeServiceError(w, "Failed to import design", err)
		return
	}
	h.writeJSON(w, canvas, http.StatusOK)
}
