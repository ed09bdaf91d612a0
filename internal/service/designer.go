package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/codec"
	"netseg/internal/domain"
	"netseg/internal/metrics"
	"netseg/internal/repository"
	"netseg/internal/topology"
)

// DesignerConfig holds the simulated toolbar delays
type DesignerConfig struct {
	SaveDelay     time.Duration
	DeployDelay   time.Duration
	DeployTimeout time.Duration
}

// DefaultDesignerConfig mirrors the delays of the designer toolbar
func DefaultDesignerConfig() DesignerConfig {
	return DesignerConfig{
		SaveDelay:     2 * time.Second,
		DeployDelay:   3 * time.Second,
		DeployTimeout: 30 * time.Second,
	}
}

// AddNodeRequest places a palette element on the canvas
type AddNodeRequest struct {
	Type     domain.NodeType `json:"type" validate:"required,nodetype"`
	Name     string          `json:"name"`
	Position domain.Position `json:"position"`
}

// ConnectionRequest names the two endpoints of a connection
type ConnectionRequest struct {
	A string `json:"a" validate:"required,notblank"`
	B string `json:"b" validate:"required,notblank"`
}

// OptionsRequest changes canvas settings; nil fields are left unchanged
type OptionsRequest struct {
	GridUnit          *float64           `json:"grid_unit,omitempty" validate:"omitnil,gt=0"`
	Snap              *bool              `json:"snap,omitempty"`
	ConflictMode      *string            `json:"conflict_mode,omitempty" validate:"omitnil,oneof=exact overlap"`
	DefaultDepartment *domain.Department `json:"default_department,omitempty" validate:"omitnil,notblank,department"`
}

// Canvas is the full view of the editing session
type Canvas struct {
	Nodes    []domain.Node         `json:"nodes"`
	Links    []domain.Link         `json:"links"`
	History  topology.HistoryState `json:"history"`
	Options  topology.Options      `json:"options"`
	Report   *topology.Report      `json:"report,omitempty"`
	Revision uint64                `json:"revision"`
}

// DeployResult is returned by a successful deployment
type DeployResult struct {
	Report     *topology.Report `json:"report"`
	DeployedAt time.Time        `json:"deployed_at"`
}

// DesignerService serializes access to the editing session and persists
// saved designs
type DesignerService struct {
	mu      sync.Mutex
	session *topology.Session

	deploying bool

	repo     repository.DesignRepository
	forms    *FormValidator
	eventBus *EventBus
	clock    clock.Clock
	metrics  *metrics.Registry
	logger   *zap.Logger
	cfg      DesignerConfig
}

// NewDesignerService creates a designer around session
func NewDesignerService(
	session *topology.Session,
	repo repository.DesignRepository,
	forms *FormValidator,
	eventBus *EventBus,
	clk clock.Clock,
	reg *metrics.Registry,
	logger *zap.Logger,
	cfg DesignerConfig,
) *DesignerService {
	return &DesignerService{
		session:  session,
		repo:     repo,
		forms:    forms,
		eventBus: eventBus,
		clock:    clk,
		metrics:  reg,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetConfig replaces the delays; used on config reload
func (s *DesignerService) SetConfig(cfg DesignerConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Canvas returns the nodes, links, history and cached report
func (s *DesignerService) Canvas() Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.session.Nodes()
	c := Canvas{
		Nodes:    nodes,
		Links:    domain.DeriveLinks(nodes),
		History:  s.session.History(),
		Options:  s.session.Options(),
		Revision: s.session.Revision(),
	}
	if r, ok := s.session.Report(); ok {
		c.Report = r
	}
	return c
}

// Nodes returns all nodes on the canvas
func (s *DesignerService) Nodes() []domain.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Nodes()
}

// Node returns one node
func (s *DesignerService) Node(id string) (domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Node(id)
}

// AddNode places a new element. Unnamed elements are called "New <type>".
func (s *DesignerService) AddNode(req AddNodeRequest) (domain.Node, error) {
	if err := s.forms.Validate(&req); err != nil {
		return domain.Node{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "New " + req.Type.Label()
	}

	s.mu.Lock()
	n := s.session.AddNode(domain.NewNode(req.Type, name, req.Position))
	s.mutated("add")
	s.mu.Unlock()

	s.logger.Debug("node added", zap.String("node_id", n.ID), zap.String("type", string(n.Type)))
	s.eventBus.Publish(Event{
		Type:    EventNodeAdded,
		Payload: n,
	})
	return n, nil
}

// UpdateNode validates and applies a property patch
func (s *DesignerService) UpdateNode(id string, patch domain.NodePatch) (domain.Node, error) {
	if err := s.forms.Validate(&patch); err != nil {
		return domain.Node{}, err
	}

	s.mu.Lock()
	n, err := s.session.UpdateNode(id, patch)
	if err == nil {
		s.mutated("update")
	}
	s.mu.Unlock()
	if err != nil {
		return domain.Node{}, err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeUpdated,
		Payload: n,
	})
	return n, nil
}

// RemoveNode deletes a node along with its connections
func (s *DesignerService) RemoveNode(id string) error {
	s.mu.Lock()
	err := s.session.RemoveNode(id)
	if err == nil {
		s.mutated("remove")
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug("node removed", zap.String("node_id", id))
	s.eventBus.Publish(Event{
		Type:    EventNodeRemoved,
		Payload: map[string]string{"node_id": id},
	})
	return nil
}

// MoveNode repositions a node, snapping when enabled
func (s *DesignerService) MoveNode(id string, pos domain.Position) (domain.Node, error) {
	s.mu.Lock()
	n, err := s.session.MoveNode(id, pos)
	if err == nil {
		s.mutated("move")
	}
	s.mu.Unlock()
	if err != nil {
		return domain.Node{}, err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeMoved,
		Payload: map[string]interface{}{"node_id": id, "position": n.Position},
	})
	return n, nil
}

// Connect links two nodes. Connecting an already linked pair changes nothing.
func (s *DesignerService) Connect(req ConnectionRequest) (bool, error) {
	return s.setConnection(req, true)
}

// Disconnect unlinks two nodes
func (s *DesignerService) Disconnect(req ConnectionRequest) (bool, error) {
	return s.setConnection(req, false)
}

func (s *DesignerService) setConnection(req ConnectionRequest, connect bool) (bool, error) {
	if err := s.forms.Validate(&req); err != nil {
		return false, err
	}

	s.mu.Lock()
	var (
		changed bool
		err     error
		op      = "disconnect"
	)
	if connect {
		op = "connect"
		changed, err = s.session.Connect(req.A, req.B)
	} else {
		changed, err = s.session.Disconnect(req.A, req.B)
	}
	if changed {
		s.mutated(op)
	}
	s.mu.Unlock()
	if err != nil || !changed {
		return false, err
	}

	s.eventBus.Publish(Event{
		Type:    EventConnectionChanged,
		Payload: map[string]interface{}{"a": req.A, "b": req.B, "connected": connect},
	})
	return true, nil
}

// mutated must be called with s.mu held
func (s *DesignerService) mutated(op string) {
	s.metrics.RecordMutation(op, s.session.Len())
	s.publishHistory()
}

func (s *DesignerService) publishHistory() {
	s.eventBus.Publish(Event{
		Type:    EventHistoryChanged,
		Payload: s.session.History(),
	})
}

// Undo steps back one snapshot; false when already at the oldest one
func (s *DesignerService) Undo() (topology.HistoryState, bool) {
	return s.step(s.session.Undo)
}

// Redo steps forward one snapshot; false when already at the newest one
func (s *DesignerService) Redo() (topology.HistoryState, bool) {
	return s.step(s.session.Redo)
}

func (s *DesignerService) step(fn func() bool) (topology.HistoryState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := fn()
	if ok {
		s.metrics.SetNodeCount(s.session.Len())
		s.publishHistory()
	}
	return s.session.History(), ok
}

// Validate runs all topology checks against the current canvas
func (s *DesignerService) Validate() *topology.Report {
	s.mu.Lock()
	report := s.session.Validate()
	s.mu.Unlock()

	s.metrics.RecordValidation(report.Findings)
	s.logger.Info("topology validated",
		zap.Int("findings", len(report.Findings)),
		zap.Bool("blocking", report.HasBlocking()))
	s.eventBus.Publish(Event{
		Type:    EventValidationCompleted,
		Payload: report,
	})
	return report
}

// Fix applies the automatic fix for a finding of the current report
func (s *DesignerService) Fix(findingID string) (*topology.Report, domain.Node, error) {
	s.mu.Lock()
	report, n, err := s.session.Fix(findingID)
	if err == nil {
		s.mutated("fix")
	}
	s.mu.Unlock()
	if err != nil {
		return nil, domain.Node{}, err
	}

	s.logger.Info("finding fixed", zap.String("finding_id", findingID), zap.String("node_id", n.ID))
	s.eventBus.Publish(Event{
		Type:    EventFindingFixed,
		Payload: map[string]interface{}{"finding_id": findingID, "node": n, "report": report},
	})
	return report, n, nil
}

// Options returns the canvas settings
func (s *DesignerService) Options() topology.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Options()
}

// SetOptions changes canvas settings
func (s *DesignerService) SetOptions(req OptionsRequest) (topology.Options, error) {
	if err := s.forms.Validate(&req); err != nil {
		return topology.Options{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.session.Options()
	unit, snap := current.GridUnit, current.Snap
	if req.GridUnit != nil {
		unit = *req.GridUnit
	}
	if req.Snap != nil {
		snap = *req.Snap
	}
	s.session.SetSnap(unit, snap)

	if req.ConflictMode != nil {
		mode, err := topology.ParseConflictMode(*req.ConflictMode)
		if err != nil {
			return topology.Options{}, NewValidationError("conflict_mode", err.Error())
		}
		s.session.SetConflictMode(mode)
	}
	if req.DefaultDepartment != nil {
		s.session.SetDefaultDepartment(*req.DefaultDepartment)
	}
	return s.session.Options(), nil
}

// Save stores the canvas under name once the simulated save delay has passed
func (s *DesignerService) Save(ctx context.Context, name string) (domain.DesignSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.DesignSummary{}, NewValidationError("name", "Name is required")
	}

	s.mu.Lock()
	nodes := s.session.Nodes()
	delay := s.cfg.SaveDelay
	s.mu.Unlock()

	if err := clock.Sleep(ctx, s.clock, delay); err != nil {
		return domain.DesignSummary{}, err
	}

	design := domain.NewDesign(name, nodes, s.clock.Now().UTC())
	if err := s.repo.SaveDesign(ctx, design); err != nil {
		return domain.DesignSummary{}, fmt.Errorf("failed to save design: %w", err)
	}

	summary := design.Summary()
	s.logger.Info("design saved", zap.String("name", name), zap.Int("nodes", summary.NodeCount))
	s.eventBus.Publish(Event{
		Type:    EventDesignSaved,
		Payload: summary,
	})
	return summary, nil
}

// ListDesigns returns the saved designs
func (s *DesignerService) ListDesigns(ctx context.Context) ([]domain.DesignSummary, error) {
	return s.repo.ListDesigns(ctx)
}

// LoadDesign replaces the canvas with a saved design and restarts history
func (s *DesignerService) LoadDesign(ctx context.Context, name string) (Canvas, error) {
	design, err := s.repo.GetDesign(ctx, name)
	if err != nil {
		return Canvas{}, fmt.Errorf("failed to load design: %w", err)
	}
	if design == nil {
		return Canvas{}, fmt.Errorf("design %s: %w", name, ErrNotFound)
	}
	return s.load(design), nil
}

// DeleteDesign removes a saved design
func (s *DesignerService) DeleteDesign(ctx context.Context, name string) error {
	design, err := s.repo.GetDesign(ctx, name)
	if err != nil {
		return err
	}
	if design == nil {
		return fmt.Errorf("design %s: %w", name, ErrNotFound)
	}
	return s.repo.DeleteDesign(ctx, name)
}

func (s *DesignerService) load(design *domain.Design) Canvas {
	s.mu.Lock()
	s.session.Load(design.Nodes)
	s.metrics.SetNodeCount(s.session.Len())
	s.publishHistory()
	s.mu.Unlock()

	s.logger.Info("design loaded", zap.String("name", design.Name), zap.Int("nodes", len(design.Nodes)))
	s.eventBus.Publish(Event{
		Type:    EventCanvasLoaded,
		Payload: map[string]interface{}{"name": design.Name, "nodes": len(design.Nodes)},
	})
	return s.Canvas()
}

// Deploy validates the canvas and, when nothing blocks it, runs the
// simulated deployment. The wait ends early on ctx cancellation or once
// the deploy timeout elapses.
func (s *DesignerService) Deploy(ctx context.Context) (*DeployResult, error) {
	s.mu.Lock()
	if s.deploying {
		s.mu.Unlock()
		return nil, fmt.Errorf("deploy: %w", ErrBusy)
	}
	report := s.session.Validate()
	cfg := s.cfg
	if !report.HasBlocking() {
		s.deploying = true
	}
	s.mu.Unlock()

	s.metrics.RecordValidation(report.Findings)
	if report.HasBlocking() {
		s.metrics.RecordDeployment("blocked")
		return &DeployResult{Report: report}, ErrDeployBlocked
	}
	defer func() {
		s.mu.Lock()
		s.deploying = false
		s.mu.Unlock()
	}()

	var timeout <-chan time.Time
	if cfg.DeployTimeout > 0 {
		timeout = s.clock.After(cfg.DeployTimeout)
	}

	select {
	case <-s.clock.After(cfg.DeployDelay):
	case <-timeout:
		s.metrics.RecordDeployment("timeout")
		return nil, ErrDeployTimeout
	case <-ctx.Done():
		s.metrics.RecordDeployment("canceled")
		return nil, ctx.Err()
	}

	result := &DeployResult{Report: report, DeployedAt: s.clock.Now().UTC()}
	s.metrics.RecordDeployment("deployed")
	s.logger.Info("design deployed to test environment", zap.Int("findings", len(report.Findings)))
	s.eventBus.Publish(Event{
		Type:    EventDesignDeployed,
		Payload: result,
	})
	return result, nil
}

// Export writes the canvas in the given format and returns its content type
func (s *DesignerService) Export(format, name string, w io.Writer) (string, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if name == "" {
		name = "network-design"
	}

	design := domain.NewDesign(name, s.Nodes(), s.clock.Now().UTC())
	var buf bytes.Buffer
	if err := c.Export(design, &buf); err != nil {
		return "", err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return "", err
	}
	return c.ContentType(), nil
}

// Import replaces the canvas with a design document
func (s *DesignerService) Import(format string, r io.Reader) (Canvas, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return Canvas{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	design, err := c.Parse(r)
	if err != nil {
		return Canvas{}, NewValidationError("document", err.Error())
	}
	return s.load(design), nil
}

// IsNotFound reports whether err means a missing node, finding, design,
// department or host
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, topology.ErrNotFound) ||
		errors.Is(err, topology.ErrFindingNotFound)
}
