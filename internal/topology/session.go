package topology

import (
	"fmt"

	"netseg/internal/domain"
)

// SessionConfig holds the tunables of an editing session
type SessionConfig struct {
	GridUnit          float64
	Snap              bool
	HistoryLimit      int
	ConflictMode      ConflictMode
	DefaultDepartment domain.Department
	IDGenerator       IDGenerator
}

// DefaultSessionConfig returns the designer defaults
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		GridUnit:          domain.DefaultGridUnit,
		Snap:              true,
		HistoryLimit:      100,
		ConflictMode:      ConflictExact,
		DefaultDepartment: domain.DepartmentIT,
	}
}

// Options is the view of the canvas settings exposed to clients
type Options struct {
	GridUnit          float64           `json:"grid_unit"`
	Snap              bool              `json:"snap"`
	ConflictMode      ConflictMode      `json:"conflict_mode"`
	DefaultDepartment domain.Department `json:"default_department"`
}

// HistoryState describes where the session is in its undo list
type HistoryState struct {
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
	Cursor  int  `json:"cursor"`
	Len     int  `json:"len"`
}

// Session is one editing session of the designer canvas. Successful
// mutations record a history snapshot and discard the cached report.
// A Session is not safe for concurrent use.
type Session struct {
	store       *Store
	history     *History
	validator   *Validator
	report      *Report
	revision    uint64
	defaultDept domain.Department
}

// NewSession creates an empty canvas whose history starts at the empty state
func NewSession(cfg SessionConfig) *Session {
	opts := []Option{WithGrid(cfg.GridUnit, cfg.Snap)}
	if cfg.IDGenerator != nil {
		opts = append(opts, WithIDGenerator(cfg.IDGenerator))
	}
	store := NewStore(opts...)

	dept := cfg.DefaultDepartment
	if dept == domain.DepartmentNone || !dept.Valid() {
		dept = domain.DepartmentIT
	}
	return &Session{
		store:       store,
		history:     NewHistory(store.Snapshot(), cfg.HistoryLimit),
		validator:   NewValidator(cfg.ConflictMode),
		defaultDept: dept,
	}
}

// SeedCanvas returns the starter canvas: two department VLANs behind a core
// switch and a router
func SeedCanvas() Snapshot {
	vlan := func(id, name string, dept domain.Department, ipRange string, x float64) domain.Node {
		n := domain.NewNode(domain.NodeTypeVLAN, name, domain.Position{X: x, Y: 150})
		n.ID = id
		n.Department = dept
		n.IPRange = ipRange
		n.Connections = []string{"switch-1"}
		return n
	}
	sw := domain.NewNode(domain.NodeTypeSwitch, "Core Switch", domain.Position{X: 300, Y: 300})
	sw.ID = "switch-1"
	sw.Connections = []string{"vlan-1", "vlan-2", "router-1"}

	rt := domain.NewNode(domain.NodeTypeRouter, "Main Router", domain.Position{X: 300, Y: 450})
	rt.ID = "router-1"
	rt.Connections = []string{"switch-1"}

	return Snapshot{
		vlan("vlan-1", "HR VLAN", domain.DepartmentHR, "192.168.10.0/24", 200),
		vlan("vlan-2", "IT VLAN", domain.DepartmentIT, "192.168.20.0/24", 400),
		sw,
		rt,
	}
}

// Seed replaces the canvas with the starter canvas
func (s *Session) Seed() {
	s.Load(SeedCanvas())
}

// Load replaces the canvas with nodes and restarts history from it
func (s *Session) Load(nodes []domain.Node) {
	s.store.Restore(Snapshot(nodes))
	s.history.Reset(s.store.Snapshot())
	s.changed()
}

func (s *Session) changed() {
	s.revision++
	s.report = nil
}

func (s *Session) commit() {
	s.history.Record(s.store.Snapshot())
	s.changed()
}

// Revision increases on every change to the canvas
func (s *Session) Revision() uint64 { return s.revision }

// Nodes returns copies of all nodes in insertion order
func (s *Session) Nodes() []domain.Node { return s.store.Nodes() }

// Node returns a copy of one node
func (s *Session) Node(id string) (domain.Node, error) { return s.store.Node(id) }

// Len returns the number of nodes on the canvas
func (s *Session) Len() int { return s.store.Len() }

// AddNode places a node on the canvas
func (s *Session) AddNode(n domain.Node) domain.Node {
	stored := s.store.AddNode(n)
	s.commit()
	return stored
}

// UpdateNode merges patch into a node
func (s *Session) UpdateNode(id string, patch domain.NodePatch) (domain.Node, error) {
	n, err := s.store.UpdateNode(id, patch)
	if err != nil {
		return domain.Node{}, err
	}
	s.commit()
	return n, nil
}

// RemoveNode deletes a node and its connections
func (s *Session) RemoveNode(id string) error {
	if err := s.store.RemoveNode(id); err != nil {
		return err
	}
	s.commit()
	return nil
}

// MoveNode changes a node's position
func (s *Session) MoveNode(id string, pos domain.Position) (domain.Node, error) {
	n, err := s.store.MoveNode(id, pos)
	if err != nil {
		return domain.Node{}, err
	}
	s.commit()
	return n, nil
}

// Connect links two nodes; no history entry is recorded for a no-op
func (s *Session) Connect(a, b string) (bool, error) {
	changed, err := s.store.Connect(a, b)
	if err != nil || !changed {
		return false, err
	}
	s.commit()
	return true, nil
}

// Disconnect unlinks two nodes; no history entry is recorded for a no-op
func (s *Session) Disconnect(a, b string) (bool, error) {
	changed, err := s.store.Disconnect(a, b)
	if err != nil || !changed {
		return false, err
	}
	s.commit()
	return true, nil
}

// Undo restores the previous snapshot; false when there is nothing to undo
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.store.Restore(snap)
	s.changed()
	return true
}

// Redo restores the next snapshot; false when there is nothing to redo
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.store.Restore(snap)
	s.changed()
	return true
}

// History returns the undo/redo state
func (s *Session) History() HistoryState {
	return HistoryState{
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
		Cursor:  s.history.Cursor(),
		Len:     s.history.Len(),
	}
}

// Validate runs a full validation pass and caches the result
func (s *Session) Validate() *Report {
	s.report = &Report{
		Findings: s.validator.Validate(s.store.Nodes()),
		Revision: s.revision,
	}
	return s.report.Clone()
}

// Report returns the cached report, if the canvas has not changed since it
// was computed
func (s *Session) Report() (*Report, bool) {
	if s.report == nil {
		return nil, false
	}
	return s.report.Clone(), true
}

// Fix applies the automatic fix for a finding of the current report.
// Only that finding is dropped from the cached report; the rest stays valid
// because a fix changes nothing the other checks looked at.
func (s *Session) Fix(findingID string) (*Report, domain.Node, error) {
	if s.report == nil {
		s.Validate()
	}
	f, ok := s.report.Find(findingID)
	if !ok {
		return nil, domain.Node{}, fmt.Errorf("%w: %s", ErrFindingNotFound, findingID)
	}

	n, err := Fix(s.store, f, s.defaultDept)
	if err != nil {
		return nil, domain.Node{}, err
	}

	report := s.report
	s.commit()
	report.Remove(findingID)
	report.Revision = s.revision
	s.report = report
	return report.Clone(), n, nil
}

// Options returns the current canvas settings
func (s *Session) Options() Options {
	return Options{
		GridUnit:          s.store.GridUnit(),
		Snap:              s.store.SnapEnabled(),
		ConflictMode:      s.validator.Mode(),
		DefaultDepartment: s.defaultDept,
	}
}

// SetSnap changes grid settings; existing positions are left as they are
func (s *Session) SetSnap(unit float64, enabled bool) {
	s.store.SetSnap(unit, enabled)
}

// SetConflictMode switches the IP conflict comparison and drops the cached report
func (s *Session) SetConflictMode(mode ConflictMode) {
	s.validator = NewValidator(mode)
	s.report = nil
}

// SetDefaultDepartment changes the department assigned by the department fix
func (s *Session) SetDefaultDepartment(d domain.Department) {
	if d != domain.DepartmentNone && d.Valid() {
		s.defaultDept = d
	}
}
