// Package topology implements the in-memory design canvas: the graph store,
// its undo/redo history, the validator and the editing session tying them
// together.
package topology

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"netseg/internal/domain"
)

var (
	ErrNotFound        = errors.New("node not found")
	ErrSelfConnection  = errors.New("cannot connect a node to itself")
	ErrFindingNotFound = errors.New("finding not found")
	ErrNotFixable      = errors.New("finding has no automatic fix")
)

// IDGenerator returns a fresh id for a node of the given type
type IDGenerator func(t domain.NodeType) string

func defaultID(t domain.NodeType) string {
	return fmt.Sprintf("%s-%s", t, uuid.NewString())
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator overrides how node ids are generated
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithGrid sets the grid unit and whether moves snap to it
func WithGrid(unit float64, snap bool) Option {
	return func(s *Store) {
		s.SetSnap(unit, snap)
	}
}

// Snapshot is a deep copy of the canvas contents in insertion order
type Snapshot []domain.Node

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, n := range s {
		out[i] = n.Clone()
	}
	return out
}

// Store holds the nodes of one editing session.
// Every id in a node's Connections refers to a node in the store, and
// adjacency is always symmetric.
type Store struct {
	order    []string
	nodes    map[string]*domain.Node
	newID    IDGenerator
	gridUnit float64
	snap     bool
}

// NewStore creates an empty store with snap-to-grid enabled on the default grid
func NewStore(opts ...Option) *Store {
	s := &Store{
		nodes:    make(map[string]*domain.Node),
		newID:    defaultID,
		gridUnit: domain.DefaultGridUnit,
		snap:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSnap changes the grid settings; a non-positive unit keeps the current one
func (s *Store) SetSnap(unit float64, enabled bool) {
	if unit > 0 {
		s.gridUnit = unit
	}
	s.snap = enabled
}

// GridUnit returns the grid spacing
func (s *Store) GridUnit() float64 { return s.gridUnit }

// SnapEnabled reports whether moves are snapped to the grid
func (s *Store) SnapEnabled() bool { return s.snap }

// Len returns the number of nodes
func (s *Store) Len() int { return len(s.order) }

// AddNode inserts a node under a freshly generated id and returns the stored copy.
// The size is fixed by the node type and the node starts unconnected.
func (s *Store) AddNode(n domain.Node) domain.Node {
	stored := n.Clone()
	stored.ID = s.uniqueID(n.Type)
	stored.Size = n.Type.DefaultSize()
	stored.Connections = []string{}
	if s.snap {
		stored.Position = stored.Position.Snap(s.gridUnit)
	}

	s.nodes[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	return stored.Clone()
}

func (s *Store) uniqueID(t domain.NodeType) string {
	id := s.newID(t)
	if _, taken := s.nodes[id]; !taken && id != "" {
		return id
	}
	base := id
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, taken := s.nodes[candidate]; !taken {
			return candidate
		}
	}
}

// Node returns a copy of the node with the given id
func (s *Store) Node(id string) (domain.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n.Clone(), nil
}

// Nodes returns copies of all nodes in insertion order
func (s *Store) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// UpdateNode merges patch into the node's mutable fields
func (s *Store) UpdateNode(id string, patch domain.NodePatch) (domain.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	patch.Apply(n)
	return n.Clone(), nil
}

// RemoveNode deletes the node and scrubs it from every neighbor's connections
func (s *Store) RemoveNode(id string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for _, peer := range n.Connections {
		if p, ok := s.nodes[peer]; ok {
			p.Connections = without(p.Connections, id)
		}
	}
	delete(s.nodes, id)
	s.order = without(s.order, id)
	return nil
}

// MoveNode updates the position, snapping it to the grid when enabled
func (s *Store) MoveNode(id string, pos domain.Position) (domain.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.snap {
		pos = pos.Snap(s.gridUnit)
	}
	n.Position = pos
	return n.Clone(), nil
}

// Connect links two nodes. Connecting an already connected pair is a no-op
// and reports changed=false.
func (s *Store) Connect(a, b string) (changed bool, err error) {
	na, nb, err := s.pair(a, b)
	if err != nil {
		return false, err
	}
	if na.IsConnectedTo(b) {
		return false, nil
	}
	na.Connections = append(na.Connections, b)
	nb.Connections = append(nb.Connections, a)
	return true, nil
}

// Disconnect removes the link between two nodes; unlinked pairs are a no-op
func (s *Store) Disconnect(a, b string) (changed bool, err error) {
	na, nb, err := s.pair(a, b)
	if err != nil {
		return false, err
	}
	if !na.IsConnectedTo(b) {
		return false, nil
	}
	na.Connections = without(na.Connections, b)
	nb.Connections = without(nb.Connections, a)
	return true, nil
}

func (s *Store) pair(a, b string) (*domain.Node, *domain.Node, error) {
	if a == b {
		return nil, nil, ErrSelfConnection
	}
	na, ok := s.nodes[a]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	nb, ok := s.nodes[b]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, b)
	}
	return na, nb, nil
}

// Snapshot returns a deep copy of the store contents
func (s *Store) Snapshot() Snapshot {
	return Snapshot(s.Nodes())
}

// Restore replaces the store contents with a deep copy of snap.
// Connections to ids absent from snap are dropped and adjacency is made
// symmetric, so a hand-built snapshot cannot break the store invariant.
func (s *Store) Restore(snap Snapshot) {
	s.order = make([]string, 0, len(snap))
	s.nodes = make(map[string]*domain.Node, len(snap))
	for _, n := range snap {
		if _, dup := s.nodes[n.ID]; dup || n.ID == "" {
			continue
		}
		c := n.Clone()
		s.nodes[c.ID] = &c
		s.order = append(s.order, c.ID)
	}

	for _, id := range s.order {
		n := s.nodes[id]
		kept := make([]string, 0, len(n.Connections))
		for _, peer := range n.Connections {
			p, ok := s.nodes[peer]
			if !ok || peer == id || contains(kept, peer) {
				continue
			}
			kept = append(kept, peer)
			if !p.IsConnectedTo(id) {
				p.Connections = append(p.Connections, id)
			}
		}
		n.Connections = kept
	}
}

func without(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
