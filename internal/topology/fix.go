package topology

import (
	"fmt"

	"netseg/internal/domain"
)

// Fix applies the automatic fix of finding to the store through UpdateNode
// and returns the updated node. Kinds without a fix return ErrNotFixable.
func Fix(s *Store, f domain.Finding, defaultDept domain.Department) (domain.Node, error) {
	if !f.Kind.AutoFixable() {
		return domain.Node{}, fmt.Errorf("%w: %s", ErrNotFixable, f.Kind)
	}
	if len(f.Nodes) == 0 {
		return domain.Node{}, fmt.Errorf("%w: finding %s names no node", ErrNotFound, f.ID)
	}

	var patch domain.NodePatch
	switch f.Kind {
	case domain.FindingMissingSecurity:
		on := true
		patch.FirewallEnabled = &on
		patch.ACLEnabled = &on
	case domain.FindingMissingDepartment:
		dept := defaultDept
		patch.Department = &dept
	default:
		return domain.Node{}, fmt.Errorf("%w: %s", ErrNotFixable, f.Kind)
	}
	return s.UpdateNode(f.Nodes[0], patch)
}
