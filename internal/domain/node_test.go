package domain

import (
	"testing"
	"time"
)

func TestNewNode(t *testing.T) {
	t.Run("creates node with type defaults", func(t *testing.T) {
		node := NewNode(NodeTypeVLAN, "HR VLAN", Position{X: 200, Y: 150})

		if node.ID != "" {
			t.Errorf("expected empty ID before insertion, got %s", node.ID)
		}
		if node.Type != NodeTypeVLAN {
			t.Errorf("expected type %s, got %s", NodeTypeVLAN, node.Type)
		}
		if node.Size != NodeTypeVLAN.DefaultSize() {
			t.Errorf("expected default vlan size, got %+v", node.Size)
		}
		if node.Connections == nil {
			t.Error("expected Connections to be initialized")
		}
	})
}

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		input   string
		want    NodeType
		wantErr bool
	}{
		{"vlan", NodeTypeVLAN, false},
		{"subnet", NodeTypeSubnet, false},
		{"zone", NodeTypeZone, false},
		{"acl", NodeTypeACL, false},
		{"VLAN", "", true},
		{"access_point", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseNodeType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNodeType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNodeType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNodeClone(t *testing.T) {
	t.Run("does not share connections", func(t *testing.T) {
		orig := Node{ID: "a", Connections: []string{"b"}}
		clone := orig.Clone()
		clone.Connections[0] = "c"
		clone.Connections = append(clone.Connections, "d")

		if orig.Connections[0] != "b" || len(orig.Connections) != 1 {
			t.Errorf("clone mutation leaked into original: %v", orig.Connections)
		}
	})

	t.Run("nil connections become empty", func(t *testing.T) {
		clone := Node{ID: "a"}.Clone()
		if clone.Connections == nil {
			t.Error("expected non-nil connections on clone")
		}
	})
}

func TestNodePatchApply(t *testing.T) {
	name := "Finance VLAN"
	ipRange := "192.168.30.0/24"
	dept := DepartmentFinance
	fw := true

	node := Node{
		ID:          "vlan-1",
		Type:        NodeTypeVLAN,
		Name:        "HR VLAN",
		IPRange:     "192.168.10.0/24",
		Department:  DepartmentHR,
		Connections: []string{"switch-1"},
	}

	NodePatch{
		Name:            &name,
		IPRange:         &ipRange,
		Department:      &dept,
		FirewallEnabled: &fw,
	}.Apply(&node)

	if node.Name != name {
		t.Errorf("expected name %q, got %q", name, node.Name)
	}
	if node.IPRange != ipRange {
		t.Errorf("expected ip range %q, got %q", ipRange, node.IPRange)
	}
	if node.Department != dept {
		t.Errorf("expected department %q, got %q", dept, node.Department)
	}
	if !node.FirewallEnabled {
		t.Error("expected firewall enabled")
	}
	if node.ACLEnabled {
		t.Error("expected acl untouched")
	}
	if node.ID != "vlan-1" {
		t.Errorf("patch must not change id, got %s", node.ID)
	}
	if len(node.Connections) != 1 || node.Connections[0] != "switch-1" {
		t.Errorf("patch must not change connections, got %v", node.Connections)
	}
}

func TestNodePatchIsEmpty(t *testing.T) {
	if !(NodePatch{}).IsEmpty() {
		t.Error("expected zero patch to be empty")
	}
	on := true
	if (NodePatch{ACLEnabled: &on}).IsEmpty() {
		t.Error("expected patch with a field to be non-empty")
	}
}

func TestDepartmentValid(t *testing.T) {
	for _, d := range []Department{DepartmentNone, DepartmentHR, DepartmentIT, DepartmentMarketing} {
		if !d.Valid() {
			t.Errorf("expected %q to be valid", d)
		}
	}
	if Department("Legal").Valid() {
		t.Error("expected unknown department to be invalid")
	}
}

func TestNewFinding(t *testing.T) {
	t.Run("kind fixes severity and fixability", func(t *testing.T) {
		f := NewFinding(FindingMissingSecurity, "no protection", "subnet-1")

		if f.Severity != SeverityMedium {
			t.Errorf("expected medium severity, got %s", f.Severity)
		}
		if !f.AutoFixable {
			t.Error("expected missing security to be auto-fixable")
		}
		if f.ID != "missing_security:subnet-1" {
			t.Errorf("unexpected id %s", f.ID)
		}
	})

	t.Run("ids are deterministic", func(t *testing.T) {
		a := NewFinding(FindingIPConflict, "x", "v1", "v2")
		b := NewFinding(FindingIPConflict, "y", "v1", "v2")
		if a.ID != b.ID {
			t.Errorf("expected equal ids, got %s and %s", a.ID, b.ID)
		}
	})

	t.Run("success has no nodes", func(t *testing.T) {
		f := NewFinding(FindingSuccess, "ok")
		if f.ID != "success" {
			t.Errorf("unexpected id %s", f.ID)
		}
		if f.Nodes == nil || len(f.Nodes) != 0 {
			t.Errorf("expected empty node list, got %v", f.Nodes)
		}
		if f.Severity != SeverityInfo {
			t.Errorf("expected info severity, got %s", f.Severity)
		}
	})
}

func TestNewDesign(t *testing.T) {
	nodes := []Node{
		{ID: "a", Connections: []string{"b"}},
		{ID: "b", Connections: []string{"a"}},
	}
	saved := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	design := NewDesign("office", nodes, saved)
	nodes[0].Connections[0] = "mutated"

	if design.Nodes[0].Connections[0] != "b" {
		t.Error("design must not alias caller nodes")
	}
	summary := design.Summary()
	if summary.NodeCount != 2 || summary.LinkCount != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if !summary.SavedAt.Equal(saved) {
		t.Errorf("unexpected saved time %v", summary.SavedAt)
	}
}
