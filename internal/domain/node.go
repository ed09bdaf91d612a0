package domain

import "fmt"

// NodeType represents the kind of element placed on the design canvas
type NodeType string

const (
	NodeTypeVLAN     NodeType = "vlan"
	NodeTypeSubnet   NodeType = "subnet"
	NodeTypeRouter   NodeType = "router"
	NodeTypeSwitch   NodeType = "switch"
	NodeTypeBridge   NodeType = "bridge"
	NodeTypeHost     NodeType = "host"
	NodeTypeServer   NodeType = "server"
	NodeTypeFirewall NodeType = "firewall"
	NodeTypeGateway  NodeType = "gateway"
	NodeTypeACL      NodeType = "acl"
	NodeTypePolicy   NodeType = "policy"
	NodeTypeZone     NodeType = "zone"
)

// NodeCategory groups node types the way the component palette does
type NodeCategory string

const (
	CategoryNetwork  NodeCategory = "network"
	CategoryDevices  NodeCategory = "devices"
	CategorySecurity NodeCategory = "security"
)

type nodeTypeInfo struct {
	category NodeCategory
	label    string
	size     Size
}

var (
	segmentSize = Size{Width: 120, Height: 80}
	elementSize = Size{Width: 100, Height: 60}
)

// nodeTypes is the closed set of placeable element types
var nodeTypes = map[NodeType]nodeTypeInfo{
	NodeTypeVLAN:     {CategoryNetwork, "VLAN", segmentSize},
	NodeTypeSubnet:   {CategoryNetwork, "Subnet", segmentSize},
	NodeTypeRouter:   {CategoryNetwork, "Router", elementSize},
	NodeTypeSwitch:   {CategoryNetwork, "Switch", elementSize},
	NodeTypeBridge:   {CategoryNetwork, "Bridge", elementSize},
	NodeTypeHost:     {CategoryDevices, "Host", elementSize},
	NodeTypeServer:   {CategoryDevices, "Server", elementSize},
	NodeTypeFirewall: {CategoryDevices, "Firewall", elementSize},
	NodeTypeGateway:  {CategoryDevices, "Gateway", elementSize},
	NodeTypeACL:      {CategorySecurity, "ACL Rule", elementSize},
	NodeTypePolicy:   {CategorySecurity, "Policy", elementSize},
	NodeTypeZone:     {CategorySecurity, "Security Zone", segmentSize},
}

// NodeTypes returns every placeable node type in palette order
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeVLAN, NodeTypeSubnet, NodeTypeRouter, NodeTypeSwitch, NodeTypeBridge,
		NodeTypeHost, NodeTypeServer, NodeTypeFirewall, NodeTypeGateway,
		NodeTypeACL, NodeTypePolicy, NodeTypeZone,
	}
}

// ParseNodeType converts a string to a NodeType, rejecting unknown values
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	_, ok := nodeTypes[t]
	return ok
}

// Category returns the palette category of the node type
func (t NodeType) Category() NodeCategory {
	return nodeTypes[t].category
}

// Label returns the human-readable name of the node type
func (t NodeType) Label() string {
	if info, ok := nodeTypes[t]; ok {
		return info.label
	}
	return string(t)
}

// DefaultSize returns the fixed canvas size for the node type
func (t NodeType) DefaultSize() Size {
	if info, ok := nodeTypes[t]; ok {
		return info.size
	}
	return elementSize
}

// IsSegment reports whether the type carries an address range (vlan, subnet)
func (t NodeType) IsSegment() bool {
	return t == NodeTypeVLAN || t == NodeTypeSubnet
}

// Department identifies the organizational zone an element belongs to
type Department string

const (
	DepartmentNone       Department = ""
	DepartmentHR         Department = "HR"
	DepartmentIT         Department = "IT"
	DepartmentFinance    Department = "Finance"
	DepartmentOperations Department = "Operations"
	DepartmentManagement Department = "Management"
	DepartmentMarketing  Department = "Marketing"
	DepartmentGuest      Department = "Guest"
)

// Valid reports whether d is a known department (empty is valid: unassigned)
func (d Department) Valid() bool {
	switch d {
	case DepartmentNone, DepartmentHR, DepartmentIT, DepartmentFinance,
		DepartmentOperations, DepartmentManagement, DepartmentMarketing, DepartmentGuest:
		return true
	}
	return false
}

// SecurityLevel is the policy strictness assigned to an element
type SecurityLevel string

const (
	SecurityLevelLow      SecurityLevel = "low"
	SecurityLevelMedium   SecurityLevel = "medium"
	SecurityLevelHigh     SecurityLevel = "high"
	SecurityLevelCritical SecurityLevel = "critical"
)

// Node represents an element placed on the design canvas
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Name     string   `json:"name" yaml:"name"`
	Position Position `json:"position" yaml:"position"`
	Size     Size     `json:"size" yaml:"size"`

	IPRange       string        `json:"ip_range,omitempty" yaml:"ip_range,omitempty"`
	GatewayIP     string        `json:"gateway_ip,omitempty" yaml:"gateway_ip,omitempty"`
	VLANID        int           `json:"vlan_id,omitempty" yaml:"vlan_id,omitempty"`
	Department    Department    `json:"department,omitempty" yaml:"department,omitempty"`
	SecurityLevel SecurityLevel `json:"security_level,omitempty" yaml:"security_level,omitempty"`

	FirewallEnabled   bool `json:"firewall_enabled" yaml:"firewall_enabled"`
	ACLEnabled        bool `json:"acl_enabled" yaml:"acl_enabled"`
	MonitoringEnabled bool `json:"monitoring_enabled" yaml:"monitoring_enabled"`

	// Connections holds the ids of adjacent nodes (undirected)
	Connections []string `json:"connections" yaml:"connections"`
}

// NewNode creates a node of the given type at a position
func NewNode(nodeType NodeType, name string, pos Position) Node {
	return Node{
		Type:        nodeType,
		Name:        name,
		Position:    pos,
		Size:        nodeType.DefaultSize(),
		Connections: []string{},
	}
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	c := n
	c.Connections = make([]string, len(n.Connections))
	copy(c.Connections, n.Connections)
	return c
}

// IsConnectedTo reports whether id is in the node's adjacency list
func (n Node) IsConnectedTo(id string) bool {
	for _, c := range n.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// NodePatch holds the mutable fields of a node; nil fields are left unchanged
type NodePatch struct {
	Name              *string        `json:"name,omitempty" validate:"omitnil,notblank"`
	Type              *NodeType      `json:"type,omitempty" validate:"omitnil,nodetype"`
	IPRange           *string        `json:"ip_range,omitempty" validate:"omitempty,iprange"`
	GatewayIP         *string        `json:"gateway_ip,omitempty" validate:"omitempty,ipaddr"`
	VLANID            *int           `json:"vlan_id,omitempty" validate:"omitempty,min=1,max=4094"`
	Department        *Department    `json:"department,omitempty" validate:"omitempty,department"`
	SecurityLevel     *SecurityLevel `json:"security_level,omitempty" validate:"omitempty,oneof=low medium high critical"`
	FirewallEnabled   *bool          `json:"firewall_enabled,omitempty"`
	ACLEnabled        *bool          `json:"acl_enabled,omitempty"`
	MonitoringEnabled *bool          `json:"monitoring_enabled,omitempty"`
}

// Apply merges the patch into the node. The id and connections are never touched.
func (p NodePatch) Apply(n *Node) {
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.Type != nil {
		n.Type = *p.Type
	}
	if p.IPRange != nil {
		n.IPRange = *p.IPRange
	}
	if p.GatewayIP != nil {
		n.GatewayIP = *p.GatewayIP
	}
	if p.VLANID != nil {
		n.VLANID = *p.VLANID
	}
	if p.Department != nil {
		n.Department = *p.Department
	}
	if p.SecurityLevel != nil {
		n.SecurityLevel = *p.SecurityLevel
	}
	if p.FirewallEnabled != nil {
		n.FirewallEnabled = *p.FirewallEnabled
	}
	if p.ACLEnabled != nil {
		n.ACLEnabled = *p.ACLEnabled
	}
	if p.MonitoringEnabled != nil {
		n.MonitoringEnabled = *p.MonitoringEnabled
	}
}

// IsEmpty reports whether the patch changes nothing
func (p NodePatch) IsEmpty() bool {
	return p == NodePatch{}
}
