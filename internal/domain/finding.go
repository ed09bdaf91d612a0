package domain

import "strings"

// FindingKind identifies which topology check produced a finding
type FindingKind string

const (
	FindingIPConflict        FindingKind = "ip_conflict"
	FindingIsolatedElement   FindingKind = "isolated_element"
	FindingMissingSecurity   FindingKind = "missing_security"
	FindingMissingDepartment FindingKind = "missing_department"
	FindingSuccess           FindingKind = "success"
)

// Severity ranks how serious a finding is
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// findingRule fixes the presentation and fixability of each kind so the
// values can never disagree between findings of the same kind
type findingRule struct {
	severity    Severity
	autoFixable bool
	title       string
	suggestion  string
}

var findingRules = map[FindingKind]findingRule{
	FindingIPConflict: {
		severity:   SeverityHigh,
		title:      "IP Range Conflict",
		suggestion: "Assign unique IP ranges to each VLAN",
	},
	FindingIsolatedElement: {
		severity:   SeverityMedium,
		title:      "Isolated Network Element",
		suggestion: "Connect this element to establish network connectivity",
	},
	FindingMissingSecurity: {
		severity:    SeverityMedium,
		autoFixable: true,
		title:       "Missing Security Configuration",
		suggestion:  "Enable firewall or ACL protection for better security",
	},
	FindingMissingDepartment: {
		severity:    SeverityLow,
		autoFixable: true,
		title:       "Missing Department Assignment",
		suggestion:  "Assign this element to a department for better organization",
	},
	FindingSuccess: {
		severity:   SeverityInfo,
		title:      "Validation Passed",
		suggestion: "Your network topology is ready for deployment",
	},
}

// Valid reports whether k is a known finding kind
func (k FindingKind) Valid() bool {
	_, ok := findingRules[k]
	return ok
}

// Severity returns the fixed severity of the kind
func (k FindingKind) Severity() Severity {
	return findingRules[k].severity
}

// AutoFixable reports whether findings of this kind carry an automatic fix
func (k FindingKind) AutoFixable() bool {
	return findingRules[k].autoFixable
}

// Finding is a single issue reported by topology validation
type Finding struct {
	ID          string      `json:"id"`
	Kind        FindingKind `json:"kind"`
	Severity    Severity    `json:"severity"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Suggestion  string      `json:"suggestion"`
	Nodes       []string    `json:"nodes"`
	AutoFixable bool        `json:"auto_fixable"`
}

// NewFinding builds a finding of the given kind implicating nodeIDs.
// The id is derived from the kind and the ids so repeated runs agree.
func NewFinding(kind FindingKind, description string, nodeIDs ...string) Finding {
	rule := findingRules[kind]
	nodes := make([]string, len(nodeIDs))
	copy(nodes, nodeIDs)
	return Finding{
		ID:          FindingID(kind, nodeIDs...),
		Kind:        kind,
		Severity:    rule.severity,
		Title:       rule.title,
		Description: description,
		Suggestion:  rule.suggestion,
		Nodes:       nodes,
		AutoFixable: rule.autoFixable,
	}
}

// FindingID returns the deterministic id for a kind and its implicated nodes
func FindingID(kind FindingKind, nodeIDs ...string) string {
	if len(nodeIDs) == 0 {
		return string(kind)
	}
	return string(kind) + ":" + strings.Join(nodeIDs, ",")
}
