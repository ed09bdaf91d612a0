package topology

import (
	"fmt"
	"net/netip"

	"netseg/internal/domain"
)

// ConflictMode selects how two address ranges are compared
type ConflictMode string

const (
	// ConflictExact flags ranges whose strings are identical
	ConflictExact ConflictMode = "exact"
	// ConflictOverlap flags ranges whose prefixes overlap
	ConflictOverlap ConflictMode = "overlap"
)

// ParseConflictMode converts a config string to a ConflictMode; empty means exact
func ParseConflictMode(s string) (ConflictMode, error) {
	switch ConflictMode(s) {
	case "", ConflictExact:
		return ConflictExact, nil
	case ConflictOverlap:
		return ConflictOverlap, nil
	}
	return "", fmt.Errorf("unknown ip conflict mode %q", s)
}

// Validator scans a canvas for findings. It holds no state between runs.
type Validator struct {
	mode ConflictMode
}

// NewValidator creates a validator using the given conflict mode
func NewValidator(mode ConflictMode) *Validator {
	if mode != ConflictOverlap {
		mode = ConflictExact
	}
	return &Validator{mode: mode}
}

// Mode returns the conflict mode in use
func (v *Validator) Mode() ConflictMode { return v.mode }

// Validate returns every finding for nodes, grouped by check in a fixed
// order and, within a check, by node order. A clean canvas yields a single
// success finding.
func (v *Validator) Validate(nodes []domain.Node) []domain.Finding {
	findings := make([]domain.Finding, 0)
	findings = append(findings, v.ipConflicts(nodes)...)
	findings = append(findings, isolatedElements(nodes)...)
	findings = append(findings, missingSecurity(nodes)...)
	findings = append(findings, missingDepartment(nodes)...)

	if len(findings) == 0 {
		findings = append(findings, successFinding())
	}
	return findings
}

func successFinding() domain.Finding {
	return domain.NewFinding(domain.FindingSuccess,
		"All network elements are properly configured with no conflicts detected")
}

func (v *Validator) ipConflicts(nodes []domain.Node) []domain.Finding {
	var segments []domain.Node
	for _, n := range nodes {
		if n.Type.IsSegment() && n.IPRange != "" {
			segments = append(segments, n)
		}
	}

	var out []domain.Finding
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			a, b := segments[i], segments[j]
			if !v.conflicts(a.IPRange, b.IPRange) {
				continue
			}
			out = append(out, domain.NewFinding(domain.FindingIPConflict,
				fmt.Sprintf("%q and %q have overlapping IP ranges", a.Name, b.Name),
				a.ID, b.ID))
		}
	}
	return out
}

func (v *Validator) conflicts(a, b string) bool {
	if a == b {
		return true
	}
	if v.mode != ConflictOverlap {
		return false
	}
	pa, errA := netip.ParsePrefix(a)
	pb, errB := netip.ParsePrefix(b)
	if errA != nil || errB != nil {
		return false
	}
	return pa.Masked().Overlaps(pb.Masked())
}

func isolatedElements(nodes []domain.Node) []domain.Finding {
	var out []domain.Finding
	for _, n := range nodes {
		if len(n.Connections) > 0 || n.Type == domain.NodeTypeHost {
			continue
		}
		out = append(out, domain.NewFinding(domain.FindingIsolatedElement,
			fmt.Sprintf("%q is not connected to any other network elements", n.Name),
			n.ID))
	}
	return out
}

func missingSecurity(nodes []domain.Node) []domain.Finding {
	var out []domain.Finding
	for _, n := range nodes {
		if !n.Type.IsSegment() || n.FirewallEnabled || n.ACLEnabled {
			continue
		}
		out = append(out, domain.NewFinding(domain.FindingMissingSecurity,
			fmt.Sprintf("%q has no firewall or ACL protection enabled", n.Name),
			n.ID))
	}
	return out
}

func missingDepartment(nodes []domain.Node) []domain.Finding {
	var out []domain.Finding
	for _, n := range nodes {
		if n.Department != domain.DepartmentNone {
			continue
		}
		out = append(out, domain.NewFinding(domain.FindingMissingDepartment,
			fmt.Sprintf("%q is not assigned to any department", n.Name),
			n.ID))
	}
	return out
}

// Report is the cached result of the last validation run
type Report struct {
	Findings []domain.Finding `json:"findings"`
	// Revision is the session revision the report was computed at
	Revision uint64 `json:"revision"`
}

// Find returns the finding with the given id
func (r *Report) Find(id string) (domain.Finding, bool) {
	for _, f := range r.Findings {
		if f.ID == id {
			return f, true
		}
	}
	return domain.Finding{}, false
}

// Remove drops a finding by id. A report left empty gets the success
// finding, matching what a fresh run would return.
func (r *Report) Remove(id string) bool {
	for i, f := range r.Findings {
		if f.ID != id {
			continue
		}
		r.Findings = append(r.Findings[:i:i], r.Findings[i+1:]...)
		if len(r.Findings) == 0 {
			r.Findings = []domain.Finding{successFinding()}
		}
		return true
	}
	return false
}

// HasBlocking reports whether any finding is high severity
func (r *Report) HasBlocking() bool {
	for _, f := range r.Findings {
		if f.Severity == domain.SeverityHigh {
			return true
		}
	}
	return false
}

// Counts returns the number of findings per severity
func (r *Report) Counts() map[domain.Severity]int {
	counts := make(map[domain.Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// Clone returns a deep copy of the report
func (r *Report) Clone() *Report {
	out := &Report{Revision: r.Revision, Findings: make([]domain.Finding, len(r.Findings))}
	for i, f := range r.Findings {
		f.Nodes = append([]string(nil), f.Nodes...)
		if f.Nodes == nil {
			f.Nodes = []string{}
		}
		out.Findings[i] = f
	}
	return out
}
