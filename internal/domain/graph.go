package domain

import "time"

// Design is a named, saved canvas
type Design struct {
	Name    string    `json:"name" yaml:"name"`
	Nodes   []Node    `json:"nodes" yaml:"nodes"`
	Links   []Link    `json:"links" yaml:"links"`
	SavedAt time.Time `json:"saved_at" yaml:"saved_at"`
}

// NewDesign builds a design from a canvas, deriving its link list
func NewDesign(name string, nodes []Node, savedAt time.Time) *Design {
	copied := make([]Node, len(nodes))
	for i, n := range nodes {
		copied[i] = n.Clone()
	}
	return &Design{
		Name:    name,
		Nodes:   copied,
		Links:   DeriveLinks(copied),
		SavedAt: savedAt,
	}
}

// Summary describes a saved design without its contents
type DesignSummary struct {
	Name      string    `json:"name"`
	NodeCount int       `json:"node_count"`
	LinkCount int       `json:"link_count"`
	SavedAt   time.Time `json:"saved_at"`
}

// Summary returns the listing view of the design
func (d *Design) Summary() DesignSummary {
	return DesignSummary{
		Name:      d.Name,
		NodeCount: len(d.Nodes),
		LinkCount: len(d.Links),
		SavedAt:   d.SavedAt,
	}
}
