package domain

import (
	"crypto/sha256"
	"fmt"
)

// Link is an undirected connection between two canvas nodes.
// Adjacency lives on the nodes; links are the derived edge list used for
// export and persistence.
type Link struct {
	ID string `json:"id" yaml:"id"`
	A  string `json:"a" yaml:"a"`
	B  string `json:"b" yaml:"b"`
}

// NewLink creates a link with endpoints normalized so (a,b) and (b,a) agree
func NewLink(a, b string) Link {
	if a > b {
		a, b = b, a
	}
	link := Link{A: a, B: b}
	link.ID = link.GenerateID()
	return link
}

// GenerateID creates a deterministic ID for the link based on endpoints
func (l Link) GenerateID() string {
	from, to := l.A, l.B
	if from > to {
		from, to = to, from
	}

	key := fmt.Sprintf("%s-%s", from, to)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// Other returns the endpoint opposite id, or "" if id is not an endpoint
func (l Link) Other(id string) string {
	switch id {
	case l.A:
		return l.B
	case l.B:
		return l.A
	}
	return ""
}

// DeriveLinks returns each undirected connection once, in node order.
// Connections to ids outside nodes are skipped.
func DeriveLinks(nodes []Node) []Link {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}

	seen := make(map[string]struct{})
	links := make([]Link, 0)
	for _, n := range nodes {
		for _, peer := range n.Connections {
			if _, ok := ids[peer]; !ok {
				continue
			}
			link := NewLink(n.ID, peer)
			if _, ok := seen[link.ID]; ok {
				continue
			}
			seen[link.ID] = struct{}{}
			links = append(links, link)
		}
	}
	return links
}
