package codec

import (
	"fmt"
	"io"

	"netseg/internal/domain"
)

// Importer interface for importing designs from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Design, error)
	Format() string
}

// Exporter interface for exporting designs to various formats
type Exporter interface {
	Export(design *domain.Design, w io.Writer) error
	Format() string
	ContentType() string
}

// Codec both imports and exports designs
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the design codec for a format name
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// checkNodes rejects imported nodes the canvas cannot hold, including
// connections to ids the document does not define
func checkNodes(nodes []domain.Node) error {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("node %q has no id", n.Name)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		if _, err := domain.ParseNodeType(string(n.Type)); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, n := range nodes {
		for _, peer := range n.Connections {
			if _, ok := seen[peer]; !ok {
				return fmt.Errorf("node %q connects to unknown node %q", n.ID, peer)
			}
		}
	}
	return nil
}
