package codec

import (
	"fmt"
	"io"
	"time"

	"netseg/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exported documents
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlDesign is the YAML document layout. Links are written for readers but
// ignored on import; connections are authoritative.
type yamlDesign struct {
	Name    string        `yaml:"name"`
	SavedAt time.Time     `yaml:"saved_at,omitempty"`
	Nodes   []domain.Node `yaml:"nodes"`
	Links   []yamlLink    `yaml:"links,omitempty"`
}

type yamlLink struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Parse imports a design from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Design, error) {
	var yd yamlDesign
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yd); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := checkNodes(yd.Nodes); err != nil {
		return nil, err
	}

	for i := range yd.Nodes {
		if yd.Nodes[i].Connections == nil {
			yd.Nodes[i].Connections = []string{}
		}
	}
	return domain.NewDesign(yd.Name, yd.Nodes, yd.SavedAt), nil
}

// Export exports a design to YAML
func (c *YAMLCodec) Export(design *domain.Design, w io.Writer) error {
	yd := yamlDesign{
		Name:    design.Name,
		SavedAt: design.SavedAt,
		Nodes:   design.Nodes,
		Links:   make([]yamlLink, 0, len(design.Links)),
	}
	for _, l := range design.Links {
		yd.Links = append(yd.Links, yamlLink{A: l.A, B: l.B})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yd); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
