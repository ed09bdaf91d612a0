package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"netseg/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports a design from JSON. Links are recomputed from the node
// connections.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Design, error) {
	var design domain.Design
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&design); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := checkNodes(design.Nodes); err != nil {
		return nil, err
	}

	return domain.NewDesign(design.Name, design.Nodes, design.SavedAt), nil
}

// Export exports a design to JSON
func (c *JSONCodec) Export(design *domain.Design, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(design); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
