package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"netograph/internal/domain"
)

// JSONCodec handles JSON inventory import/export
type JSONCodec struct{}

// NewJSONCodec creates a JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a JSON array of parsed hosts
func (c *JSONCodec) Parse(r io.Reader) ([]domain.ParsedHost, error) {
	var hosts []domain.ParsedHost
	if err := json.NewDecoder(r).Decode(&hosts); err != nil {
		return nil, fmt.Errorf("decode json inventory: %w", err)
	}
	return hosts, nil
}

// Export writes the host set as indented JSON
func (c *JSONCodec) Export(hosts []domain.Host, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(hosts); err != nil {
		return fmt.Errorf("encode json inventory: %w", err)
	}
	return nil
}
