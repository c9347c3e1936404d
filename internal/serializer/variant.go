package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/jsongroup"
)

// Serialization groups requested for product variants.
const (
	GroupDefault    = jsongroup.DefaultGroup
	GroupDetailed   = "Detailed"
	GroupCustomData = "CustomData"
)

// VariantGroups is the group selection used when a product's variants are
// serialized.
var VariantGroups = []string{GroupDefault, GroupDetailed, GroupCustomData}

// VariantSerializer turns product variants into JSON-compatible records
// restricted to the given serialization groups.
type VariantSerializer interface {
	Serialize(variants []domain.ProductVariant, groups []string) ([]map[string]any, error)
}

// Encoder encodes an object graph in a format, honouring the groups in ctx.
type Encoder func(v any, format string, ctx jsongroup.Context) ([]byte, error)

// JSONVariantSerializer serializes variants to JSON with the group-aware
// encoder and decodes the result back into plain maps.
type JSONVariantSerializer struct {
	encode Encoder
}

// NewJSONVariantSerializer returns a JSONVariantSerializer using
// jsongroup.Serialize.
func NewJSONVariantSerializer() *JSONVariantSerializer {
	return &JSONVariantSerializer{encode: jsongroup.Serialize}
}

// NewJSONVariantSerializerWithEncoder returns a JSONVariantSerializer using a
// custom encoder.
func NewJSONVariantSerializerWithEncoder(encode Encoder) *JSONVariantSerializer {
	return &JSONVariantSerializer{encode: encode}
}

// Serialize implements VariantSerializer.
func (s *JSONVariantSerializer) Serialize(variants []domain.ProductVariant, groups []string) ([]map[string]any, error) {
	raw, err := s.encode(variants, jsongroup.FormatJSON, jsongroup.NewContext(groups...))
	if err != nil {
		return nil, fmt.Errorf("encode variants: %w", err)
	}

	// Numbers stay json.Number so ids and prices above 2^53 survive.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out []map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	return out, nil
}
