// Package openapi converts schema definition trees into OpenAPI 3.1 schema
// objects and assembles them into complete documents. Conversion is pure and
// synchronous; deduplication happens through a shared component registry.
package openapi

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SchemaOrBool represents a value that can be either a Schema object or a
// boolean. In OpenAPI 3.1, additionalProperties can be either a schema or a
// boolean.
type SchemaOrBool struct {
	Schema *Schema
	Bool   *bool
}

// MarshalJSON implements json.Marshaler.
func (s SchemaOrBool) MarshalJSON() ([]byte, error) {
	if s.Bool != nil {
		return json.Marshal(*s.Bool)
	}
	if s.Schema != nil {
		return json.Marshal(s.Schema)
	}
	return []byte("{}"), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SchemaOrBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		s.Bool = &b
		return nil
	}
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return err
	}
	s.Schema = &schema
	return nil
}

// Properties is an insertion-ordered mapping from property name to schema.
// Declaration order of object fields is preserved into the serialized
// document so output is reproducible.
type Properties = orderedmap.OrderedMap[string, *Schema]

// NewProperties creates an empty ordered property map.
func NewProperties() *Properties {
	return orderedmap.New[string, *Schema]()
}

// Schema represents a JSON Schema (OpenAPI 3.1 compatible) fragment: an
// inline schema, a composition (oneOf/anyOf/allOf), or a reference.
type Schema struct {
	Type          string         `json:"type,omitempty"`
	Format        string         `json:"format,omitempty"`
	Properties    *Properties    `json:"properties,omitempty"`
	Required      []string       `json:"required,omitempty"`
	Items         *Schema        `json:"items,omitempty"`
	PrefixItems   []*Schema      `json:"prefixItems,omitempty"`
	Enum          []any          `json:"enum,omitempty"`
	Const         any            `json:"const,omitempty"`
	AnyOf         []*Schema      `json:"anyOf,omitempty"`
	OneOf         []*Schema      `json:"oneOf,omitempty"`
	AllOf         []*Schema      `json:"allOf,omitempty"`
	Ref           string         `json:"$ref,omitempty"`
	Description   string         `json:"description,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty"`
	Default       any            `json:"default,omitempty"`

	AdditionalProperties *SchemaOrBool `json:"additionalProperties,omitempty"`

	// Validation constraints carried over from definition checks.
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`
	Pattern          string   `json:"pattern,omitempty"`
	MinItems         *int     `json:"minItems,omitempty"`
	MaxItems         *int     `json:"maxItems,omitempty"`
	UniqueItems      *bool    `json:"uniqueItems,omitempty"`
}

// Discriminator represents an OpenAPI discriminator object for discriminated
// unions. Mapping preserves member declaration order.
type Discriminator struct {
	PropertyName string                                 `json:"propertyName"`
	Mapping      *orderedmap.OrderedMap[string, string] `json:"mapping,omitempty"`
}
