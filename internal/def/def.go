// Package def defines the schema definition tree consumed by the OpenAPI
// converter. This is a normalized representation of runtime validation
// schemas — only the fields the conversion reads, not a full validation
// object model.
package def

// Direction distinguishes schemas describing incoming data (requests) from
// schemas describing outgoing data (responses). A field's requiredness and a
// transform's effective shape can differ by direction.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Kind identifies the primary kind of a schema definition node.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindUnknown Kind = "unknown" // accepts anything; emits the empty schema

	KindLiteral Kind = "literal" // a single const value
	KindEnum    Kind = "enum"    // a closed set of values

	KindObject Kind = "object"
	KindArray  Kind = "array"
	KindTuple  Kind = "tuple"
	KindRecord Kind = "record" // string keys, uniform value schema

	KindUnion              Kind = "union"
	KindDiscriminatedUnion Kind = "discriminatedUnion"
	KindIntersection       Kind = "intersection"

	KindOptional Kind = "optional" // wrapper: value may be absent
	KindDefault  Kind = "default"  // wrapper: absent value is filled in
	KindNullable Kind = "nullable" // wrapper: value may be null
	KindReadOnly Kind = "readOnly" // wrapper: response-only marker
	KindLazy     Kind = "lazy"     // wrapper: indirection for recursive schemas

	KindTransform Kind = "transform" // wrapper: input shape differs from output shape
	KindPipeline  Kind = "pipeline"  // wrapper: distinct input and output schemas
)

// Schema is a single node of a schema definition tree. Exactly one Kind is
// set; the populated fields depend on it. Nodes are shared by pointer: the
// converter keys its component registry on node identity, so two structurally
// identical but distinct nodes are distinct schemas.
//
// The converter never mutates a Schema.
type Schema struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Ref is an optional registration hint: when set, the node is registered
	// as a named component and referenced instead of inlined.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`

	// EffectType overrides how a Transform resolves, independent of the
	// ambient traversal direction. Only meaningful for KindTransform.
	EffectType Direction `json:"effectType,omitempty" yaml:"effectType,omitempty"`

	// Use names another registered definition; the loader replaces this node
	// with the named definition's node so pointer identity is shared. Never
	// seen by the converter.
	Use string `json:"use,omitempty" yaml:"use,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Value holds the literal value for KindLiteral.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds the member values for KindEnum.
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Fields holds the ordered shape of a KindObject node.
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Extends declares that a KindObject node is a sparse extension of a base
	// object. Shared fields must reuse the base's exact nodes for the
	// extension to be expressed as allOf + delta.
	Extends *Schema `json:"extends,omitempty" yaml:"extends,omitempty"`

	// Unknown is the additional-properties policy of a KindObject node.
	Unknown UnknownPolicy `json:"unknown,omitempty" yaml:"unknown,omitempty"`

	// Catchall types unknown properties of a KindObject node. Overrides
	// Unknown when set.
	Catchall *Schema `json:"catchall,omitempty" yaml:"catchall,omitempty"`

	// Element is the element schema of KindArray and the value schema of
	// KindRecord.
	Element *Schema `json:"element,omitempty" yaml:"element,omitempty"`

	// Elements holds the positional schemas of a KindTuple node.
	Elements []*Schema `json:"elements,omitempty" yaml:"elements,omitempty"`

	// Members holds the alternatives of KindUnion, KindDiscriminatedUnion and
	// KindIntersection nodes, in declaration order.
	Members []*Schema `json:"members,omitempty" yaml:"members,omitempty"`

	// Discriminator names the tag property of a KindDiscriminatedUnion.
	Discriminator string `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`

	// UnionOneOf emits oneOf instead of anyOf for a plain KindUnion.
	UnionOneOf bool `json:"unionOneOf,omitempty" yaml:"unionOneOf,omitempty"`

	// Inner is the wrapped schema of Optional, Default, Nullable, ReadOnly,
	// Lazy and Transform nodes, and the input side of a Pipeline.
	Inner *Schema `json:"inner,omitempty" yaml:"inner,omitempty"`

	// Default is the fill-in value of a KindDefault node.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`

	// Output declares the output shape of a KindTransform node (the manual
	// type used when the transform is resolved in output context) and the
	// output side of a KindPipeline.
	Output *Schema `json:"output,omitempty" yaml:"output,omitempty"`

	// Constraints holds validation checks carried onto the emitted schema.
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Field is a named property of an object shape. Field order is declaration
// order and is preserved into the emitted properties map.
type Field struct {
	Name   string  `json:"name" yaml:"name"`
	Schema *Schema `json:"schema" yaml:"schema"`
}

// UnknownPolicy controls how an object treats properties outside its shape.
type UnknownPolicy string

const (
	// UnknownStrip is the default-permissive policy: unknown properties are
	// dropped during validation and unconstrained in the emitted schema.
	UnknownStrip UnknownPolicy = ""
	// UnknownStrict rejects unknown properties (additionalProperties: false).
	UnknownStrict UnknownPolicy = "strict"
	// UnknownPassthrough retains unknown properties (additionalProperties: true).
	UnknownPassthrough UnknownPolicy = "passthrough"
)

// Constraints holds validation checks that carry through to the emitted
// schema object. Only the checks conversion reads are modeled.
type Constraints struct {
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`

	MinLength *int    `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int    `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format    string  `json:"format,omitempty" yaml:"format,omitempty"`

	MinItems    *int  `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int  `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems *bool `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
}

// IsOptional reports whether a value described by s may be absent under the
// given direction. Optionality is direction-dependent: a Default wrapper is
// required on input (the fill-in happens during parsing) but optional on
// output.
func IsOptional(s *Schema, direction Direction) bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case KindOptional:
		return true
	case KindDefault:
		return direction == DirectionOutput
	case KindNullable, KindReadOnly, KindLazy, KindTransform:
		return IsOptional(s.Inner, direction)
	case KindPipeline:
		if direction == DirectionOutput {
			return IsOptional(s.Output, direction)
		}
		return IsOptional(s.Inner, direction)
	default:
		return false
	}
}

// Summary returns a short single-line description of a node for error
// messages and diagnostics. It deliberately does not serialize children:
// definition trees may be cyclic.
func (s *Schema) Summary() string {
	if s == nil {
		return "<nil>"
	}
	out := string(s.Kind)
	if s.Ref != "" {
		out += " ref=" + s.Ref
	}
	if s.Kind == KindObject && len(s.Fields) > 0 {
		out += " fields=["
		for i, f := range s.Fields {
			if i > 0 {
				out += " "
			}
			out += f.Name
		}
		out += "]"
	}
	if s.Kind == KindDiscriminatedUnion {
		out += " discriminator=" + s.Discriminator
	}
	return out
}
