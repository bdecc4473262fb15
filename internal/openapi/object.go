package openapi

import (
	"github.com/tomwwright/zod-openapi/internal/def"
)

// convertObject converts an object definition to a schema object. When the
// node declares a base via Extends and the extension preconditions hold, the
// result is a sparse allOf composition against the base's reference;
// otherwise the full inline schema is generated.
func convertObject(s *def.Schema, state *State) (*Schema, error) {
	if s.Extends != nil {
		extended, ok, err := buildExtendedSchema(s, state)
		if err != nil {
			return nil, err
		}
		if ok {
			return extended, nil
		}
	}
	return buildObjectSchema(s, state)
}

// buildObjectSchema builds the full inline schema for an object shape.
func buildObjectSchema(s *def.Schema, state *State) (*Schema, error) {
	schema := &Schema{Type: "object"}

	properties, required, err := mapShape(s.Fields, state)
	if err != nil {
		return nil, err
	}
	schema.Properties = properties
	schema.Required = required

	if err := applyUnknownPolicy(schema, s, state); err != nil {
		return nil, err
	}
	return schema, nil
}

// mapShape converts an ordered field list into a properties map and a
// required-name list. Declaration order is preserved. A field is required
// unless its schema is optional under the current direction. Both results are
// nil when empty so the serialized schema omits the keys entirely.
func mapShape(fields []def.Field, state *State) (*Properties, []string, error) {
	if len(fields) == 0 {
		return nil, nil, nil
	}

	properties := NewProperties()
	var required []string
	for _, field := range fields {
		fragment, err := CreateSchemaObject(field.Schema, state.child("property: "+field.Name))
		if err != nil {
			return nil, nil, err
		}
		properties.Set(field.Name, fragment)
		if !def.IsOptional(field.Schema, state.Type) {
			required = append(required, field.Name)
		}
	}
	return properties, required, nil
}

// applyUnknownPolicy maps the object's additional-properties policy onto the
// schema. A catchall schema overrides the named policy.
func applyUnknownPolicy(schema *Schema, s *def.Schema, state *State) error {
	if s.Catchall != nil {
		value, err := CreateSchemaObject(s.Catchall, state.child("catchall"))
		if err != nil {
			return err
		}
		schema.AdditionalProperties = &SchemaOrBool{Schema: value}
		return nil
	}
	switch s.Unknown {
	case def.UnknownStrict:
		f := false
		schema.AdditionalProperties = &SchemaOrBool{Bool: &f}
	case def.UnknownPassthrough:
		t := true
		schema.AdditionalProperties = &SchemaOrBool{Bool: &t}
	}
	return nil
}

// buildExtendedSchema attempts to express s as a sparse extension of its
// declared base: allOf over the base's reference plus only the fields the
// base does not have. The second return is false when the optimization does
// not apply; that is a normal outcome, not an error, and the caller falls
// back to full generation.
//
// Preconditions:
//   - the base is registered as a component or carries a Ref hint
//   - the base's additional-properties policy is the default-permissive one
//   - every field shared by name holds the base's exact node (pointer
//     identity, not structural equality)
func buildExtendedSchema(s *def.Schema, state *State) (*Schema, bool, error) {
	base := s.Extends

	if _, registered := state.Components.Schemas.Get(base); !registered && base.Ref == "" {
		return nil, false, nil
	}
	if base.Unknown != def.UnknownStrip || base.Catchall != nil {
		// A closed base would reject the sibling fields the delta adds.
		return nil, false, nil
	}

	baseFields := make(map[string]*def.Schema, len(base.Fields))
	for _, field := range base.Fields {
		baseFields[field.Name] = field.Schema
	}

	var delta []def.Field
	for _, field := range s.Fields {
		baseSchema, shared := baseFields[field.Name]
		if !shared {
			delta = append(delta, field)
			continue
		}
		if baseSchema != field.Schema {
			// Shared key redefined with a different node: not a clean
			// extension.
			return nil, false, nil
		}
	}

	// Force base generation so the reference resolves.
	baseRef, err := CreateSchemaObject(base, state.child("extends"))
	if err != nil {
		return nil, false, err
	}
	if baseRef.Ref == "" {
		return nil, false, nil
	}

	schema := &Schema{
		AllOf: []*Schema{baseRef},
		Type:  "object",
	}
	properties, required, err := mapShape(delta, state)
	if err != nil {
		return nil, false, err
	}
	schema.Properties = properties
	schema.Required = required

	if err := applyUnknownPolicy(schema, s, state); err != nil {
		return nil, false, err
	}
	return schema, true, nil
}
