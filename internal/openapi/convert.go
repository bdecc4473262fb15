package openapi

import (
	"strconv"

	"github.com/tomwwright/zod-openapi/internal/def"
)

// CreateSchemaObject converts a schema definition node into an OpenAPI 3.1
// schema fragment. Nodes with a registered component record (or a Ref hint)
// come back as a reference object; everything else is inlined.
//
// Registration lifecycle: a node carrying a Ref hint gets a manual record
// before its body is generated, is upgraded to complete exactly once, and is
// afterwards always answered with its reference. A node encountered again
// while its own body is still being generated also resolves to its reference,
// which is what terminates cyclic schema graphs.
func CreateSchemaObject(s *def.Schema, state *State) (*Schema, error) {
	if s == nil {
		return &Schema{}, nil
	}

	if rec, ok := state.Components.Schemas.Get(s); ok {
		if rec.Status == StatusComplete || rec.generating {
			return &Schema{Ref: SchemaRefPath(rec.Ref)}, nil
		}
		// Pre-registered but not yet generated: generate now.
		return completeSchemaRecord(s, rec, state)
	}

	if s.Ref != "" {
		rec := &Record[*Schema]{Status: StatusManual, Ref: s.Ref}
		state.Components.Schemas.Set(s, rec)
		return completeSchemaRecord(s, rec, state)
	}

	return convertNode(s, state)
}

func completeSchemaRecord(s *def.Schema, rec *Record[*Schema], state *State) (*Schema, error) {
	rec.generating = true
	obj, err := convertNode(s, state)
	rec.generating = false
	if err != nil {
		return nil, err
	}
	rec.Status = StatusComplete
	rec.Object = obj
	rec.CreationType = state.Type
	return &Schema{Ref: SchemaRefPath(rec.Ref)}, nil
}

// convertNode generates the inline schema object for a node, ignoring any
// registration concerns, and applies description and constraint metadata.
func convertNode(s *def.Schema, state *State) (*Schema, error) {
	obj, err := convertKind(s, state)
	if err != nil {
		return nil, err
	}
	if s.Description != "" && obj.Description == "" && obj.Ref == "" {
		obj.Description = s.Description
	}
	if s.Constraints != nil {
		applyConstraints(obj, s.Constraints)
	}
	return obj, nil
}

// convertKind routes a node to the converter for its kind.
func convertKind(s *def.Schema, state *State) (*Schema, error) {
	switch s.Kind {
	case def.KindString:
		return &Schema{Type: "string"}, nil
	case def.KindNumber:
		return &Schema{Type: "number"}, nil
	case def.KindInteger:
		return &Schema{Type: "integer"}, nil
	case def.KindBoolean:
		return &Schema{Type: "boolean"}, nil
	case def.KindNull:
		return &Schema{Type: "null"}, nil
	case def.KindUnknown:
		// Empty schema accepts anything.
		return &Schema{}, nil
	case def.KindLiteral:
		return &Schema{Const: s.Value}, nil
	case def.KindEnum:
		return &Schema{Enum: s.Values}, nil
	case def.KindObject:
		return convertObject(s, state)
	case def.KindArray:
		return convertArray(s, state)
	case def.KindTuple:
		return convertTuple(s, state)
	case def.KindRecord:
		return convertRecord(s, state)
	case def.KindUnion:
		return convertUnion(s, state)
	case def.KindDiscriminatedUnion:
		return convertDiscriminatedUnion(s, state)
	case def.KindIntersection:
		return convertIntersection(s, state)
	case def.KindOptional, def.KindReadOnly, def.KindLazy:
		return CreateSchemaObject(s.Inner, state)
	case def.KindDefault:
		return convertDefault(s, state)
	case def.KindNullable:
		return convertNullable(s, state)
	case def.KindTransform:
		return convertTransform(s, state)
	case def.KindPipeline:
		return convertPipeline(s, state)
	default:
		return &Schema{}, nil
	}
}

func convertArray(s *def.Schema, state *State) (*Schema, error) {
	if s.Element == nil {
		return &Schema{Type: "array"}, nil
	}
	items, err := CreateSchemaObject(s.Element, state.child("array items"))
	if err != nil {
		return nil, err
	}
	return &Schema{Type: "array", Items: items}, nil
}

func convertTuple(s *def.Schema, state *State) (*Schema, error) {
	schema := &Schema{Type: "array"}
	for i, elem := range s.Elements {
		item, err := CreateSchemaObject(elem, state.child("tuple item "+itoa(i)))
		if err != nil {
			return nil, err
		}
		schema.PrefixItems = append(schema.PrefixItems, item)
	}
	if n := len(schema.PrefixItems); n > 0 {
		// No items beyond the declared positions.
		schema.MinItems = &n
		schema.MaxItems = &n
	}
	return schema, nil
}

func convertRecord(s *def.Schema, state *State) (*Schema, error) {
	schema := &Schema{Type: "object"}
	if s.Element != nil {
		value, err := CreateSchemaObject(s.Element, state.child("record value"))
		if err != nil {
			return nil, err
		}
		schema.AdditionalProperties = &SchemaOrBool{Schema: value}
	}
	return schema, nil
}

func convertIntersection(s *def.Schema, state *State) (*Schema, error) {
	if len(s.Members) == 0 {
		return &Schema{}, nil
	}
	var members []*Schema
	for i, m := range s.Members {
		frag, err := CreateSchemaObject(m, state.child("intersection member "+itoa(i)))
		if err != nil {
			return nil, err
		}
		members = append(members, frag)
	}
	return &Schema{AllOf: members}, nil
}

func convertDefault(s *def.Schema, state *State) (*Schema, error) {
	schema, err := CreateSchemaObject(s.Inner, state.child("default"))
	if err != nil {
		return nil, err
	}
	if schema.Default == nil {
		schema.Default = s.Default
	}
	return schema, nil
}

func convertNullable(s *def.Schema, state *State) (*Schema, error) {
	inner, err := CreateSchemaObject(s.Inner, state.child("nullable"))
	if err != nil {
		return nil, err
	}
	return &Schema{
		AnyOf: []*Schema{
			inner,
			{Type: "null"},
		},
	}, nil
}

func applyConstraints(schema *Schema, c *def.Constraints) {
	if c.Minimum != nil {
		schema.Minimum = c.Minimum
	}
	if c.Maximum != nil {
		schema.Maximum = c.Maximum
	}
	if c.ExclusiveMinimum != nil {
		schema.ExclusiveMinimum = c.ExclusiveMinimum
	}
	if c.ExclusiveMaximum != nil {
		schema.ExclusiveMaximum = c.ExclusiveMaximum
	}
	if c.MultipleOf != nil {
		schema.MultipleOf = c.MultipleOf
	}
	if c.MinLength != nil {
		schema.MinLength = c.MinLength
	}
	if c.MaxLength != nil {
		schema.MaxLength = c.MaxLength
	}
	if c.Pattern != "" {
		schema.Pattern = c.Pattern
	}
	if c.Format != "" {
		schema.Format = c.Format
	}
	if c.MinItems != nil {
		schema.MinItems = c.MinItems
	}
	if c.MaxItems != nil {
		schema.MaxItems = c.MaxItems
	}
	if c.UniqueItems != nil {
		schema.UniqueItems = c.UniqueItems
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
