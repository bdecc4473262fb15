package openapi

import (
	"fmt"

	"github.com/tomwwright/zod-openapi/internal/def"
	"github.com/tomwwright/zod-openapi/internal/diagnostic"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// convertUnion converts a plain union to anyOf (or oneOf when the definition
// opts in to exclusive semantics).
func convertUnion(s *def.Schema, state *State) (*Schema, error) {
	members, err := convertMembers(s, state)
	if err != nil {
		return nil, err
	}
	if s.UnionOneOf {
		return &Schema{OneOf: members}, nil
	}
	return &Schema{AnyOf: members}, nil
}

// convertDiscriminatedUnion converts a tagged union to oneOf in declared
// order. The discriminator block is added only when every member resolved to
// a registered component reference and every member's tag property carries
// string literal or enum values; otherwise oneOf is returned alone — there is
// no partial mapping.
//
// Duplicate discriminator values across members keep the first-registered
// reference; later occurrences are reported as a modeling warning, never an
// error.
func convertDiscriminatedUnion(s *def.Schema, state *State) (*Schema, error) {
	members, err := convertMembers(s, state)
	if err != nil {
		return nil, err
	}
	schema := &Schema{OneOf: members}

	for _, member := range members {
		if member.Ref == "" {
			return schema, nil
		}
	}

	mapping := orderedmap.New[string, string]()
	for i, member := range s.Members {
		values, ok := discriminatorValues(member, s.Discriminator)
		if !ok {
			return schema, nil
		}
		for _, value := range values {
			if _, present := mapping.Get(value); present {
				state.Diag.Warn(diagnostic.CategoryDiscriminator, state.PathString(),
					fmt.Sprintf("discriminator value %q declared by more than one union member; keeping the first", value))
				continue
			}
			mapping.Set(value, members[i].Ref)
		}
	}

	schema.Discriminator = &Discriminator{
		PropertyName: s.Discriminator,
		Mapping:      mapping,
	}
	return schema, nil
}

func convertMembers(s *def.Schema, state *State) ([]*Schema, error) {
	var members []*Schema
	for i, member := range s.Members {
		fragment, err := CreateSchemaObject(member, state.child("union option "+itoa(i)))
		if err != nil {
			return nil, err
		}
		members = append(members, fragment)
	}
	return members, nil
}

// discriminatorValues enumerates the tag values a union member contributes: a
// single literal contributes one, an enum contributes one per member value.
// Only string values participate in a discriminator mapping.
func discriminatorValues(member *def.Schema, key string) ([]string, bool) {
	obj := member
	for obj != nil && (obj.Kind == def.KindLazy || obj.Kind == def.KindReadOnly) {
		obj = obj.Inner
	}
	if obj == nil || obj.Kind != def.KindObject {
		return nil, false
	}

	field := findField(obj, key)
	if field == nil {
		return nil, false
	}
	for field != nil && (field.Kind == def.KindOptional || field.Kind == def.KindDefault ||
		field.Kind == def.KindReadOnly || field.Kind == def.KindLazy) {
		field = field.Inner
	}
	if field == nil {
		return nil, false
	}

	switch field.Kind {
	case def.KindLiteral:
		value, ok := field.Value.(string)
		if !ok {
			return nil, false
		}
		return []string{value}, true
	case def.KindEnum:
		values := make([]string, 0, len(field.Values))
		for _, raw := range field.Values {
			value, ok := raw.(string)
			if !ok {
				return nil, false
			}
			values = append(values, value)
		}
		if len(values) == 0 {
			return nil, false
		}
		return values, true
	default:
		return nil, false
	}
}

// findField looks a property up by name in an object shape, following the
// extension chain to bases.
func findField(obj *def.Schema, name string) *def.Schema {
	for obj != nil {
		for _, field := range obj.Fields {
			if field.Name == name {
				return field.Schema
			}
		}
		obj = obj.Extends
	}
	return nil
}
