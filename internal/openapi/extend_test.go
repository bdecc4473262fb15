package openapi

import (
	"reflect"
	"testing"

	"github.com/tomwwright/zod-openapi/internal/def"
)

func namedObject(ref string, fields ...def.Field) *def.Schema {
	return &def.Schema{Kind: def.KindObject, Ref: ref, Fields: fields}
}

func strField(name string) def.Field {
	return def.Field{Name: name, Schema: &def.Schema{Kind: def.KindString}}
}

func TestExtendedSchema_SparseDelta(t *testing.T) {
	state := newTestState(def.DirectionInput)

	id := &def.Schema{Kind: def.KindString}
	base := namedObject("Base", def.Field{Name: "id", Schema: id})
	extended := &def.Schema{
		Kind:    def.KindObject,
		Extends: base,
		Fields: []def.Field{
			{Name: "id", Schema: id}, // shared by node identity
			strField("name"),
		},
	}

	schema := mustConvert(t, extended, state)
	if len(schema.AllOf) != 1 || schema.AllOf[0].Ref != "#/components/schemas/Base" {
		t.Fatalf("expected allOf over base reference, got %s", marshal(t, schema))
	}
	if schema.Properties == nil || schema.Properties.Len() != 1 {
		t.Fatalf("delta should only carry the new field, got %s", marshal(t, schema))
	}
	if _, ok := schema.Properties.Get("name"); !ok {
		t.Error("delta missing the added field")
	}
	if _, ok := schema.Properties.Get("id"); ok {
		t.Error("shared field must not be repeated in the delta")
	}
	if !reflect.DeepEqual(schema.Required, []string{"name"}) {
		t.Errorf("required = %v", schema.Required)
	}

	// The forced base generation must leave a complete component behind.
	rec, ok := state.Components.Schemas.Get(base)
	if !ok || rec.Status != StatusComplete {
		t.Error("base should have been generated as a component")
	}
}

func TestExtendedSchema_SharedNodeRedefinedFallsBack(t *testing.T) {
	state := newTestState(def.DirectionInput)

	base := namedObject("Base", strField("id"))
	// Same property name, structurally identical, but a different node.
	extended := &def.Schema{
		Kind:    def.KindObject,
		Extends: base,
		Fields: []def.Field{
			strField("id"),
			strField("name"),
		},
	}

	schema := mustConvert(t, extended, state)
	if schema.AllOf != nil {
		t.Fatalf("redefined shared key must fall back to full generation, got %s", marshal(t, schema))
	}
	if schema.Properties == nil || schema.Properties.Len() != 2 {
		t.Errorf("expected full inline shape, got %s", marshal(t, schema))
	}
}

func TestExtendedSchema_UnregisteredBaseFallsBack(t *testing.T) {
	state := newTestState(def.DirectionInput)

	base := &def.Schema{Kind: def.KindObject, Fields: []def.Field{strField("id")}} // no Ref, no registration
	extended := &def.Schema{
		Kind:    def.KindObject,
		Extends: base,
		Fields:  append(base.Fields, strField("name")),
	}

	schema := mustConvert(t, extended, state)
	if schema.AllOf != nil {
		t.Fatalf("base without a component identity cannot be referenced, got %s", marshal(t, schema))
	}
}

func TestExtendedSchema_ClosedBaseFallsBack(t *testing.T) {
	state := newTestState(def.DirectionInput)

	base := &def.Schema{Kind: def.KindObject, Ref: "Strict", Unknown: def.UnknownStrict, Fields: []def.Field{strField("id")}}
	extended := &def.Schema{
		Kind:    def.KindObject,
		Extends: base,
		Fields:  append(base.Fields, strField("name")),
	}

	schema := mustConvert(t, extended, state)
	if schema.AllOf != nil {
		t.Fatalf("a closed base rejects sibling fields, must fall back, got %s", marshal(t, schema))
	}
}

func TestExtendedSchema_NoNewFields(t *testing.T) {
	state := newTestState(def.DirectionInput)

	id := &def.Schema{Kind: def.KindString}
	base := namedObject("Base", def.Field{Name: "id", Schema: id})
	extended := &def.Schema{
		Kind:    def.KindObject,
		Extends: base,
		Fields:  []def.Field{{Name: "id", Schema: id}},
	}

	schema := mustConvert(t, extended, state)
	if len(schema.AllOf) != 1 {
		t.Fatalf("expected allOf composition, got %s", marshal(t, schema))
	}
	if schema.Properties != nil || schema.Required != nil {
		t.Errorf("empty delta must omit properties and required, got %s", marshal(t, schema))
	}
}

func TestExtendedSchema_RegisteredBaseWithoutRefHint(t *testing.T) {
	components := NewComponents()
	id := &def.Schema{Kind: def.KindString}
	base := &def.Schema{Kind: def.KindObject, Fields: []def.Field{{Name: "id", Schema: id}}}
	components.RegisterSchema("Registered", base)

	extended := &def.Schema{
		Kind:    def.KindObject,
		Extends: base,
		Fields: []def.Field{
			{Name: "id", Schema: id},
			strField("name"),
		},
	}

	state := NewState(def.DirectionInput, components)
	schema := mustConvert(t, extended, state)
	if len(schema.AllOf) != 1 || schema.AllOf[0].Ref != "#/components/schemas/Registered" {
		t.Fatalf("expected reference to the registered base, got %s", marshal(t, schema))
	}
}
