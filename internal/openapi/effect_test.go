package openapi

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomwwright/zod-openapi/internal/def"
)

func transform(inner, output *def.Schema) *def.Schema {
	return &def.Schema{Kind: def.KindTransform, Inner: inner, Output: output}
}

func TestTransform_InputDirectionUsesInnerSchema(t *testing.T) {
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})
	schema := mustConvert(t, node, newTestState(def.DirectionInput))
	if schema.Type != "string" {
		t.Errorf("input direction must expose the wrapped schema, got %s", marshal(t, schema))
	}
}

func TestTransform_OutputDirectionUsesDeclaredOutput(t *testing.T) {
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})
	schema := mustConvert(t, node, newTestState(def.DirectionOutput))
	if schema.Type != "number" {
		t.Errorf("output direction must expose the declared output schema, got %s", marshal(t, schema))
	}
}

func TestTransform_OutputDirectionWithoutOutputSchemaFails(t *testing.T) {
	node := transform(&def.Schema{Kind: def.KindString}, nil)
	_, err := CreateSchemaObject(node, newTestState(def.DirectionOutput))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "output") {
		t.Errorf("error should explain the missing output schema: %v", err)
	}
}

func TestTransform_EffectTypeOverrideBeatsDirection(t *testing.T) {
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})
	node.EffectType = def.DirectionInput

	// Declared input override in an output traversal: no resolution happens,
	// the wrapped schema is used, and nothing is latched.
	state := newTestState(def.DirectionOutput)
	schema := mustConvert(t, node, state)
	if schema.Type != "string" {
		t.Errorf("override ignored, got %s", marshal(t, schema))
	}
	if state.EffectType() != "" {
		t.Errorf("override must not latch a resolution, got %q", state.EffectType())
	}
}

func TestTransform_EffectTypeOutputOverride(t *testing.T) {
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})
	node.EffectType = def.DirectionOutput

	schema := mustConvert(t, node, newTestState(def.DirectionInput))
	if schema.Type != "number" {
		t.Errorf("declared output override ignored, got %s", marshal(t, schema))
	}
}

func TestTransform_LatchesResolution(t *testing.T) {
	node := transform(&def.Schema{Kind: def.KindString}, nil)
	state := newTestState(def.DirectionInput)
	mustConvert(t, node, state)
	if state.EffectType() != def.DirectionInput {
		t.Errorf("expected latched input resolution, got %q", state.EffectType())
	}
}

func TestTransform_ConflictAcrossTraversals(t *testing.T) {
	// Same registry, two traversals: resolving a shared transform as input in
	// the first and as output in the second is a configuration conflict even
	// though each traversal has a fresh latch.
	components := NewComponents()
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})

	if _, err := CreateSchemaObject(node, NewState(def.DirectionInput, components)); err != nil {
		t.Fatalf("first traversal: %v", err)
	}

	_, err := CreateSchemaObject(node, NewState(def.DirectionOutput, components))
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	var conflict *EffectConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EffectConflictError, got %T: %v", err, err)
	}
	if conflict.Previous != def.DirectionInput || conflict.Requested != def.DirectionOutput {
		t.Errorf("conflict directions: previous=%q requested=%q", conflict.Previous, conflict.Requested)
	}
	if conflict.Node != node {
		t.Error("conflict must identify the offending node")
	}
}

func TestResolveEffect_LatchConflict(t *testing.T) {
	// The latch holds the first resolution of a traversal; a later resolution
	// of a different node requesting the opposite direction is rejected even
	// before the shared registry is consulted.
	state := newTestState(def.DirectionInput)
	first := transform(&def.Schema{Kind: def.KindString}, nil)
	second := transform(&def.Schema{Kind: def.KindBoolean}, &def.Schema{Kind: def.KindNumber})

	if err := resolveEffect(first, def.DirectionInput, state); err != nil {
		t.Fatalf("first resolution: %v", err)
	}
	err := resolveEffect(second, def.DirectionOutput, state)
	if err == nil {
		t.Fatal("expected a conflict against the latched resolution")
	}
	var conflict *EffectConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EffectConflictError, got %T", err)
	}
	if conflict.Node != second {
		t.Error("conflict must identify the node that lost")
	}
}

func TestTransform_ConflictErrorIncludesSummary(t *testing.T) {
	components := NewComponents()
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})
	node.Ref = "Price"

	components.effects[node] = def.DirectionInput

	_, err := CreateSchemaObject(node, NewState(def.DirectionOutput, components))
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if !strings.Contains(err.Error(), "Price") {
		t.Errorf("error should describe the node: %v", err)
	}
}

func TestTransform_SameDirectionTwiceIsFine(t *testing.T) {
	components := NewComponents()
	node := transform(&def.Schema{Kind: def.KindString}, nil)

	for i := 0; i < 2; i++ {
		if _, err := CreateSchemaObject(node, NewState(def.DirectionInput, components)); err != nil {
			t.Fatalf("traversal %d: %v", i, err)
		}
	}
}

func TestPipeline_PicksSideByDirection(t *testing.T) {
	node := &def.Schema{
		Kind:   def.KindPipeline,
		Inner:  &def.Schema{Kind: def.KindString},
		Output: &def.Schema{Kind: def.KindInteger},
	}

	in := mustConvert(t, node, newTestState(def.DirectionInput))
	if in.Type != "string" {
		t.Errorf("input side: got %s", marshal(t, in))
	}
	out := mustConvert(t, node, newTestState(def.DirectionOutput))
	if out.Type != "integer" {
		t.Errorf("output side: got %s", marshal(t, out))
	}
}

func TestTransform_RegisteredComponentRecordsCreationType(t *testing.T) {
	components := NewComponents()
	node := transform(&def.Schema{Kind: def.KindString}, &def.Schema{Kind: def.KindNumber})
	node.Ref = "Job"

	if _, err := CreateSchemaObject(node, NewState(def.DirectionOutput, components)); err != nil {
		t.Fatal(err)
	}
	rec, ok := components.Schemas.Get(node)
	if !ok {
		t.Fatal("expected a component record")
	}
	if rec.CreationType != def.DirectionOutput {
		t.Errorf("creationType = %q", rec.CreationType)
	}
	if rec.Object == nil || rec.Object.Type != "number" {
		t.Errorf("registered object should be the output shape, got %s", marshal(t, rec.Object))
	}
}
