package openapi

import (
	"fmt"

	"github.com/tomwwright/zod-openapi/internal/def"
)

// EffectConflictError reports a transform whose required resolution direction
// contradicts an earlier resolution of the same traversal or build. It means
// one schema definition is reused for both a request and a response in
// positions that need different effective shapes; the fix is to register
// separate definitions or set an explicit effectType override.
type EffectConflictError struct {
	Node      *def.Schema
	Path      string
	Previous  def.Direction
	Requested def.Direction
}

func (e *EffectConflictError) Error() string {
	return fmt.Sprintf(
		"effect conflict at %s: schema previously resolved as %q cannot also be used as %q: %s",
		e.Path, e.Previous, e.Requested, e.Node.Summary(),
	)
}

// convertTransform resolves a transform node. Resolution order, first match
// wins:
//
//  1. declared effectType "output": emit the declared output schema
//  2. declared effectType "input": recurse into the wrapped schema
//  3. ambient direction output: emit the declared output schema — a transform
//     of unknown direction must not expose its input shape in a response
//  4. ambient direction input: latch "input" for the remainder of the build
//     and recurse into the wrapped schema
//
// Cases 3 and 4 record the resolution against the node in the shared
// registry; a later conversion needing the opposite resolution for the same
// node fails with EffectConflictError.
func convertTransform(s *def.Schema, state *State) (*Schema, error) {
	switch {
	case s.EffectType == def.DirectionOutput:
		return manualOutputSchema(s, state)
	case s.EffectType == def.DirectionInput:
		return CreateSchemaObject(s.Inner, state.child("transform input"))
	case state.Type == def.DirectionOutput:
		if err := resolveEffect(s, def.DirectionOutput, state); err != nil {
			return nil, err
		}
		return manualOutputSchema(s, state)
	default:
		if err := resolveEffect(s, def.DirectionInput, state); err != nil {
			return nil, err
		}
		return CreateSchemaObject(s.Inner, state.child("transform input"))
	}
}

func resolveEffect(node *def.Schema, want def.Direction, state *State) error {
	if previous, ok := state.Components.effects[node]; ok && previous != want {
		return &EffectConflictError{
			Node:      node,
			Path:      state.PathString(),
			Previous:  previous,
			Requested: want,
		}
	}
	if latched := state.EffectType(); latched != "" && latched != want {
		return &EffectConflictError{
			Node:      node,
			Path:      state.PathString(),
			Previous:  latched,
			Requested: want,
		}
	}
	*state.effect = want
	state.Components.effects[node] = want
	return nil
}

func manualOutputSchema(s *def.Schema, state *State) (*Schema, error) {
	if s.Output == nil {
		return nil, fmt.Errorf(
			"transform at %s is used in an output context but declares no output schema; declare one or set effectType",
			state.PathString(),
		)
	}
	return CreateSchemaObject(s.Output, state.child("transform output"))
}

// convertPipeline emits the side of the pipeline matching the ambient
// direction: the parse side for requests, the result side for responses.
func convertPipeline(s *def.Schema, state *State) (*Schema, error) {
	if state.Type == def.DirectionOutput {
		return CreateSchemaObject(s.Output, state.child("pipeline output"))
	}
	return CreateSchemaObject(s.Inner, state.child("pipeline input"))
}
