package openapi

import (
	"strings"

	"github.com/tomwwright/zod-openapi/internal/def"
	"github.com/tomwwright/zod-openapi/internal/diagnostic"
)

// State is the traversal state for one top-level conversion. Path is copied
// on append so sibling branches never observe each other's breadcrumbs; the
// component registry and the effect latch are shared across the whole call
// tree.
type State struct {
	// Path holds human-readable breadcrumbs for diagnostics, outermost first.
	Path []string

	// Type is the ambient direction of this traversal.
	Type def.Direction

	// Components is the registry shared across all conversions of one
	// document build.
	Components *Components

	// Diag collects non-fatal modeling warnings. May be nil.
	Diag *diagnostic.Collector

	// effect latches the resolved transform direction for the remainder of
	// this traversal. Set at most once; a conflicting later resolution is a
	// hard error.
	effect *def.Direction
}

// NewState creates a traversal state for one top-level conversion. The
// registry may be shared with other top-level conversions within the same
// document build.
func NewState(direction def.Direction, components *Components) *State {
	var latch def.Direction
	return &State{
		Type:       direction,
		Components: components,
		effect:     &latch,
	}
}

// child returns the state for a recursive call one level down. The new state
// appends a breadcrumb to a copied path and shares everything else.
func (s *State) child(segment string) *State {
	path := make([]string, len(s.Path), len(s.Path)+1)
	copy(path, s.Path)
	return &State{
		Path:       append(path, segment),
		Type:       s.Type,
		Components: s.Components,
		Diag:       s.Diag,
		effect:     s.effect,
	}
}

// EffectType returns the direction latched by transform resolution during
// this traversal, or empty if none was needed.
func (s *State) EffectType() def.Direction {
	return *s.effect
}

// PathString renders the breadcrumb path for error messages.
func (s *State) PathString() string {
	if len(s.Path) == 0 {
		return "schema"
	}
	return strings.Join(s.Path, " > ")
}
