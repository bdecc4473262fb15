package def

import "fmt"

// Resolve replaces every node carrying a Use reference in the tree rooted at
// s with the node returned by lookup, sharing pointer identity with the named
// definition. Resolution happens in place on parent links; the returned node
// is the (possibly replaced) root.
//
// Identity sharing is what makes deserialized definitions work with the
// identity-keyed component registry and the extension diff: every "use" of a
// name resolves to the same node instance.
func Resolve(s *Schema, lookup func(name string) (*Schema, bool)) (*Schema, error) {
	seen := make(map[*Schema]bool)
	return resolve(s, lookup, seen)
}

func resolve(s *Schema, lookup func(string) (*Schema, bool), seen map[*Schema]bool) (*Schema, error) {
	if s == nil {
		return nil, nil
	}
	if s.Use != "" {
		target, ok := lookup(s.Use)
		if !ok {
			return nil, fmt.Errorf("unresolved schema reference %q", s.Use)
		}
		// The target is resolved at its own definition site; do not descend.
		return target, nil
	}
	if seen[s] {
		return s, nil
	}
	seen[s] = true

	var err error
	for i := range s.Fields {
		if s.Fields[i].Schema, err = resolve(s.Fields[i].Schema, lookup, seen); err != nil {
			return nil, err
		}
	}
	for i := range s.Elements {
		if s.Elements[i], err = resolve(s.Elements[i], lookup, seen); err != nil {
			return nil, err
		}
	}
	for i := range s.Members {
		if s.Members[i], err = resolve(s.Members[i], lookup, seen); err != nil {
			return nil, err
		}
	}
	if s.Extends, err = resolve(s.Extends, lookup, seen); err != nil {
		return nil, err
	}
	if s.Catchall, err = resolve(s.Catchall, lookup, seen); err != nil {
		return nil, err
	}
	if s.Element, err = resolve(s.Element, lookup, seen); err != nil {
		return nil, err
	}
	if s.Inner, err = resolve(s.Inner, lookup, seen); err != nil {
		return nil, err
	}
	if s.Output, err = resolve(s.Output, lookup, seen); err != nil {
		return nil, err
	}
	return s, nil
}
