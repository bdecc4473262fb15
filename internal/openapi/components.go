package openapi

import (
	"github.com/tomwwright/zod-openapi/internal/def"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RecordStatus is the lifecycle state of a component record.
type RecordStatus int

const (
	// StatusManual means a name has been assigned but the concrete object has
	// not been generated yet.
	StatusManual RecordStatus = iota
	// StatusComplete means the object has been generated. A complete record
	// is never regenerated; its reference is reused.
	StatusComplete
)

// Record tracks one registered component. T is the generated object type for
// the registry section the record lives in.
type Record[T any] struct {
	Status RecordStatus
	Ref    string
	Object T

	// CreationType records the direction the object was generated under.
	// Input and output objects for the same definition may legitimately
	// differ when transforms are involved.
	CreationType def.Direction

	// generating guards against re-entry while this record's object is being
	// built: a recursive occurrence of the same node resolves to a reference,
	// which is what terminates cyclic schema graphs.
	generating bool
}

// Section is one registry section: an insertion-ordered mapping from
// definition node identity to its component record. Keys are node pointers,
// not structural values — two structurally identical but distinct nodes are
// distinct components. A section only grows; there is no delete.
type Section[T any] struct {
	records *orderedmap.OrderedMap[*def.Schema, *Record[T]]
}

func newSection[T any]() *Section[T] {
	return &Section[T]{records: orderedmap.New[*def.Schema, *Record[T]]()}
}

// Get returns the record for the given node identity, if any.
func (s *Section[T]) Get(node *def.Schema) (*Record[T], bool) {
	return s.records.Get(node)
}

// Set inserts or replaces the record for the given node identity.
func (s *Section[T]) Set(node *def.Schema, rec *Record[T]) {
	s.records.Set(node, rec)
}

// Len returns the number of registered records.
func (s *Section[T]) Len() int {
	return s.records.Len()
}

// Each visits records in registration order.
func (s *Section[T]) Each(fn func(node *def.Schema, rec *Record[T])) {
	for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Components is the shared registry for one document build. It is owned by
// the top-level caller and threaded by reference through every conversion in
// the build, so recursive calls observe earlier writes. Single-threaded; no
// locking.
type Components struct {
	Schemas       *Section[*Schema]
	Parameters    *Section[*Parameter]
	Headers       *Section[*Header]
	Responses     *Section[*Response]
	RequestBodies *Section[*RequestBody]

	// effects records the resolved direction of transforms that carry no
	// declared effect type, keyed by node identity. Conversions in a later
	// traversal that would resolve the same transform the other way are
	// configuration conflicts.
	effects map[*def.Schema]def.Direction
}

// NewComponents creates an empty component registry.
func NewComponents() *Components {
	return &Components{
		Schemas:       newSection[*Schema](),
		Parameters:    newSection[*Parameter](),
		Headers:       newSection[*Header](),
		Responses:     newSection[*Response](),
		RequestBodies: newSection[*RequestBody](),
		effects:       make(map[*def.Schema]def.Direction),
	}
}

// RegisterSchema assigns a component name to a definition node ahead of
// conversion. The schema object itself is generated the first time the node
// is encountered during a build, or at document emission for nodes never
// referenced.
func (c *Components) RegisterSchema(name string, node *def.Schema) {
	if _, ok := c.Schemas.Get(node); ok {
		return
	}
	c.Schemas.Set(node, &Record[*Schema]{Status: StatusManual, Ref: name})
}

const (
	schemaRefPrefix      = "#/components/schemas/"
	parameterRefPrefix   = "#/components/parameters/"
	headerRefPrefix      = "#/components/headers/"
	responseRefPrefix    = "#/components/responses/"
	requestBodyRefPrefix = "#/components/requestBodies/"
)

// SchemaRefPath returns the in-document pointer for a named schema component.
func SchemaRefPath(ref string) string {
	return schemaRefPrefix + ref
}
