package openapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tomwwright/zod-openapi/internal/def"
	"github.com/tomwwright/zod-openapi/internal/diagnostic"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Document represents an OpenAPI 3.1 document.
type Document struct {
	OpenAPI    string               `json:"openapi"`
	Info       Info                 `json:"info"`
	Servers    []Server             `json:"servers,omitempty"`
	Tags       []Tag                `json:"tags,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *ComponentsObject    `json:"components,omitempty"`
}

// Info holds API metadata.
type Info struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version"`
	Contact     *Contact `json:"contact,omitempty"`
	License     *License `json:"license,omitempty"`
}

// Contact holds API contact info.
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// License holds API license info.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Server represents an OpenAPI server.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Tag represents an OpenAPI tag.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PathItem holds the operations for a single path.
type PathItem struct {
	Get     *Operation `json:"get,omitempty"`
	Post    *Operation `json:"post,omitempty"`
	Put     *Operation `json:"put,omitempty"`
	Delete  *Operation `json:"delete,omitempty"`
	Patch   *Operation `json:"patch,omitempty"`
	Head    *Operation `json:"head,omitempty"`
	Options *Operation `json:"options,omitempty"`
}

// Operation represents an HTTP operation.
type Operation struct {
	OperationID string       `json:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Deprecated  bool         `json:"deprecated,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty"`
	Responses   Responses    `json:"responses"`
}

// Parameter represents an OpenAPI parameter object, or a reference to a
// parameter component when Ref is set.
type Parameter struct {
	Ref         string  `json:"$ref,omitempty"`
	Name        string  `json:"name,omitempty"`
	In          string  `json:"in,omitempty"` // "query", "path", "header", "cookie"
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// RequestBody represents an OpenAPI request body, or a reference to a
// request-body component when Ref is set.
type RequestBody struct {
	Ref         string               `json:"$ref,omitempty"`
	Description string               `json:"description,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType holds the schema for a content type.
type MediaType struct {
	Schema *Schema `json:"schema"`
}

// Responses maps status codes to response objects.
type Responses map[string]*Response

// Response represents an OpenAPI response, or a reference to a response
// component when Ref is set.
type Response struct {
	Ref         string               `json:"$ref,omitempty"`
	Description string               `json:"description,omitempty"`
	Headers     map[string]*Header   `json:"headers,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// Header represents an OpenAPI header object, or a reference to a header
// component when Ref is set.
type Header struct {
	Ref         string  `json:"$ref,omitempty"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// SecurityScheme represents an OpenAPI security scheme.
type SecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	In           string `json:"in,omitempty"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ComponentsObject is the serialized components section. Entries appear in
// registration order.
type ComponentsObject struct {
	Schemas         *orderedmap.OrderedMap[string, *Schema]      `json:"schemas,omitempty"`
	Parameters      *orderedmap.OrderedMap[string, *Parameter]   `json:"parameters,omitempty"`
	Headers         *orderedmap.OrderedMap[string, *Header]      `json:"headers,omitempty"`
	Responses       *orderedmap.OrderedMap[string, *Response]    `json:"responses,omitempty"`
	RequestBodies   *orderedmap.OrderedMap[string, *RequestBody] `json:"requestBodies,omitempty"`
	SecuritySchemes map[string]*SecurityScheme                   `json:"securitySchemes,omitempty"`
}

// DocumentDef describes a document to generate: metadata plus operations
// whose schemas are definition trees. Request-facing schemas (parameters,
// request bodies) convert under the input direction; response-facing schemas
// (responses, headers) convert under the output direction.
type DocumentDef struct {
	OpenAPI         string
	Info            Info
	Servers         []Server
	Tags            []Tag
	SecuritySchemes map[string]*SecurityScheme

	// Schemas pre-registers named schema components. They are generated on
	// first reference, or at components emission if never referenced.
	Schemas []NamedSchema

	Operations []OperationDef
}

// NamedSchema assigns a component name to a definition node.
type NamedSchema struct {
	Name   string
	Schema *def.Schema
}

// OperationDef describes one HTTP operation.
type OperationDef struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []ParameterDef
	RequestBody *RequestBodyDef
	Responses   []ResponseDef
}

// ParameterDef describes a parameter. Ref, when set, registers the built
// parameter as a component keyed by the schema node's identity and emits a
// reference at the use site.
type ParameterDef struct {
	Name        string
	In          string
	Description string
	Required    bool
	Ref         string
	Schema      *def.Schema
}

// RequestBodyDef describes a request body.
type RequestBodyDef struct {
	Description string
	ContentType string
	Required    bool
	Ref         string
	Schema      *def.Schema
}

// ResponseDef describes one response of an operation.
type ResponseDef struct {
	Status      string
	Description string
	ContentType string
	Ref         string
	Schema      *def.Schema
	Headers     []HeaderDef
}

// HeaderDef describes a response header.
type HeaderDef struct {
	Name        string
	Description string
	Required    bool
	Ref         string
	Schema      *def.Schema
}

// Generator assembles OpenAPI documents from operation definitions. One
// generator owns one component registry; all conversions within a Generate
// call share it, sequentially.
type Generator struct {
	components *Components
	diag       *diagnostic.Collector
}

// NewGenerator creates a document generator. diag may be nil.
func NewGenerator(diag *diagnostic.Collector) *Generator {
	return &Generator{
		components: NewComponents(),
		diag:       diag,
	}
}

// Components exposes the registry, primarily so callers can pre-register
// schemas before generating.
func (g *Generator) Components() *Components {
	return g.components
}

// Generate builds the document. A conversion error aborts the whole build;
// registry state from an aborted build must not be reused.
func (g *Generator) Generate(d *DocumentDef) (*Document, error) {
	doc := &Document{
		OpenAPI: d.OpenAPI,
		Info:    d.Info,
		Servers: d.Servers,
		Tags:    d.Tags,
		Paths:   make(map[string]*PathItem),
	}
	if doc.OpenAPI == "" {
		doc.OpenAPI = "3.1.0"
	}

	for _, named := range d.Schemas {
		g.components.RegisterSchema(named.Name, named.Schema)
	}

	for _, opDef := range d.Operations {
		op, err := g.buildOperation(opDef)
		if err != nil {
			return nil, err
		}
		item, exists := doc.Paths[opDef.Path]
		if !exists {
			item = &PathItem{}
			doc.Paths[opDef.Path] = item
		}
		if err := setOperation(item, opDef.Method, op); err != nil {
			return nil, fmt.Errorf("path %s: %w", opDef.Path, err)
		}
	}

	components, err := g.emitComponents(d.SecuritySchemes)
	if err != nil {
		return nil, err
	}
	doc.Components = components

	return doc, nil
}

func setOperation(item *PathItem, method string, op *Operation) error {
	switch strings.ToUpper(method) {
	case "GET":
		item.Get = op
	case "POST":
		item.Post = op
	case "PUT":
		item.Put = op
	case "DELETE":
		item.Delete = op
	case "PATCH":
		item.Patch = op
	case "HEAD":
		item.Head = op
	case "OPTIONS":
		item.Options = op
	default:
		return fmt.Errorf("unsupported method %q", method)
	}
	return nil
}

func (g *Generator) buildOperation(opDef OperationDef) (*Operation, error) {
	op := &Operation{
		OperationID: opDef.OperationID,
		Summary:     opDef.Summary,
		Description: opDef.Description,
		Tags:        opDef.Tags,
		Deprecated:  opDef.Deprecated,
		Responses:   make(Responses),
	}
	at := fmt.Sprintf("%s %s", strings.ToUpper(opDef.Method), opDef.Path)

	for _, paramDef := range opDef.Parameters {
		param, err := g.buildParameter(paramDef, at)
		if err != nil {
			return nil, err
		}
		op.Parameters = append(op.Parameters, param)
	}

	if opDef.RequestBody != nil {
		body, err := g.buildRequestBody(*opDef.RequestBody, at)
		if err != nil {
			return nil, err
		}
		op.RequestBody = body
	}

	if len(opDef.Responses) == 0 {
		g.diag.Warn(diagnostic.CategoryOperation, at, "operation declares no responses")
	}
	for _, respDef := range opDef.Responses {
		resp, err := g.buildResponse(respDef, at)
		if err != nil {
			return nil, err
		}
		op.Responses[respDef.Status] = resp
	}

	return op, nil
}

// newState seeds a traversal for one top-level schema conversion. Each
// conversion gets a fresh state; the registry is the build-wide one.
func (g *Generator) newState(direction def.Direction, at string, segment string) *State {
	state := NewState(direction, g.components)
	state.Diag = g.diag
	return state.child(at).child(segment)
}

func (g *Generator) buildParameter(paramDef ParameterDef, at string) (*Parameter, error) {
	if paramDef.Ref != "" && paramDef.Schema != nil {
		if rec, ok := g.components.Parameters.Get(paramDef.Schema); ok && rec.Status == StatusComplete {
			return &Parameter{Ref: parameterRefPrefix + rec.Ref}, nil
		}
	}

	state := g.newState(def.DirectionInput, at, "parameter: "+paramDef.Name)
	schema, err := CreateSchemaObject(paramDef.Schema, state)
	if err != nil {
		return nil, err
	}

	required := paramDef.Required
	if paramDef.In == "path" {
		// Path parameters are always required.
		required = true
	} else if paramDef.Schema != nil && def.IsOptional(paramDef.Schema, def.DirectionInput) {
		required = false
	}

	param := &Parameter{
		Name:        paramDef.Name,
		In:          paramDef.In,
		Description: paramDef.Description,
		Required:    required,
		Schema:      schema,
	}
	if paramDef.Ref != "" && paramDef.Schema != nil {
		g.components.Parameters.Set(paramDef.Schema, &Record[*Parameter]{
			Status:       StatusComplete,
			Ref:          paramDef.Ref,
			Object:       param,
			CreationType: def.DirectionInput,
		})
		return &Parameter{Ref: parameterRefPrefix + paramDef.Ref}, nil
	}
	return param, nil
}

func (g *Generator) buildRequestBody(bodyDef RequestBodyDef, at string) (*RequestBody, error) {
	if bodyDef.Ref != "" && bodyDef.Schema != nil {
		if rec, ok := g.components.RequestBodies.Get(bodyDef.Schema); ok && rec.Status == StatusComplete {
			return &RequestBody{Ref: requestBodyRefPrefix + rec.Ref}, nil
		}
	}

	state := g.newState(def.DirectionInput, at, "request body")
	schema, err := CreateSchemaObject(bodyDef.Schema, state)
	if err != nil {
		return nil, err
	}

	contentType := bodyDef.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	body := &RequestBody{
		Description: bodyDef.Description,
		Required:    bodyDef.Required,
		Content:     map[string]MediaType{contentType: {Schema: schema}},
	}
	if bodyDef.Ref != "" && bodyDef.Schema != nil {
		g.components.RequestBodies.Set(bodyDef.Schema, &Record[*RequestBody]{
			Status:       StatusComplete,
			Ref:          bodyDef.Ref,
			Object:       body,
			CreationType: def.DirectionInput,
		})
		return &RequestBody{Ref: requestBodyRefPrefix + bodyDef.Ref}, nil
	}
	return body, nil
}

func (g *Generator) buildResponse(respDef ResponseDef, at string) (*Response, error) {
	if respDef.Ref != "" && respDef.Schema != nil {
		if rec, ok := g.components.Responses.Get(respDef.Schema); ok && rec.Status == StatusComplete {
			return &Response{Ref: responseRefPrefix + rec.Ref}, nil
		}
	}

	resp := &Response{Description: respDef.Description}

	if respDef.Schema != nil {
		state := g.newState(def.DirectionOutput, at, "response: "+respDef.Status)
		schema, err := CreateSchemaObject(respDef.Schema, state)
		if err != nil {
			return nil, err
		}
		contentType := respDef.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		resp.Content = map[string]MediaType{contentType: {Schema: schema}}
	}

	for _, headerDef := range respDef.Headers {
		header, err := g.buildHeader(headerDef, at, respDef.Status)
		if err != nil {
			return nil, err
		}
		if resp.Headers == nil {
			resp.Headers = make(map[string]*Header)
		}
		resp.Headers[headerDef.Name] = header
	}

	if respDef.Ref != "" && respDef.Schema != nil {
		g.components.Responses.Set(respDef.Schema, &Record[*Response]{
			Status:       StatusComplete,
			Ref:          respDef.Ref,
			Object:       resp,
			CreationType: def.DirectionOutput,
		})
		return &Response{Ref: responseRefPrefix + respDef.Ref}, nil
	}
	return resp, nil
}

func (g *Generator) buildHeader(headerDef HeaderDef, at string, status string) (*Header, error) {
	if headerDef.Ref != "" && headerDef.Schema != nil {
		if rec, ok := g.components.Headers.Get(headerDef.Schema); ok && rec.Status == StatusComplete {
			return &Header{Ref: headerRefPrefix + rec.Ref}, nil
		}
	}

	state := g.newState(def.DirectionOutput, at, fmt.Sprintf("response: %s > header: %s", status, headerDef.Name))
	schema, err := CreateSchemaObject(headerDef.Schema, state)
	if err != nil {
		return nil, err
	}

	header := &Header{
		Description: headerDef.Description,
		Required:    headerDef.Required,
		Schema:      schema,
	}
	if headerDef.Ref != "" && headerDef.Schema != nil {
		g.components.Headers.Set(headerDef.Schema, &Record[*Header]{
			Status:       StatusComplete,
			Ref:          headerDef.Ref,
			Object:       header,
			CreationType: def.DirectionOutput,
		})
		return &Header{Ref: headerRefPrefix + headerDef.Ref}, nil
	}
	return header, nil
}

// emitComponents finishes any pre-registered schemas nobody referenced and
// renders the registry into the document components section, in registration
// order.
func (g *Generator) emitComponents(securitySchemes map[string]*SecurityScheme) (*ComponentsObject, error) {
	// Generating a pending schema can register further schemas, so drain
	// until stable.
	for {
		var pending []*def.Schema
		g.components.Schemas.Each(func(node *def.Schema, rec *Record[*Schema]) {
			if rec.Status == StatusManual {
				pending = append(pending, node)
			}
		})
		if len(pending) == 0 {
			break
		}
		for _, node := range pending {
			state := NewState(def.DirectionInput, g.components)
			state.Diag = g.diag
			state = state.child("components")
			if _, err := CreateSchemaObject(node, state); err != nil {
				return nil, err
			}
		}
	}

	out := &ComponentsObject{SecuritySchemes: securitySchemes}
	empty := len(securitySchemes) == 0

	if g.components.Schemas.Len() > 0 {
		m := orderedmap.New[string, *Schema]()
		g.components.Schemas.Each(func(node *def.Schema, rec *Record[*Schema]) {
			if _, exists := m.Get(rec.Ref); exists {
				g.diag.Warn(diagnostic.CategoryComponent, "components",
					fmt.Sprintf("schema component name %q registered for more than one definition; keeping the first", rec.Ref))
				return
			}
			m.Set(rec.Ref, rec.Object)
		})
		out.Schemas = m
		empty = false
	}
	if g.components.Parameters.Len() > 0 {
		m := orderedmap.New[string, *Parameter]()
		g.components.Parameters.Each(func(node *def.Schema, rec *Record[*Parameter]) {
			m.Set(rec.Ref, rec.Object)
		})
		out.Parameters = m
		empty = false
	}
	if g.components.Headers.Len() > 0 {
		m := orderedmap.New[string, *Header]()
		g.components.Headers.Each(func(node *def.Schema, rec *Record[*Header]) {
			m.Set(rec.Ref, rec.Object)
		})
		out.Headers = m
		empty = false
	}
	if g.components.Responses.Len() > 0 {
		m := orderedmap.New[string, *Response]()
		g.components.Responses.Each(func(node *def.Schema, rec *Record[*Response]) {
			m.Set(rec.Ref, rec.Object)
		})
		out.Responses = m
		empty = false
	}
	if g.components.RequestBodies.Len() > 0 {
		m := orderedmap.New[string, *RequestBody]()
		g.components.RequestBodies.Each(func(node *def.Schema, rec *Record[*RequestBody]) {
			m.Set(rec.Ref, rec.Object)
		})
		out.RequestBodies = m
		empty = false
	}

	if empty {
		return nil, nil
	}
	return out, nil
}

// ToJSON serializes the document to JSON with indentation.
func (doc *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// ToYAML serializes the document to YAML. The document is rendered to JSON
// first and re-parsed as a YAML node, which keeps the ordered-map key order
// that a round trip through Go maps would lose.
func (doc *Document) ToYAML() ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return yaml.Marshal(&node)
}
