// Package config loads document definitions: the API metadata, named schema
// components and operations that drive document generation. Definitions are
// JSON or YAML files whose schema nodes use the def tree format.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomwwright/zod-openapi/internal/def"
	"gopkg.in/yaml.v3"
)

// Definition is a loadable description of one OpenAPI document.
type Definition struct {
	OpenAPI string `json:"openapi,omitempty" yaml:"openapi,omitempty"`
	Info    Info   `json:"info" yaml:"info"`

	Servers         []Server                  `json:"servers,omitempty" yaml:"servers,omitempty" validate:"dive"`
	Tags            []Tag                     `json:"tags,omitempty" yaml:"tags,omitempty" validate:"dive"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`

	// Schemas declares named components in registration order. Operation
	// schemas reference them with {use: Name}; every use of a name resolves
	// to the same node instance.
	Schemas []NamedSchema `json:"schemas,omitempty" yaml:"schemas,omitempty" validate:"dive"`

	Paths []Operation `json:"paths,omitempty" yaml:"paths,omitempty" validate:"dive"`
}

// Info holds API metadata.
type Info struct {
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string   `json:"version" yaml:"version" validate:"required"`
	Contact     *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License     *License `json:"license,omitempty" yaml:"license,omitempty"`
}

// Contact holds API contact info.
type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
}

// License holds API license info.
type License struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Server represents an API server.
type Server struct {
	URL         string `json:"url" yaml:"url" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Tag represents a document tag.
type Tag struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SecurityScheme represents a security scheme.
type SecurityScheme struct {
	Type         string `json:"type" yaml:"type" validate:"required"`
	Scheme       string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	In           string `json:"in,omitempty" yaml:"in,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NamedSchema assigns a component name to a schema definition.
type NamedSchema struct {
	Name   string      `json:"name" yaml:"name" validate:"required"`
	Schema *def.Schema `json:"schema" yaml:"schema" validate:"required"`
}

// Operation describes one HTTP operation.
type Operation struct {
	Method      string       `json:"method" yaml:"method" validate:"required"`
	Path        string       `json:"path" yaml:"path" validate:"required,startswith=/"`
	OperationID string       `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated  bool         `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty" yaml:"parameters,omitempty" validate:"dive"`
	RequestBody *RequestBody `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   []Response   `json:"responses,omitempty" yaml:"responses,omitempty" validate:"dive"`
}

// Parameter describes an operation parameter.
type Parameter struct {
	Name        string      `json:"name" yaml:"name" validate:"required"`
	In          string      `json:"in" yaml:"in" validate:"required,oneof=query path header cookie"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Ref         string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Schema      *def.Schema `json:"schema" yaml:"schema" validate:"required"`
}

// RequestBody describes an operation request body.
type RequestBody struct {
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	ContentType string      `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Ref         string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Schema      *def.Schema `json:"schema" yaml:"schema" validate:"required"`
}

// Response describes one response of an operation.
type Response struct {
	Status      string      `json:"status" yaml:"status" validate:"required"`
	Description string      `json:"description" yaml:"description" validate:"required"`
	ContentType string      `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Ref         string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Schema      *def.Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
	Headers     []Header    `json:"headers,omitempty" yaml:"headers,omitempty" validate:"dive"`
}

// Header describes a response header.
type Header struct {
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Ref         string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Schema      *def.Schema `json:"schema" yaml:"schema" validate:"required"`
}

// Load reads, parses, validates and resolves a definition file. YAML is
// detected by extension; everything else parses as JSON.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %q: %w", path, err)
	}

	d := &Definition{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, d); err != nil {
			return nil, fmt.Errorf("failed to parse definition file %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, d); err != nil {
			return nil, fmt.Errorf("failed to parse definition file %q: %w", path, err)
		}
	}

	if d.OpenAPI == "" {
		d.OpenAPI = "3.1.0"
	}

	// Validation runs before resolution: an unresolved tree is guaranteed
	// acyclic, a resolved one is not.
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := d.Resolve(); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve replaces every {use: Name} node in the definition with the named
// schema's node, sharing pointer identity, and assigns component names as Ref
// hints to named schemas that do not declare one.
func (d *Definition) Resolve() error {
	index := make(map[string]*def.Schema, len(d.Schemas))
	for _, named := range d.Schemas {
		if named.Schema.Use == "" && named.Schema.Ref == "" {
			named.Schema.Ref = named.Name
		}
		if _, exists := index[named.Name]; exists {
			return fmt.Errorf("schema %q declared more than once", named.Name)
		}
		index[named.Name] = named.Schema
	}
	lookup := func(name string) (*def.Schema, bool) {
		s, ok := index[name]
		return s, ok
	}

	var err error
	for i := range d.Schemas {
		if d.Schemas[i].Schema, err = def.Resolve(d.Schemas[i].Schema, lookup); err != nil {
			return err
		}
		// An alias may point at another name; re-index so later uses share
		// the resolved node.
		index[d.Schemas[i].Name] = d.Schemas[i].Schema
	}
	for i := range d.Paths {
		op := &d.Paths[i]
		for j := range op.Parameters {
			if op.Parameters[j].Schema, err = def.Resolve(op.Parameters[j].Schema, lookup); err != nil {
				return err
			}
		}
		if op.RequestBody != nil {
			if op.RequestBody.Schema, err = def.Resolve(op.RequestBody.Schema, lookup); err != nil {
				return err
			}
		}
		for j := range op.Responses {
			if op.Responses[j].Schema, err = def.Resolve(op.Responses[j].Schema, lookup); err != nil {
				return err
			}
			for k := range op.Responses[j].Headers {
				if op.Responses[j].Headers[k].Schema, err = def.Resolve(op.Responses[j].Headers[k].Schema, lookup); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
