package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents an OpenAPI spec compliance error.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateDocument checks an OpenAPI document for spec compliance.
// Returns a list of validation errors, or nil if the document is valid.
func ValidateDocument(doc *Document) []ValidationError {
	var errs []ValidationError

	if doc.OpenAPI == "" {
		errs = append(errs, ValidationError{Path: "openapi", Message: "required field missing"})
	} else if !strings.HasPrefix(doc.OpenAPI, "3.1") {
		errs = append(errs, ValidationError{Path: "openapi", Message: fmt.Sprintf("expected 3.1.x, got %q", doc.OpenAPI)})
	}

	if doc.Info.Title == "" {
		errs = append(errs, ValidationError{Path: "info.title", Message: "required field missing"})
	}
	if doc.Info.Version == "" {
		errs = append(errs, ValidationError{Path: "info.version", Message: "required field missing"})
	}

	if doc.Paths == nil {
		errs = append(errs, ValidationError{Path: "paths", Message: "required field missing"})
	}
	for path, item := range doc.Paths {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("paths[%q]", path),
				Message: "path must begin with /",
			})
		}
		errs = append(errs, validatePathItem(path, item)...)
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for pair := doc.Components.Schemas.Oldest(); pair != nil; pair = pair.Next() {
			errs = append(errs, validateSchema(fmt.Sprintf("components.schemas.%s", pair.Key), pair.Value)...)
		}
	}

	for i, server := range doc.Servers {
		if server.URL == "" {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("servers[%d].url", i),
				Message: "required field missing",
			})
		}
	}

	return errs
}

func validatePathItem(path string, item *PathItem) []ValidationError {
	var errs []ValidationError
	prefix := fmt.Sprintf("paths[%q]", path)

	ops := map[string]*Operation{
		"get": item.Get, "post": item.Post, "put": item.Put,
		"delete": item.Delete, "patch": item.Patch,
		"head": item.Head, "options": item.Options,
	}
	for method, op := range ops {
		if op == nil {
			continue
		}
		errs = append(errs, validateOperation(fmt.Sprintf("%s.%s", prefix, method), op)...)
	}
	return errs
}

func validateOperation(prefix string, op *Operation) []ValidationError {
	var errs []ValidationError

	if len(op.Responses) == 0 {
		errs = append(errs, ValidationError{
			Path:    prefix + ".responses",
			Message: "at least one response is required",
		})
	}

	for i, param := range op.Parameters {
		if param.Ref != "" {
			continue
		}
		paramPath := fmt.Sprintf("%s.parameters[%d]", prefix, i)
		if param.Name == "" {
			errs = append(errs, ValidationError{Path: paramPath + ".name", Message: "required field missing"})
		}
		switch param.In {
		case "":
			errs = append(errs, ValidationError{Path: paramPath + ".in", Message: "required field missing"})
		case "query", "path", "header", "cookie":
		default:
			errs = append(errs, ValidationError{
				Path:    paramPath + ".in",
				Message: fmt.Sprintf("invalid value %q, must be query/path/header/cookie", param.In),
			})
		}
		if param.In == "path" && !param.Required {
			errs = append(errs, ValidationError{
				Path:    paramPath + ".required",
				Message: "path parameters must be required",
			})
		}
	}

	for code, resp := range op.Responses {
		if resp.Ref != "" {
			continue
		}
		if resp.Description == "" {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("%s.responses[%s].description", prefix, code),
				Message: "required field missing",
			})
		}
	}

	return errs
}

func validateSchema(prefix string, schema *Schema) []ValidationError {
	var errs []ValidationError
	if schema == nil {
		return errs
	}
	// $ref with a type is almost always a generation bug even though 3.1
	// tolerates sibling keywords.
	if schema.Ref != "" && schema.Type != "" {
		errs = append(errs, ValidationError{
			Path:    prefix,
			Message: "$ref should not be combined with type",
		})
	}
	return errs
}

// CompileComponents compiles every named schema component as a standalone
// JSON Schema (draft 2020-12, which OpenAPI 3.1 schemas are). This catches
// structurally invalid output — bad $ref pointers, malformed keywords — that
// the shallow checks above miss.
func CompileComponents(doc *Document) []ValidationError {
	if doc.Components == nil || doc.Components.Schemas == nil || doc.Components.Schemas.Len() == 0 {
		return nil
	}

	data, err := doc.ToJSON()
	if err != nil {
		return []ValidationError{{Path: "components.schemas", Message: err.Error()}}
	}
	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []ValidationError{{Path: "components.schemas", Message: err.Error()}}
	}

	var errs []ValidationError
	for pair := doc.Components.Schemas.Oldest(); pair != nil; pair = pair.Next() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("openapi.json", resource); err != nil {
			return append(errs, ValidationError{Path: "components.schemas", Message: err.Error()})
		}
		if _, err := compiler.Compile("openapi.json#/components/schemas/" + pair.Key); err != nil {
			errs = append(errs, ValidationError{
				Path:    "components.schemas." + pair.Key,
				Message: err.Error(),
			})
		}
	}
	return errs
}

// ValidateJSON validates raw JSON against OAS 3.1 structural requirements.
func ValidateJSON(jsonData []byte) ([]ValidationError, error) {
	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return ValidateDocument(&doc), nil
}
