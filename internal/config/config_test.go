package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomwwright/zod-openapi/internal/def"
)

func writeDefinition(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const yamlDefinition = `
info:
  title: Pet Store
  version: 1.0.0
schemas:
  - name: Pet
    schema:
      kind: object
      fields:
        - name: id
          schema: {kind: string}
        - name: tag
          schema:
            kind: optional
            inner: {kind: string}
paths:
  - method: get
    path: /pets/{id}
    parameters:
      - name: id
        in: path
        schema: {kind: string}
    responses:
      - status: "200"
        description: a pet
        schema: {use: Pet}
`

func TestLoad_YAML(t *testing.T) {
	path := writeDefinition(t, "api.yaml", yamlDefinition)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if d.OpenAPI != "3.1.0" {
		t.Errorf("openapi defaulted to %q", d.OpenAPI)
	}
	if d.Info.Title != "Pet Store" {
		t.Errorf("title = %q", d.Info.Title)
	}
	if len(d.Schemas) != 1 || len(d.Paths) != 1 {
		t.Fatalf("schemas=%d paths=%d", len(d.Schemas), len(d.Paths))
	}

	pet := d.Schemas[0].Schema
	if pet.Kind != def.KindObject || len(pet.Fields) != 2 {
		t.Fatalf("pet schema: %s", pet.Summary())
	}
	if pet.Ref != "Pet" {
		t.Errorf("named schema should get its name as a Ref hint, got %q", pet.Ref)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeDefinition(t, "api.json", `{
		"info": {"title": "Pet Store", "version": "1.0.0"},
		"schemas": [
			{"name": "Pet", "schema": {"kind": "object"}}
		]
	}`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d.Schemas[0].Schema.Kind != def.KindObject {
		t.Errorf("kind = %q", d.Schemas[0].Schema.Kind)
	}
}

func TestLoad_UseResolvesToSharedNode(t *testing.T) {
	path := writeDefinition(t, "api.yaml", yamlDefinition)
	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	pet := d.Schemas[0].Schema
	response := d.Paths[0].Responses[0].Schema
	if response != pet {
		t.Error("a use node must resolve to the named schema's node, not a copy")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("expected a read error naming the file, got %v", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeDefinition(t, "bad.yaml", "info: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing title",
			content: `{"info": {"version": "1"}}`,
			want:    "Info.Title",
		},
		{
			name: "bad parameter location",
			content: `{
				"info": {"title": "T", "version": "1"},
				"paths": [{
					"method": "get", "path": "/x",
					"parameters": [{"name": "q", "in": "body", "schema": {"kind": "string"}}]
				}]
			}`,
			want: "oneof",
		},
		{
			name: "path without leading slash",
			content: `{
				"info": {"title": "T", "version": "1"},
				"paths": [{"method": "get", "path": "x"}]
			}`,
			want: "startswith",
		},
		{
			name: "response without description",
			content: `{
				"info": {"title": "T", "version": "1"},
				"paths": [{
					"method": "get", "path": "/x",
					"responses": [{"status": "200"}]
				}]
			}`,
			want: "Description",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDefinition(t, "api.json", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestResolve_DuplicateSchemaName(t *testing.T) {
	path := writeDefinition(t, "api.json", `{
		"info": {"title": "T", "version": "1"},
		"schemas": [
			{"name": "Pet", "schema": {"kind": "object"}},
			{"name": "Pet", "schema": {"kind": "string"}}
		]
	}`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "Pet") {
		t.Errorf("expected a duplicate-name error, got %v", err)
	}
}

func TestResolve_UnresolvedUse(t *testing.T) {
	path := writeDefinition(t, "api.json", `{
		"info": {"title": "T", "version": "1"},
		"paths": [{
			"method": "get", "path": "/x",
			"responses": [{"status": "200", "description": "ok", "schema": {"use": "Ghost"}}]
		}]
	}`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "Ghost") {
		t.Errorf("expected an unresolved-use error, got %v", err)
	}
}

func TestResolve_CyclicNamedSchema(t *testing.T) {
	path := writeDefinition(t, "api.yaml", `
info:
  title: T
  version: "1"
schemas:
  - name: Category
    schema:
      kind: object
      fields:
        - name: name
          schema: {kind: string}
        - name: children
          schema:
            kind: array
            element: {use: Category}
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	category := d.Schemas[0].Schema
	children := category.Fields[1].Schema
	if children.Element != category {
		t.Error("self-reference must resolve to the defining node")
	}
}

func TestResolve_ExplicitRefHintKept(t *testing.T) {
	path := writeDefinition(t, "api.json", `{
		"info": {"title": "T", "version": "1"},
		"schemas": [
			{"name": "pet-component", "schema": {"kind": "object", "ref": "Pet"}}
		]
	}`)
	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Schemas[0].Schema.Ref != "Pet" {
		t.Errorf("a declared ref hint must win over the component name, got %q", d.Schemas[0].Schema.Ref)
	}
}
