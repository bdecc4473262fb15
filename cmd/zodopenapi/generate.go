package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tomwwright/zod-openapi/internal/config"
	"github.com/tomwwright/zod-openapi/internal/diagnostic"
	"github.com/tomwwright/zod-openapi/internal/openapi"
)

func newGenerateCmd() *cobra.Command {
	var (
		outPath string
		format  string
		strict  bool
		quiet   bool
	)
	cmd := &cobra.Command{
		Use:   "generate <definition-file>",
		Short: "Generate an OpenAPI 3.1 document from a definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, diag, err := generateDocument(args[0], strict, quiet)
			if err != nil {
				return err
			}
			reportDiagnostics(cmd, diag)
			if diag.HasErrors() {
				return fmt.Errorf("generation failed: %s", diag.Summary())
			}

			var data []byte
			switch format {
			case "json":
				data, err = doc.ToJSON()
			case "yaml":
				data, err = doc.ToYAML()
			default:
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			return os.WriteFile(outPath, append(data, '\n'), 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat modeling warnings as errors")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress warnings")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <definition-file>",
		Short: "Generate in-memory and check the result for OpenAPI 3.1 compliance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, diag, err := generateDocument(args[0], strict, false)
			if err != nil {
				return err
			}
			reportDiagnostics(cmd, diag)

			issues := openapi.ValidateDocument(doc)
			issues = append(issues, openapi.CompileComponents(doc)...)
			for _, issue := range issues {
				fmt.Fprintln(cmd.ErrOrStderr(), "invalid:", issue.Error())
			}
			if len(issues) > 0 || diag.HasErrors() {
				return fmt.Errorf("document is not compliant (%d issue(s))", len(issues)+diag.ErrorCount())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "document is valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat modeling warnings as errors")
	return cmd
}

func generateDocument(path string, strict, quiet bool) (*openapi.Document, *diagnostic.Collector, error) {
	definition, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	diag := diagnostic.NewCollector(strict, quiet)
	generator := openapi.NewGenerator(diag)
	doc, err := generator.Generate(toDocumentDef(definition))
	if err != nil {
		return nil, nil, err
	}
	return doc, diag, nil
}

func reportDiagnostics(cmd *cobra.Command, diag *diagnostic.Collector) {
	for _, d := range diag.Diagnostics() {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}
}

// toDocumentDef maps the file-level definition onto the generator's input.
func toDocumentDef(d *config.Definition) *openapi.DocumentDef {
	out := &openapi.DocumentDef{
		OpenAPI: d.OpenAPI,
		Info: openapi.Info{
			Title:       d.Info.Title,
			Description: d.Info.Description,
			Version:     d.Info.Version,
		},
	}
	if d.Info.Contact != nil {
		out.Info.Contact = &openapi.Contact{
			Name:  d.Info.Contact.Name,
			URL:   d.Info.Contact.URL,
			Email: d.Info.Contact.Email,
		}
	}
	if d.Info.License != nil {
		out.Info.License = &openapi.License{
			Name: d.Info.License.Name,
			URL:  d.Info.License.URL,
		}
	}
	for _, server := range d.Servers {
		out.Servers = append(out.Servers, openapi.Server{URL: server.URL, Description: server.Description})
	}
	for _, tag := range d.Tags {
		out.Tags = append(out.Tags, openapi.Tag{Name: tag.Name, Description: tag.Description})
	}
	if len(d.SecuritySchemes) > 0 {
		out.SecuritySchemes = make(map[string]*openapi.SecurityScheme, len(d.SecuritySchemes))
		for name, scheme := range d.SecuritySchemes {
			out.SecuritySchemes[name] = &openapi.SecurityScheme{
				Type:         scheme.Type,
				Scheme:       scheme.Scheme,
				BearerFormat: scheme.BearerFormat,
				In:           scheme.In,
				Name:         scheme.Name,
				Description:  scheme.Description,
			}
		}
	}
	for _, named := range d.Schemas {
		out.Schemas = append(out.Schemas, openapi.NamedSchema{Name: named.Name, Schema: named.Schema})
	}
	for _, op := range d.Paths {
		out.Operations = append(out.Operations, toOperationDef(op))
	}
	return out
}

func toOperationDef(op config.Operation) openapi.OperationDef {
	out := openapi.OperationDef{
		Method:      op.Method,
		Path:        op.Path,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
	}
	for _, param := range op.Parameters {
		out.Parameters = append(out.Parameters, openapi.ParameterDef{
			Name:        param.Name,
			In:          param.In,
			Description: param.Description,
			Required:    param.Required,
			Ref:         param.Ref,
			Schema:      param.Schema,
		})
	}
	if op.RequestBody != nil {
		out.RequestBody = &openapi.RequestBodyDef{
			Description: op.RequestBody.Description,
			ContentType: op.RequestBody.ContentType,
			Required:    op.RequestBody.Required,
			Ref:         op.RequestBody.Ref,
			Schema:      op.RequestBody.Schema,
		}
	}
	for _, resp := range op.Responses {
		respDef := openapi.ResponseDef{
			Status:      resp.Status,
			Description: resp.Description,
			ContentType: resp.ContentType,
			Ref:         resp.Ref,
			Schema:      resp.Schema,
		}
		for _, header := range resp.Headers {
			respDef.Headers = append(respDef.Headers, openapi.HeaderDef{
				Name:        header.Name,
				Description: header.Description,
				Required:    header.Required,
				Ref:         header.Ref,
				Schema:      header.Schema,
			})
		}
		out.Responses = append(out.Responses, respDef)
	}
	return out
}
