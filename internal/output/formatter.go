// Package output formats an inferred schema, a schema diff, or a
// validation result for a chosen presentation: native JSON, JSON Schema,
// RFC-6902 JSON Patch, comment-only DDL hints, or human-readable text.
package output

import (
	"fmt"
	"strings"

	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJSONSchema Format = "jsonschema"
	FormatJSONPatch  Format = "jsonpatch"
	FormatDDL        Format = "ddl"
	FormatHuman      Format = "human"
)

// Formatter renders the three surfaces the CLI produces: an inferred
// schema (generate/merge), a schema diff (diff), and a validation result
// (validate).
type Formatter interface {
	FormatSchema(fields []*schema.OutputField) (string, error)
	FormatDiff(d *diff.SchemaDiff) (string, error)
	FormatValidation(r *validate.Result) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to JSON.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatJSON:
		return jsonFormatter{}, nil
	case FormatJSONSchema:
		return jsonSchemaFormatter{}, nil
	case FormatJSONPatch:
		return jsonPatchFormatter{}, nil
	case FormatDDL:
		return ddlFormatter{}, nil
	case FormatHuman:
		return humanFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'json', 'jsonschema', 'jsonpatch', 'ddl', or 'human'", name)
	}
}

// errUnsupported is returned by a formatter whose output shape has no
// sensible rendering for the given kind of payload.
func errUnsupported(format, kind string) error {
	return fmt.Errorf("output format %q cannot render a %s", format, kind)
}
