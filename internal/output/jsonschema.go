package output

import (
	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

// jsonSchemaFormatter renders the inferred schema as JSON Schema draft-07.
// It has no sensible rendering for a diff or a validation result, since
// neither is a document shape; those methods report an error instead.
type jsonSchemaFormatter struct{}

type jsonSchemaDoc struct {
	Schema     string                    `json:"$schema"`
	Type       string                    `json:"type"`
	Properties map[string]*jsonSchemaDoc `json:"properties,omitempty"`
	Items      *jsonSchemaDoc            `json:"items,omitempty"`
	Required   []string                  `json:"required,omitempty"`
	Format     string                    `json:"format,omitempty"`
}

func (jsonSchemaFormatter) FormatSchema(fields []*schema.OutputField) (string, error) {
	doc := fieldsToJSONSchema(fields)
	doc.Schema = "http://json-schema.org/draft-07/schema#"
	return marshalJSON(doc)
}

func fieldsToJSONSchema(fields []*schema.OutputField) *jsonSchemaDoc {
	doc := &jsonSchemaDoc{Type: "object", Properties: map[string]*jsonSchemaDoc{}}
	for _, f := range fields {
		doc.Properties[f.Name] = fieldToJSONSchema(f)
		if f.Mode == "REQUIRED" {
			doc.Required = append(doc.Required, f.Name)
		}
	}
	return doc
}

func fieldToJSONSchema(f *schema.OutputField) *jsonSchemaDoc {
	item := scalarJSONSchema(f)
	if f.Mode != "REPEATED" {
		return item
	}
	return &jsonSchemaDoc{Type: "array", Items: item}
}

func scalarJSONSchema(f *schema.OutputField) *jsonSchemaDoc {
	switch f.Type {
	case "STRING":
		return &jsonSchemaDoc{Type: "string"}
	case "INTEGER":
		return &jsonSchemaDoc{Type: "integer"}
	case "FLOAT":
		return &jsonSchemaDoc{Type: "number"}
	case "BOOLEAN":
		return &jsonSchemaDoc{Type: "boolean"}
	case "TIMESTAMP":
		return &jsonSchemaDoc{Type: "string", Format: "date-time"}
	case "DATE":
		return &jsonSchemaDoc{Type: "string", Format: "date"}
	case "TIME":
		return &jsonSchemaDoc{Type: "string", Format: "time"}
	case "RECORD":
		return fieldsToJSONSchema(f.Fields)
	default:
		return &jsonSchemaDoc{Type: "string"}
	}
}

func (jsonSchemaFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	return "", errUnsupported("jsonschema", "diff")
}

func (jsonSchemaFormatter) FormatValidation(r *validate.Result) (string, error) {
	return "", errUnsupported("jsonschema", "validation result")
}
