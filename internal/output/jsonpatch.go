package output

import (
	"strings"

	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

// jsonPatchFormatter renders a schema diff as an RFC-6902 JSON Patch
// document: add/remove/replace operations addressed by a JSON Pointer
// built from the dotted field path (`.` becomes `/`).
type jsonPatchFormatter struct{}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

func (jsonPatchFormatter) FormatSchema(fields []*schema.OutputField) (string, error) {
	return "", errUnsupported("jsonpatch", "schema")
}

func (jsonPatchFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	var ops []patchOp
	if d != nil {
		collectPatchOps(d, "", &ops)
	}
	return marshalJSON(ops)
}

func collectPatchOps(d *diff.SchemaDiff, pathPrefix string, ops *[]patchOp) {
	for _, f := range d.Added {
		*ops = append(*ops, patchOp{Op: "add", Path: pointer(pathPrefix, f.Name), Value: f})
	}
	for _, f := range d.Removed {
		*ops = append(*ops, patchOp{Op: "remove", Path: pointer(pathPrefix, f.Name)})
	}
	for _, m := range d.Modified {
		if len(m.Changes) > 0 {
			*ops = append(*ops, patchOp{Op: "replace", Path: pointer(pathPrefix, m.New.Name), Value: m.New})
		}
		if m.Nested != nil {
			collectPatchOps(m.Nested, pointerPath(pathPrefix, m.New.Name), ops)
		}
	}
}

// pointer builds a JSON Pointer (RFC-6901) from the dotted path prefix
// plus the field's own name.
func pointer(pathPrefix, name string) string {
	return "/" + pointerPath(pathPrefix, name)
}

func pointerPath(pathPrefix, name string) string {
	if pathPrefix == "" {
		return name
	}
	return strings.ReplaceAll(pathPrefix, ".", "/") + "/" + name
}

func (jsonPatchFormatter) FormatValidation(r *validate.Result) (string, error) {
	return "", errUnsupported("jsonpatch", "validation result")
}
