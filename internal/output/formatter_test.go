package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

func TestNewFormatterDefaultsToJSON(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)
	_, ok := f.(jsonFormatter)
	assert.True(t, ok)
}

func TestNewFormatterUnknownErrors(t *testing.T) {
	_, err := NewFormatter("xml")
	assert.Error(t, err)
}

func TestNewFormatterKnownNames(t *testing.T) {
	for _, name := range []string{"json", "jsonschema", "jsonpatch", "ddl", "human"} {
		f, err := NewFormatter(name)
		require.NoError(t, err)
		require.NotNil(t, f)
	}
}

func sampleFields() []*schema.OutputField {
	return []*schema.OutputField{
		{Name: "id", Type: "INTEGER", Mode: "REQUIRED"},
		{Name: "tags", Type: "STRING", Mode: "REPEATED"},
		{Name: "user", Type: "RECORD", Mode: "NULLABLE", Fields: []*schema.OutputField{
			{Name: "name", Type: "STRING", Mode: "NULLABLE"},
		}},
	}
}

func TestJSONFormatterRendersSchemaFields(t *testing.T) {
	out, err := jsonFormatter{}.FormatSchema(sampleFields())
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "id"`)
	assert.Contains(t, out, `"type": "RECORD"`)
}

func TestJSONSchemaFormatterMarksRequired(t *testing.T) {
	out, err := jsonSchemaFormatter{}.FormatSchema(sampleFields())
	require.NoError(t, err)
	assert.Contains(t, out, `"required"`)
	assert.Contains(t, out, `"$schema"`)
}

func TestJSONSchemaFormatterRejectsDiff(t *testing.T) {
	_, err := jsonSchemaFormatter{}.FormatDiff(&diff.SchemaDiff{})
	assert.Error(t, err)
}

func TestDDLFormatterIsCommentOnly(t *testing.T) {
	out, err := ddlFormatter{}.FormatSchema(sampleFields())
	require.NoError(t, err)
	for _, line := range splitNonEmptyLines(out) {
		assert.True(t, len(line) >= 2 && line[:2] == "--")
	}
}

func TestHumanFormatterNoChanges(t *testing.T) {
	out, err := humanFormatter{}.FormatDiff(&diff.SchemaDiff{})
	require.NoError(t, err)
	assert.Equal(t, "No changes detected.\n", out)
}

func TestJSONPatchFormatterBuildsPointers(t *testing.T) {
	d := &diff.SchemaDiff{
		Added: []*schema.OutputField{{Name: "new_field", Type: "STRING", Mode: "NULLABLE"}},
	}
	out, err := jsonPatchFormatter{}.FormatDiff(d)
	require.NoError(t, err)
	assert.Contains(t, out, `"/new_field"`)
	assert.Contains(t, out, `"add"`)
}

func TestHumanFormatterValidation(t *testing.T) {
	out, err := humanFormatter{}.FormatValidation(&validate.Result{Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	invalid := &validate.Result{Valid: false, ErrorCount: 1, Errors: []validate.Issue{{Path: "id", Message: "missing required field"}}}
	out, err = humanFormatter{}.FormatValidation(invalid)
	require.NoError(t, err)
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "invalid")
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			if line := s[start:i]; line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	return out
}
