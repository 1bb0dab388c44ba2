package output

import (
	"fmt"
	"strings"

	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

type humanFormatter struct{}

func (humanFormatter) FormatSchema(fields []*schema.OutputField) (string, error) {
	var sb strings.Builder
	writeFieldLines(&sb, fields, 0)
	return sb.String(), nil
}

func writeFieldLines(sb *strings.Builder, fields []*schema.OutputField, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range fields {
		fmt.Fprintf(sb, "%s%s %s %s\n", indent, f.Name, f.Type, f.Mode)
		if len(f.Fields) > 0 {
			writeFieldLines(sb, f.Fields, depth+1)
		}
	}
}

// FormatDiff formats a schema diff as human-readable text.
func (humanFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	if d == nil || d.IsEmpty() {
		return "No changes detected.\n", nil
	}

	var sb strings.Builder
	writeSchemaDiffText(&sb, d, "")
	if d.HasBreakingChanges() {
		sb.WriteString("\nBreaking changes detected.\n")
	}
	return sb.String(), nil
}

func writeSchemaDiffText(sb *strings.Builder, d *diff.SchemaDiff, pathPrefix string) {
	for _, f := range d.Added {
		fmt.Fprintf(sb, "+ %s %s %s\n", joined(pathPrefix, f.Name), f.Type, f.Mode)
	}
	for _, f := range d.Removed {
		fmt.Fprintf(sb, "- %s %s %s\n", joined(pathPrefix, f.Name), f.Type, f.Mode)
	}
	for _, m := range d.Modified {
		marker := "~"
		if m.Breaking {
			marker = "! "
		}
		var changes []string
		for _, c := range m.Changes {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", c.Field, c.Old, c.New))
		}
		fmt.Fprintf(sb, "%s %s (%s)\n", marker, m.Path, strings.Join(changes, ", "))
		if m.Nested != nil {
			writeSchemaDiffText(sb, m.Nested, m.Path)
		}
	}
}

func joined(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// FormatValidation formats a validation result as human-readable text.
func (humanFormatter) FormatValidation(r *validate.Result) (string, error) {
	if r == nil {
		return "", nil
	}
	if r.Valid && len(r.Warnings) == 0 {
		return "valid\n", nil
	}

	var sb strings.Builder
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "error: %s: %s\n", e.Path, e.Message)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "warning: %s: %s\n", w.Path, w.Message)
	}
	if r.Valid {
		sb.WriteString("valid (with warnings)\n")
	} else {
		fmt.Fprintf(&sb, "invalid: %d error(s)\n", r.ErrorCount)
	}
	return sb.String(), nil
}
