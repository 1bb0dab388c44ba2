package output

import (
	"fmt"
	"strings"

	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

// ddlFormatter renders comment-only SQL hints. This system never connects
// to BigQuery and never emits executable DDL; the output documents what a
// human would run through `bq` or the console.
type ddlFormatter struct{}

func (ddlFormatter) FormatSchema(fields []*schema.OutputField) (string, error) {
	var sb strings.Builder
	sb.WriteString("-- bq mk --table --schema=<file> <dataset>.<table>\n")
	writeDDLFields(&sb, fields, 1)
	return sb.String(), nil
}

func writeDDLFields(sb *strings.Builder, fields []*schema.OutputField, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range fields {
		fmt.Fprintf(sb, "-- %s%s %s %s\n", indent, f.Name, f.Type, f.Mode)
		if len(f.Fields) > 0 {
			writeDDLFields(sb, f.Fields, depth+1)
		}
	}
}

// FormatDiff renders a diff as ALTER-TABLE hints, commented out: BigQuery
// has no DROP COLUMN and REQUIRED narrowing is rejected server-side, so
// nothing here is meant to run unmodified.
func (ddlFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	if d == nil || d.IsEmpty() {
		return "-- no schema changes\n", nil
	}

	var sb strings.Builder
	sb.WriteString("-- schema change hints; review before applying\n")
	writeDDLDiff(&sb, d, "")
	return sb.String(), nil
}

func writeDDLDiff(sb *strings.Builder, d *diff.SchemaDiff, pathPrefix string) {
	for _, f := range d.Added {
		fmt.Fprintf(sb, "-- ALTER TABLE <table> ADD COLUMN %s %s %s;\n", joined(pathPrefix, f.Name), f.Type, f.Mode)
	}
	for _, f := range d.Removed {
		fmt.Fprintf(sb, "-- ALTER TABLE <table> DROP COLUMN %s; -- %s %s, not supported by BigQuery\n", joined(pathPrefix, f.Name), f.Type, f.Mode)
	}
	for _, m := range d.Modified {
		if m.Breaking {
			fmt.Fprintf(sb, "-- BREAKING: %s changed (%s); requires a table rebuild\n", m.Path, changeList(m.Changes))
		} else {
			fmt.Fprintf(sb, "-- %s changed (%s)\n", m.Path, changeList(m.Changes))
		}
		if m.Nested != nil {
			writeDDLDiff(sb, m.Nested, m.Path)
		}
	}
}

func changeList(changes []*diff.FieldChange) string {
	var parts []string
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", c.Field, c.Old, c.New))
	}
	return strings.Join(parts, ", ")
}

func (ddlFormatter) FormatValidation(r *validate.Result) (string, error) {
	if r == nil || r.Valid {
		return "-- valid\n", nil
	}
	var sb strings.Builder
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "-- error: %s: %s\n", e.Path, e.Message)
	}
	return sb.String(), nil
}
