// Package diff compares two flattened BigQuery output schemas field by
// field and classifies each modification as breaking or safe for an
// already-running load pipeline.
package diff

import (
	"bqschema/internal/schema"
)

// SchemaDiff represents the differences between two output schemas.
type SchemaDiff struct {
	Strict   bool                  `json:"-"`
	Warnings []string              `json:"warnings,omitempty"`
	Added    []*schema.OutputField `json:"added,omitempty"`
	Removed  []*schema.OutputField `json:"removed,omitempty"`
	Modified []*FieldChangeSet     `json:"modified,omitempty"`
}

// FieldChangeSet represents the differences between two versions of the
// same top-level or nested field.
type FieldChangeSet struct {
	Path     string
	Old      *schema.OutputField
	New      *schema.OutputField
	Changes  []*FieldChange
	Breaking bool
	Nested   *SchemaDiff
}

// FieldChange represents one changed attribute of a field.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func (f *FieldChangeSet) GetName() string { return f.Path }

// IsEmpty returns true if there are no differences in the schema diff.
func (d *SchemaDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// HasBreakingChanges reports whether the diff removes a field or holds a
// breaking modification (at any depth). Under Strict, an added field is also considered
// breaking (spec §4.9/§6): a strict consumer treats any schema drift,
// including additive drift, as unsafe.
func (d *SchemaDiff) HasBreakingChanges() bool {
	if d.Strict && len(d.Added) > 0 {
		return true
	}
	if len(d.Removed) > 0 {
		return true
	}
	for _, m := range d.Modified {
		if m.Breaking {
			return true
		}
		if m.Nested != nil && m.Nested.HasBreakingChanges() {
			return true
		}
	}
	return false
}

// Diff compares two flattened output schemas and returns a SchemaDiff.
// Under strict, every Added field and every Modified field is classified
// as breaking regardless of how safe the underlying change would
// otherwise be (spec §4.9/§6).
func Diff(oldFields, newFields []*schema.OutputField, strict bool) *SchemaDiff {
	return diffFields(oldFields, newFields, "", strict)
}

func diffFields(oldFields, newFields []*schema.OutputField, pathPrefix string, strict bool) *SchemaDiff {
	d := &SchemaDiff{Strict: strict}
	oldMap, oldCollisions := mapFieldsByName(oldFields)
	newMap, newCollisions := mapFieldsByName(newFields)
	for _, c := range oldCollisions {
		d.Warnings = append(d.Warnings, "old schema: "+c)
	}
	for _, c := range newCollisions {
		d.Warnings = append(d.Warnings, "new schema: "+c)
	}

	for name, nf := range newMap {
		of, ok := oldMap[name]
		if !ok {
			d.Added = append(d.Added, nf)
			continue
		}
		if cs := compareField(of, nf, joinPath(pathPrefix, nf.Name), strict); cs != nil {
			d.Modified = append(d.Modified, cs)
		}
	}

	for name, of := range oldMap {
		if _, ok := newMap[name]; !ok {
			d.Removed = append(d.Removed, of)
		}
	}

	sortNamed(d.Added)
	sortNamed(d.Removed)
	sortByPath(d.Modified)

	return d
}

func sortByPath(items []*FieldChangeSet) {
	sortNamed(items)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func compareField(old, newF *schema.OutputField, path string, strict bool) *FieldChangeSet {
	c := &fieldChangeCollector{}
	c.Add("type", old.Type, newF.Type)
	c.Add("mode", old.Mode, newF.Mode)

	var nested *SchemaDiff
	if old.Type == "RECORD" && newF.Type == "RECORD" {
		nd := diffFields(old.Fields, newF.Fields, path, strict)
		if !nd.IsEmpty() {
			nested = nd
		}
	}

	if len(c.Changes) == 0 && nested == nil {
		return nil
	}

	return &FieldChangeSet{
		Path:     path,
		Old:      old,
		New:      newF,
		Changes:  c.Changes,
		Breaking: isBreaking(old, newF, strict),
		Nested:   nested,
	}
}
