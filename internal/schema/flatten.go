package schema

import (
	"sort"

	"bqschema/internal/lattice"
)

// unknownFieldName is the placeholder BigQuery requires when a RECORD's
// nested schema would otherwise be empty after filtering.
const unknownFieldName = "__unknown__"

// OutputField is one entry of a flattened, emittable BigQuery schema.
type OutputField struct {
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Mode   string         `json:"mode"`
	Fields []*OutputField `json:"fields,omitempty"`
}

// GetName returns the field's name.
func (f *OutputField) GetName() string { return f.Name }

// FlattenOptions controls ordering and field-dropping behavior that
// depends on the input format and CLI configuration rather than the
// mapping's own contents.
type FlattenOptions struct {
	// CSV selects CSV output conventions: insertion (header) order always,
	// and REQUIRED promotion under InferMode.
	CSV bool
	// InferMode promotes an always-filled NULLABLE field to REQUIRED.
	// Only meaningful when CSV is true.
	InferMode bool
	// KeepNulls emits Soft entries instead of dropping them.
	KeepNulls bool
	// PreserveInputSortOrder keeps first-seen order for JSON output;
	// ignored for CSV, which always preserves header order.
	PreserveInputSortOrder bool
}

// Flatten produces the ordered output schema for a mapping. The mapping
// itself is never modified.
func Flatten(m *Mapping, opts FlattenOptions) []*OutputField {
	if m == nil {
		return nil
	}

	keys := m.Keys()
	if !opts.CSV && !opts.PreserveInputSortOrder {
		sort.Strings(keys)
	}

	out := make([]*OutputField, 0, len(keys))
	for _, k := range keys {
		e, ok := m.Get(k)
		if !ok {
			continue
		}
		if f := flattenEntry(e, opts); f != nil {
			out = append(out, f)
		}
	}
	return out
}

func flattenEntry(e *FieldEntry, opts FlattenOptions) *OutputField {
	if e.Status == Ignore {
		return nil
	}
	if e.Status == Soft && !opts.KeepNulls {
		return nil
	}

	mode := e.Mode
	if opts.CSV && opts.InferMode && mode == lattice.NULLABLE && e.Filled {
		mode = lattice.REQUIRED
	}

	out := &OutputField{
		Name: e.Name,
		Type: lattice.OutputName(e.Type),
		Mode: string(mode),
	}

	if e.Type == lattice.RECORD || e.Type == lattice.EMPTY_RECORD {
		children := Flatten(e.Fields, opts)
		if len(children) == 0 {
			children = []*OutputField{{
				Name: unknownFieldName,
				Type: string(lattice.STRING),
				Mode: string(lattice.NULLABLE),
			}}
		}
		out.Fields = children
	}

	return out
}
