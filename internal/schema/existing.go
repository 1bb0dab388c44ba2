// existing.go implements the existing-schema loader: it reads a
// BigQuery-format schema document (either a bare array of field objects
// or an object with a "fields" key) and converts it into a Mapping whose
// entries all start Hard and filled according to their declared mode.
package schema

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"bqschema/internal/lattice"
)

// rawField mirrors one BigQuery schema field document. Type and Mode are
// decoded as raw strings so resolveTypeName can normalize them.
type rawField struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Mode   string     `json:"mode"`
	Fields []rawField `json:"fields"`
}

// rawDocument is the "{fields: [...]}" shape; the bare-array shape is
// tried first and this is the fallback.
type rawDocument struct {
	Fields []rawField `json:"fields"`
}

// typeAliases maps legacy/alternate BigQuery type spellings onto the
// canonical lattice output names.
var typeAliases = map[string]string{
	"INT64":    "INTEGER",
	"FLOAT64":  "FLOAT",
	"BOOL":     "BOOLEAN",
	"STRUCT":   "RECORD",
	"DATETIME": "TIMESTAMP",
	"BYTES":    "STRING",
}

// LoadExisting parses a BigQuery schema document into a Mapping. Every
// entry starts Hard; filled is true iff the declared mode is not
// NULLABLE. Loader errors are fatal per the spec's error taxonomy: the
// caller should not attempt to continue the run on a load failure.
func LoadExisting(r io.Reader) (*Mapping, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: read existing schema: %w", err)
	}

	var fields []rawField
	if err := json.Unmarshal(b, &fields); err != nil {
		var doc rawDocument
		if err2 := json.Unmarshal(b, &doc); err2 != nil {
			return nil, fmt.Errorf("schema: existing schema is neither a field array nor a {fields:[...]} object: %w", err)
		}
		fields = doc.Fields
	}

	return buildMapping(fields)
}

func buildMapping(fields []rawField) (*Mapping, error) {
	m := NewMapping()
	for _, f := range fields {
		entry, err := buildEntry(f)
		if err != nil {
			return nil, err
		}
		key := Canonical(f.Name)
		if _, exists := m.Get(key); exists {
			return nil, fmt.Errorf("schema: duplicate field name %q (case-insensitive)", f.Name)
		}
		m.Set(key, entry)
	}
	return m, nil
}

func buildEntry(f rawField) (*FieldEntry, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("schema: field missing name")
	}

	typeName, err := resolveTypeName(f.Type)
	if err != nil {
		return nil, fmt.Errorf("schema: field %q: %w", f.Name, err)
	}

	mode := lattice.NULLABLE
	if f.Mode != "" {
		mode = lattice.Mode(strings.ToUpper(f.Mode))
	}

	entry := &FieldEntry{
		Status: Hard,
		Filled: mode != lattice.NULLABLE,
		Name:   f.Name,
		Type:   lattice.Type(typeName),
		Mode:   mode,
	}

	if typeName == string(lattice.RECORD) {
		if len(f.Fields) == 0 {
			return nil, fmt.Errorf("schema: field %q: RECORD must carry fields", f.Name)
		}
		nested, err := buildMapping(f.Fields)
		if err != nil {
			return nil, err
		}
		entry.Fields = nested
	}

	return entry, nil
}

func resolveTypeName(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("missing type")
	}
	upper := strings.ToUpper(raw)
	if alias, ok := typeAliases[upper]; ok {
		upper = alias
	}
	switch lattice.Type(upper) {
	case lattice.BOOLEAN, lattice.INTEGER, lattice.FLOAT, lattice.STRING,
		lattice.TIMESTAMP, lattice.DATE, lattice.TIME, lattice.RECORD:
		return upper, nil
	default:
		return "", fmt.Errorf("unknown type %q", raw)
	}
}
