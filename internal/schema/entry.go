// Package schema holds the FieldEntry and Mapping types that the record
// walker builds and mutates, the BigQuery existing-schema loader, and the
// flattener that turns a Mapping into an ordered output schema.
package schema

import (
	"strings"

	omap "github.com/wk8/go-ordered-map/v2"

	"bqschema/internal/lattice"
)

// Status is a field entry's meta-state.
type Status string

const (
	// Hard means the type was pinned by a real observed value.
	Hard Status = "hard"
	// Soft means the type is provisional, derived from null or empty.
	Soft Status = "soft"
	// Ignore means a merge conflict occurred; the field is dropped on
	// flatten and never revived by later records.
	Ignore Status = "ignore"
)

// FieldEntry is one field's inference state.
type FieldEntry struct {
	Status Status
	Filled bool
	Name   string
	Type   lattice.Type
	Mode   lattice.Mode

	// Fields holds the nested mapping when Type is RECORD or
	// EMPTY_RECORD. It is nil for every other type.
	Fields *Mapping
}

// Clone returns a deep copy of e, including a recursive copy of any
// nested mapping. The merge step in package infer builds every post-merge
// entry from a clone, so an entry already stored in a mapping is not
// modified by a later merge.
func (e *FieldEntry) Clone() *FieldEntry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Fields != nil {
		clone.Fields = e.Fields.Clone()
	}
	return &clone
}

// Mapping is the ordered canonicalName -> FieldEntry structure described
// by the spec's data model: insertion-order iteration, O(1) lookup, and
// in-place mutation that never reorders existing keys.
type Mapping struct {
	om *omap.OrderedMap[string, *FieldEntry]
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{om: omap.New[string, *FieldEntry]()}
}

// Canonical lowercases a field name for use as a Mapping key. Duplicate
// spellings of the same field collide on this key.
func Canonical(name string) string {
	return strings.ToLower(name)
}

// Get looks up the entry for a canonical key.
func (m *Mapping) Get(canonical string) (*FieldEntry, bool) {
	return m.om.Get(canonical)
}

// Set inserts or replaces the entry for a canonical key. Inserting a new
// key appends it to the end of the iteration order; replacing an existing
// key leaves its position unchanged.
func (m *Mapping) Set(canonical string, e *FieldEntry) {
	m.om.Set(canonical, e)
}

// Delete removes a key.
func (m *Mapping) Delete(canonical string) {
	m.om.Delete(canonical)
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return m.om.Len()
}

// Keys returns the canonical keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, m.om.Len())
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order.
func (m *Mapping) Each(fn func(canonical string, e *FieldEntry)) {
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a deep copy of m, recursing into nested RECORD mappings.
func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	out := NewMapping()
	m.Each(func(k string, e *FieldEntry) {
		out.Set(k, e.Clone())
	})
	return out
}
