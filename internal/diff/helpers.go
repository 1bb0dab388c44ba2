package diff

import (
	"fmt"
	"sort"
	"strings"

	"bqschema/internal/schema"
)

type fieldChangeCollector struct {
	Changes []*FieldChange
}

func (c *fieldChangeCollector) Add(field, oldV, newV string) {
	if oldV == newV {
		return
	}
	c.Changes = append(c.Changes, &FieldChange{Field: field, Old: oldV, New: newV})
}

// Named is implemented by types that have a name identifier.
// This interface enables type-safe sorting and mapping operations.
type Named interface {
	GetName() string
}

// sortNamed sorts a slice of Named items by name (case-insensitive).
func sortNamed[T Named](items []T) {
	if len(items) <= 1 {
		return
	}
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].GetName()) < strings.ToLower(items[j].GetName())
	})
}

// mapFieldsByName creates a lookup map of output fields keyed by lowercase
// name. Returns the map and any case-insensitive name collisions found.
func mapFieldsByName(fields []*schema.OutputField) (map[string]*schema.OutputField, []string) {
	m := make(map[string]*schema.OutputField, len(fields))
	original := make(map[string]string, len(fields))
	var collisions []string

	for _, f := range fields {
		key := strings.ToLower(f.Name)
		if prev, ok := original[key]; ok {
			if prev != f.Name {
				collisions = append(collisions, fmt.Sprintf("case-insensitive name collision: %q vs %q", prev, f.Name))
			}
			continue
		}
		original[key] = f.Name
		m[key] = f
	}
	return m, collisions
}
