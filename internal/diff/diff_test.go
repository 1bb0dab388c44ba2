package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bqschema/internal/schema"
)

func field(name, typ, mode string) *schema.OutputField {
	return &schema.OutputField{Name: name, Type: typ, Mode: mode}
}

func TestDiffAddedAndRemoved(t *testing.T) {
	oldS := []*schema.OutputField{field("a", "STRING", "NULLABLE")}
	newS := []*schema.OutputField{field("b", "STRING", "NULLABLE")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Added, 1)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "b", d.Added[0].Name)
	assert.Equal(t, "a", d.Removed[0].Name)
}

func TestDiffIntegerToFloatIsSafe(t *testing.T) {
	oldS := []*schema.OutputField{field("n", "INTEGER", "NULLABLE")}
	newS := []*schema.OutputField{field("n", "FLOAT", "NULLABLE")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Modified, 1)
	assert.False(t, d.Modified[0].Breaking)
}

func TestDiffAnyTypeToStringIsSafe(t *testing.T) {
	oldS := []*schema.OutputField{field("n", "INTEGER", "NULLABLE")}
	newS := []*schema.OutputField{field("n", "STRING", "NULLABLE")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Modified, 1)
	assert.False(t, d.Modified[0].Breaking)
}

func TestDiffNullableToRequiredIsBreaking(t *testing.T) {
	oldS := []*schema.OutputField{field("id", "INTEGER", "NULLABLE")}
	newS := []*schema.OutputField{field("id", "INTEGER", "REQUIRED")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Modified, 1)
	assert.True(t, d.Modified[0].Breaking)
	assert.True(t, d.HasBreakingChanges())
}

func TestDiffRequiredToNullableIsSafe(t *testing.T) {
	oldS := []*schema.OutputField{field("id", "INTEGER", "REQUIRED")}
	newS := []*schema.OutputField{field("id", "INTEGER", "NULLABLE")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Modified, 1)
	assert.False(t, d.Modified[0].Breaking)
}

func TestDiffFloatToIntegerIsBreaking(t *testing.T) {
	oldS := []*schema.OutputField{field("n", "FLOAT", "NULLABLE")}
	newS := []*schema.OutputField{field("n", "INTEGER", "NULLABLE")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Modified, 1)
	assert.True(t, d.Modified[0].Breaking)
}

func TestDiffNestedRecordRecurses(t *testing.T) {
	oldS := []*schema.OutputField{{
		Name: "u", Type: "RECORD", Mode: "NULLABLE",
		Fields: []*schema.OutputField{field("id", "INTEGER", "NULLABLE")},
	}}
	newS := []*schema.OutputField{{
		Name: "u", Type: "RECORD", Mode: "NULLABLE",
		Fields: []*schema.OutputField{field("id", "INTEGER", "REQUIRED")},
	}}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Modified, 1)
	m := d.Modified[0]
	assert.False(t, m.Breaking)
	require.NotNil(t, m.Nested)
	require.Len(t, m.Nested.Modified, 1)
	assert.True(t, m.Nested.Modified[0].Breaking)
	assert.Equal(t, "u.id", m.Nested.Modified[0].Path)
	assert.True(t, d.HasBreakingChanges())
}

func TestDiffNoChangesIsEmpty(t *testing.T) {
	s := []*schema.OutputField{field("a", "STRING", "NULLABLE")}
	d := Diff(s, s, false)
	assert.True(t, d.IsEmpty())
	assert.False(t, d.HasBreakingChanges())
}

func TestDiffCaseInsensitiveCollisionWarns(t *testing.T) {
	oldS := []*schema.OutputField{field("a", "STRING", "NULLABLE")}
	newS := []*schema.OutputField{field("a", "STRING", "NULLABLE"), field("A", "STRING", "NULLABLE")}

	d := Diff(oldS, newS, false)
	assert.NotEmpty(t, d.Warnings)
}

func TestDiffStrictMarksAddedAsBreaking(t *testing.T) {
	oldS := []*schema.OutputField{field("a", "STRING", "NULLABLE")}
	newS := []*schema.OutputField{field("a", "STRING", "NULLABLE"), field("b", "STRING", "NULLABLE")}

	d := Diff(oldS, newS, true)
	require.Len(t, d.Added, 1)
	assert.True(t, d.HasBreakingChanges())
}

func TestDiffStrictMarksEverySafeModificationAsBreaking(t *testing.T) {
	oldS := []*schema.OutputField{field("n", "INTEGER", "NULLABLE")}
	newS := []*schema.OutputField{field("n", "FLOAT", "NULLABLE")}

	d := Diff(oldS, newS, true)
	require.Len(t, d.Modified, 1)
	assert.True(t, d.Modified[0].Breaking)
	assert.True(t, d.HasBreakingChanges())
}

func TestDiffNonStrictNoAddedDoesNotTriggerBreaking(t *testing.T) {
	oldS := []*schema.OutputField{field("a", "STRING", "NULLABLE")}
	newS := []*schema.OutputField{field("a", "STRING", "NULLABLE"), field("b", "STRING", "NULLABLE")}

	d := Diff(oldS, newS, false)
	require.Len(t, d.Added, 1)
	assert.False(t, d.HasBreakingChanges())
}
