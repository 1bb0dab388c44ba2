package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bqschema/internal/lattice"
	"bqschema/internal/schema"
)

func TestReconcileModeRequiredToNullableKeepsRequiredWhenFilled(t *testing.T) {
	mode, ok, warn := reconcileMode(lattice.REQUIRED, lattice.NULLABLE, schema.Hard, schema.Hard, true, false, false)
	assert.True(t, ok)
	assert.False(t, warn)
	assert.Equal(t, lattice.REQUIRED, mode)
}

func TestReconcileModeRequiredToNullableFailsWithoutInferMode(t *testing.T) {
	_, ok, _ := reconcileMode(lattice.REQUIRED, lattice.NULLABLE, schema.Hard, schema.Hard, false, false, false)
	assert.False(t, ok)
}

func TestReconcileModeRequiredToNullableRelaxesUnderInferMode(t *testing.T) {
	mode, ok, _ := reconcileMode(lattice.REQUIRED, lattice.NULLABLE, schema.Hard, schema.Hard, false, true, false)
	assert.True(t, ok)
	assert.Equal(t, lattice.NULLABLE, mode)
}

func TestReconcileModeNullableToRepeatedRequiresSoftThenHard(t *testing.T) {
	mode, ok, _ := reconcileMode(lattice.NULLABLE, lattice.REPEATED, schema.Soft, schema.Hard, true, false, false)
	assert.True(t, ok)
	assert.Equal(t, lattice.REPEATED, mode)

	_, ok2, _ := reconcileMode(lattice.NULLABLE, lattice.REPEATED, schema.Hard, schema.Hard, true, false, false)
	assert.False(t, ok2)
}

func TestReconcileModeRecordPairAllowsEitherDirectionWithWarning(t *testing.T) {
	mode, ok, warn := reconcileMode(lattice.NULLABLE, lattice.REPEATED, schema.Hard, schema.Hard, true, false, true)
	assert.True(t, ok)
	assert.True(t, warn)
	assert.Equal(t, lattice.REPEATED, mode)

	mode2, ok2, warn2 := reconcileMode(lattice.REPEATED, lattice.NULLABLE, schema.Hard, schema.Hard, true, false, true)
	assert.True(t, ok2)
	assert.True(t, warn2)
	assert.Equal(t, lattice.REPEATED, mode2)
}

func TestReconcileModeOtherMismatchFails(t *testing.T) {
	_, ok, _ := reconcileMode(lattice.REQUIRED, lattice.REPEATED, schema.Hard, schema.Hard, true, false, false)
	assert.False(t, ok)
}

func TestMergeCombinesIndependentFileMappings(t *testing.T) {
	w := NewWalker(Options{})
	fileA, _ := walkLines(t, w, `{"a":1}`)
	fileB, _ := walkLines(t, w, `{"a":1.5}`, `{"b":"x"}`)

	merged, errs := w.Merge(fileA, fileB)
	assert.Empty(t, errs)

	a, ok := merged.Get("a")
	require.True(t, ok)
	assert.Equal(t, lattice.FLOAT, a.Type)

	b, ok := merged.Get("b")
	require.True(t, ok)
	assert.Equal(t, lattice.STRING, b.Type)

	assert.Equal(t, []string{"a", "b"}, merged.Keys())
}

func TestCSVInferModePromotesRequiredOnFlatten(t *testing.T) {
	w := NewWalker(Options{CSV: true, InferMode: true})
	m, errs := walkLines(t, w,
		`{"a":"1","b":""}`,
		`{"a":"2","b":"3"}`,
	)
	assert.Empty(t, errs)

	a, _ := m.Get("a")
	assert.Equal(t, schema.Hard, a.Status)
	assert.True(t, a.Filled)

	b, _ := m.Get("b")
	assert.True(t, b.Filled == false || b.Status == schema.Soft)

	out := schema.Flatten(m, schema.FlattenOptions{CSV: true, InferMode: true})
	byName := map[string]*schema.OutputField{}
	for _, f := range out {
		byName[f.Name] = f
	}
	require.Contains(t, byName, "a")
	require.Contains(t, byName, "b")
	assert.Equal(t, "INTEGER", byName["a"].Type)
	assert.Equal(t, "REQUIRED", byName["a"].Mode)
	assert.Equal(t, "INTEGER", byName["b"].Type)
	assert.Equal(t, "NULLABLE", byName["b"].Mode)
}
