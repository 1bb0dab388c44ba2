package infer

import (
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	"bqschema/internal/input"
	"bqschema/internal/lattice"
	"bqschema/internal/schema"
)

// deriveCandidate implements the per-field candidate-entry derivation
// (4.3): classify v and return the FieldEntry it produces. skip is true
// when the field must be dropped from this record entirely (the
// unsupported-array cases), in which case an ErrorLog has already been
// appended.
func (w *Walker) deriveCandidate(line int, v any, path string, errs *[]ErrorLog) (entry *schema.FieldEntry, skip bool) {
	switch val := v.(type) {
	case nil:
		return &schema.FieldEntry{
			Status: schema.Soft, Filled: false,
			Type: lattice.STRING, Mode: lattice.NULLABLE,
		}, false

	case input.Object:
		if val.Len() == 0 {
			return &schema.FieldEntry{
				Status: schema.Soft, Filled: false,
				Type: lattice.EMPTY_RECORD, Mode: lattice.NULLABLE,
				Fields: schema.NewMapping(),
			}, false
		}
		nested := schema.NewMapping()
		w.walkObject(line, val, nested, path, errs)
		return &schema.FieldEntry{
			Status: schema.Hard, Filled: true,
			Type: lattice.RECORD, Mode: lattice.NULLABLE,
			Fields: nested,
		}, false

	case []any:
		if len(val) == 0 {
			return &schema.FieldEntry{
				Status: schema.Soft, Filled: false,
				Type: lattice.STRING, Mode: lattice.REPEATED,
			}, false
		}
		return w.deriveArrayCandidate(line, val, path, errs)

	default:
		return w.deriveScalarCandidate(val), false
	}
}

func (w *Walker) deriveScalarCandidate(v any) *schema.FieldEntry {
	status := schema.Hard
	filled := true
	if w.opts.CSV {
		if s, ok := v.(string); ok && s == "" {
			status = schema.Soft
			filled = false
		}
	}
	typ := lattice.InferScalar(normalizeScalar(v), w.opts.latticeOptions())
	return &schema.FieldEntry{Status: status, Filled: filled, Type: typ, Mode: lattice.NULLABLE}
}

// deriveArrayCandidate implements 4.3's non-empty-array rule: if every
// element is an object (possibly empty), recurse and merge them into one
// nested RECORD/REPEATED entry. Otherwise fold the element types with
// Join; a nested array, an incompatible fold, or a fold that resolves to
// an unfillable placeholder all produce an error and skip the field.
func (w *Walker) deriveArrayCandidate(line int, elems []any, path string, errs *[]ErrorLog) (*schema.FieldEntry, bool) {
	if allObjects(elems) {
		nested := schema.NewMapping()
		for _, e := range elems {
			obj, _ := e.(input.Object)
			if obj == nil || obj.Len() == 0 {
				continue
			}
			w.walkObject(line, obj, nested, path, errs)
		}
		return &schema.FieldEntry{
			Status: schema.Hard, Filled: true,
			Type: lattice.RECORD, Mode: lattice.REPEATED,
			Fields: nested,
		}, false
	}

	folded, ok := w.foldElementTypes(elems)
	if !ok {
		logf(errs, line, "%s: unsupported array element type (nested array or incompatible elements)", path)
		return nil, true
	}
	if folded == lattice.NULL || folded == lattice.EMPTY_ARRAY {
		logf(errs, line, "%s: unsupported array element type", path)
		return nil, true
	}

	return &schema.FieldEntry{
		Status: schema.Hard, Filled: true,
		Type: folded, Mode: lattice.REPEATED,
	}, false
}

func allObjects(elems []any) bool {
	for _, e := range elems {
		if _, ok := e.(input.Object); !ok {
			return false
		}
	}
	return true
}

// foldElementTypes folds lattice.Join over every element's classified
// type. It fails (ok=false) if any element is itself an array, or if the
// running join becomes incompatible.
func (w *Walker) foldElementTypes(elems []any) (folded lattice.Type, ok bool) {
	first := true
	for _, e := range elems {
		if _, isArray := e.([]any); isArray {
			return "", false
		}

		t := w.elementType(e)
		if first {
			folded = t
			first = false
			continue
		}
		joined, err := lattice.Join(folded, t)
		if err != nil {
			return "", false
		}
		folded = joined
	}
	return folded, true
}

// elementType classifies a single array element for the purpose of
// folding. Unlike deriveCandidate, it never recurses into nested object
// fields: that only happens when every element is an object, which
// deriveArrayCandidate handles separately before falling back here.
func (w *Walker) elementType(v any) lattice.Type {
	switch val := v.(type) {
	case nil:
		return lattice.NULL
	case input.Object:
		if val.Len() == 0 {
			return lattice.EMPTY_RECORD
		}
		return lattice.RECORD
	default:
		return lattice.InferScalar(normalizeScalar(val), w.opts.latticeOptions())
	}
}

// normalizeScalar converts a json.Number (produced by the decoder so
// large integers don't lose precision through float64) into an int64 when
// it fits signed 64-bit, or a float64 otherwise, matching the boundary
// exactly at math.MaxInt64.
func normalizeScalar(v any) any {
	num, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := strconv.ParseInt(string(num), 10, 64); err == nil {
		return i
	}
	f, err := num.Float64()
	if err != nil {
		return math.NaN()
	}
	return f
}
