// Package validate walks a decoded record against an output BigQuery
// schema, checking REQUIRED presence, type compatibility, and (optionally)
// unknown fields. It is built over schema.OutputField the same way the
// teacher's core.Database.Validate orchestrates a sequence of structural
// checks, except a validate.Validator collects problems instead of
// failing fast, since the spec's failure taxonomy treats validator
// problems as collected, not fatal.
package validate

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"bqschema/internal/input"
	"bqschema/internal/lattice"
	"bqschema/internal/schema"
)

// Issue is one validation problem.
type Issue struct {
	Path    string
	Message string
}

// Result is the outcome of validating one record.
type Result struct {
	Valid      bool
	ErrorCount int
	Errors     []Issue
	Warnings   []Issue
}

// Options controls strictness.
type Options struct {
	// StrictTypes disallows accepting a string representation of a
	// number or boolean for a numeric/boolean-typed field.
	StrictTypes bool
	// AllowUnknown downgrades unknown keys, at any nesting level, from an
	// error to a warning instead of rejecting the record.
	AllowUnknown bool
	// MaxErrors stops collecting further errors once reached; 0 means
	// unlimited.
	MaxErrors int
}

// Validator checks records against a fixed output schema.
type Validator struct {
	fields []*schema.OutputField
	byName map[string]*schema.OutputField
	opts   Options
}

// New constructs a Validator from a flattened output schema.
func New(fields []*schema.OutputField, opts Options) *Validator {
	return &Validator{fields: fields, byName: indexFields(fields), opts: opts}
}

func indexFields(fields []*schema.OutputField) map[string]*schema.OutputField {
	m := make(map[string]*schema.OutputField, len(fields))
	for _, f := range fields {
		m[strings.ToLower(f.Name)] = f
	}
	return m
}

// ValidateRecord checks one decoded record against the validator's
// schema, stopping once MaxErrors errors have been collected.
func (v *Validator) ValidateRecord(rec input.Object) *Result {
	res := &Result{Valid: true}
	v.validateObject(v.fields, v.byName, rec, "", res)
	res.Valid = res.ErrorCount == 0
	return res
}

func (v *Validator) full(res *Result) bool {
	return v.opts.MaxErrors > 0 && res.ErrorCount >= v.opts.MaxErrors
}

func (v *Validator) fail(res *Result, path, msg string) {
	if v.full(res) {
		return
	}
	res.Errors = append(res.Errors, Issue{Path: path, Message: msg})
	res.ErrorCount++
}

func (v *Validator) warn(res *Result, path, msg string) {
	res.Warnings = append(res.Warnings, Issue{Path: path, Message: msg})
}

// validateObject checks REQUIRED presence for every declared field and
// unknown-field / type-compatibility for every key actually present in
// rec.
func (v *Validator) validateObject(fields []*schema.OutputField, byName map[string]*schema.OutputField, rec input.Object, path string, res *Result) {
	if v.full(res) {
		return
	}

	for _, f := range fields {
		if f.Mode != string(lattice.REQUIRED) {
			continue
		}
		val, ok := lookup(rec, f.Name)
		if !ok || val == nil {
			v.fail(res, fieldPath(path, f.Name), "missing required field")
		}
	}

	if rec == nil {
		return
	}

	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		if v.full(res) {
			return
		}
		f, ok := byName[strings.ToLower(pair.Key)]
		if !ok {
			msg := "unknown field"
			if v.opts.AllowUnknown {
				v.warn(res, fieldPath(path, pair.Key), msg)
			} else {
				v.fail(res, fieldPath(path, pair.Key), msg)
			}
			continue
		}
		v.validateValue(f, pair.Value, fieldPath(path, pair.Key), res)
	}
}

func lookup(rec input.Object, name string) (any, bool) {
	if rec == nil {
		return nil, false
	}
	lower := strings.ToLower(name)
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		if strings.ToLower(pair.Key) == lower {
			return pair.Value, true
		}
	}
	return nil, false
}

func fieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// validateValue type-checks one value against its declared field shape.
func (v *Validator) validateValue(f *schema.OutputField, val any, path string, res *Result) {
	if val == nil {
		return
	}

	if f.Mode == string(lattice.REPEATED) {
		v.validateRepeated(f, val, path, res)
		return
	}

	switch f.Type {
	case string(lattice.STRING):
		v.checkString(val, path, res)
	case string(lattice.INTEGER):
		v.checkInteger(val, path, res)
	case string(lattice.FLOAT):
		v.checkFloat(val, path, res)
	case string(lattice.BOOLEAN):
		v.checkBoolean(val, path, res)
	case string(lattice.TIMESTAMP):
		v.checkTimestamp(val, path, res)
	case string(lattice.DATE):
		v.checkPattern(val, path, res, lattice.MatchesDate, "DATE")
	case string(lattice.TIME):
		v.checkPattern(val, path, res, lattice.MatchesTime, "TIME")
	case string(lattice.RECORD):
		obj, ok := val.(input.Object)
		if !ok {
			v.fail(res, path, "expected a RECORD object")
			return
		}
		v.validateObject(f.Fields, indexFields(f.Fields), obj, path, res)
	default:
		v.fail(res, path, "unknown declared type "+f.Type)
	}
}

func (v *Validator) validateRepeated(f *schema.OutputField, val any, path string, res *Result) {
	arr, ok := val.([]any)
	if !ok {
		v.fail(res, path, "expected a REPEATED array")
		return
	}
	elemField := &schema.OutputField{Name: f.Name, Type: f.Type, Mode: string(lattice.NULLABLE), Fields: f.Fields}
	for i, elem := range arr {
		if v.full(res) {
			return
		}
		if elem == nil {
			continue
		}
		v.validateValue(elemField, elem, path+"["+strconv.Itoa(i)+"]", res)
	}
}

func (v *Validator) checkString(val any, path string, res *Result) {
	switch val.(type) {
	case string, bool, json.Number:
	default:
		v.fail(res, path, "expected a string-compatible value")
	}
}

func (v *Validator) checkInteger(val any, path string, res *Result) {
	switch x := val.(type) {
	case json.Number:
		if _, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return
		}
		v.fail(res, path, "number does not fit signed 64-bit integer")
	case string:
		if !v.opts.StrictTypes && lattice.MatchesInteger(x) {
			return
		}
		v.fail(res, path, "expected an integer")
	default:
		v.fail(res, path, "expected an integer")
	}
}

func (v *Validator) checkFloat(val any, path string, res *Result) {
	switch x := val.(type) {
	case json.Number:
		return
	case string:
		if !v.opts.StrictTypes && (lattice.MatchesInteger(x) || lattice.MatchesFloat(x)) {
			return
		}
		v.fail(res, path, "expected a float")
	default:
		v.fail(res, path, "expected a float")
	}
}

func (v *Validator) checkBoolean(val any, path string, res *Result) {
	switch x := val.(type) {
	case bool:
		return
	case string:
		if !v.opts.StrictTypes && (strings.EqualFold(x, "true") || strings.EqualFold(x, "false")) {
			return
		}
	}
	v.fail(res, path, "expected a boolean")
}

func (v *Validator) checkTimestamp(val any, path string, res *Result) {
	switch x := val.(type) {
	case string:
		if lattice.MatchesTimestamp(x) {
			return
		}
	case json.Number:
		if !v.opts.StrictTypes {
			return
		}
	}
	v.fail(res, path, "expected a TIMESTAMP")
}

func (v *Validator) checkPattern(val any, path string, res *Result, match func(string) bool, typeName string) {
	s, ok := val.(string)
	if !ok || !match(s) {
		v.fail(res, path, "expected a "+typeName)
	}
}
