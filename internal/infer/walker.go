// Package infer implements the record walker and cross-record merger: the
// hardest part of the inference engine. It turns one decoded input
// record into candidate FieldEntry values (candidate.go), merges each
// candidate with whatever entry already exists at that canonical key
// (merge.go), and recurses into nested RECORD fields and REPEATED RECORD
// arrays.
package infer

import (
	"fmt"
	"regexp"

	"bqschema/internal/input"
	"bqschema/internal/lattice"
	"bqschema/internal/schema"
)

// maxSanitizedNameLength is the truncation length the spec assigns to
// sanitized field names.
const maxSanitizedNameLength = 128

// disallowedNameChar matches any rune outside [A-Za-z0-9_].
var disallowedNameChar = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Options controls the parts of candidate derivation and mode
// reconciliation that are configuration-dependent rather than fixed by
// the lattice itself.
type Options struct {
	// CSV marks the input format; an empty string scalar is Soft/unfilled
	// only under CSV, and InferMode only promotes modes for CSV output.
	CSV bool
	// InferMode relaxes a REQUIRED->NULLABLE mode transition instead of
	// failing it (CSV only, per the mode-reconciliation table).
	InferMode bool
	// QuotedValuesAreStrings disables the quoted-shadow-type machinery in
	// the lattice's scalar inference.
	QuotedValuesAreStrings bool
	// SanitizeNames replaces disallowed characters in field names with
	// '_' and truncates to 128 characters.
	SanitizeNames bool
}

func (o Options) latticeOptions() lattice.Options {
	return lattice.Options{QuotedValuesAreStrings: o.QuotedValuesAreStrings}
}

// ErrorLog is one non-fatal problem encountered while walking a record:
// an unsupported array shape, a merge conflict, or a mode-reconciliation
// failure. The record is still processed as far as possible.
type ErrorLog struct {
	Line    int
	Message string
}

// Walker traverses records against a growing Mapping. A Walker instance
// is not safe for concurrent use against the same Mapping; per the
// concurrency model, the inference engine is single-threaded per mapping.
type Walker struct {
	opts Options
}

// NewWalker returns a Walker configured by opts.
func NewWalker(opts Options) *Walker {
	return &Walker{opts: opts}
}

// WalkRecord walks one top-level decoded record into m, returning any
// non-fatal problems encountered. line is used only for error-log
// attribution.
func (w *Walker) WalkRecord(line int, rec input.Object, m *schema.Mapping) []ErrorLog {
	var errs []ErrorLog
	w.walkObject(line, rec, m, "", &errs)
	return errs
}

// walkObject is the recursive entry point shared by top-level records and
// nested RECORD fields. path is the dotted parent path used for error
// messages; it is empty at the top level.
func (w *Walker) walkObject(line int, rec input.Object, m *schema.Mapping, path string, errs *[]ErrorLog) {
	if rec == nil {
		return
	}
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		if w.opts.SanitizeNames {
			key = sanitizeName(key)
		}
		fieldPath := key
		if path != "" {
			fieldPath = path + "." + key
		}

		candidate, skip := w.deriveCandidate(line, pair.Value, fieldPath, errs)
		if skip {
			continue
		}
		candidate.Name = key

		canonical := schema.Canonical(key)
		existing, _ := m.Get(canonical)
		merged := w.mergeEntry(existing, candidate, fieldPath, line, errs)
		m.Set(canonical, merged)
	}
}

// sanitizeName replaces any character outside [A-Za-z0-9_] with '_' and
// truncates to 128 characters.
func sanitizeName(name string) string {
	name = disallowedNameChar.ReplaceAllString(name, "_")
	if len(name) > maxSanitizedNameLength {
		name = name[:maxSanitizedNameLength]
	}
	return name
}

func logf(errs *[]ErrorLog, line int, format string, args ...any) {
	*errs = append(*errs, ErrorLog{Line: line, Message: fmt.Sprintf(format, args...)})
}
