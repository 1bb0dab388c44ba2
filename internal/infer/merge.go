package infer

import (
	"bqschema/internal/lattice"
	"bqschema/internal/schema"
)

// mergeEntry implements the cross-record merge (4.4): it returns the
// post-merge entry for old merged with the freshly derived new entry.
// old may be nil (first time the field is seen).
func (w *Walker) mergeEntry(old, new *schema.FieldEntry, path string, line int, errs *[]ErrorLog) *schema.FieldEntry {
	if old == nil {
		return new.Clone()
	}

	filled := old.Filled && new.Filled

	if old.Status == schema.Ignore {
		result := old.Clone()
		result.Filled = filled
		return result
	}

	switch {
	case old.Status == schema.Hard && new.Status == schema.Soft:
		return w.mergeAcrossStatus(old, new, old, filled, path, line, errs)

	case old.Status == schema.Soft && new.Status == schema.Hard:
		return w.mergeAcrossStatus(old, new, new, filled, path, line, errs)

	default:
		if recordPair(old.Type, new.Type) {
			return w.mergeRecordPair(old, new, filled, path, line, errs)
		}
		return w.mergeSameStatusScalar(old, new, filled, path, line, errs)
	}
}

// mergeAcrossStatus handles the two asymmetric branches of 4.4: Hard
// meets Soft (base=old, keep old's type) and Soft meets Hard (base=new,
// adopt new's type and status). Only the mode needs reconciling; the
// base entry's type is authoritative in both cases.
func (w *Walker) mergeAcrossStatus(old, new, base *schema.FieldEntry, filled bool, path string, line int, errs *[]ErrorLog) *schema.FieldEntry {
	result := base.Clone()
	result.Filled = filled

	mode, ok, warn := reconcileMode(old.Mode, new.Mode, old.Status, new.Status, new.Filled, w.opts.InferMode, recordPair(old.Type, new.Type))
	if !ok {
		result.Status = schema.Ignore
		logf(errs, line, "%s: mode reconciliation failed (old=%s/%s new=%s/%s)", path, old.Status, old.Mode, new.Status, new.Mode)
		return result
	}
	if warn {
		logf(errs, line, "%s: NULLABLE/REPEATED transition on RECORD field", path)
	}
	result.Mode = mode
	return result
}

// mergeRecordPair handles "same status on both sides, both RECORD-like":
// reconcile the mode (allowing the RECORD-specific NULLABLE<->REPEATED
// warning case) and merge the nested mappings recursively.
func (w *Walker) mergeRecordPair(old, new *schema.FieldEntry, filled bool, path string, line int, errs *[]ErrorLog) *schema.FieldEntry {
	result := old.Clone()
	result.Filled = filled

	mode, ok, warn := reconcileMode(old.Mode, new.Mode, old.Status, new.Status, new.Filled, w.opts.InferMode, true)
	if !ok {
		result.Status = schema.Ignore
		logf(errs, line, "%s: mode reconciliation failed on RECORD field (old=%s new=%s)", path, old.Mode, new.Mode)
		return result
	}
	if warn {
		logf(errs, line, "%s: NULLABLE/REPEATED transition on RECORD field", path)
	}

	result.Mode = mode
	if new.Type == lattice.RECORD {
		result.Type = lattice.RECORD
	}
	result.Fields = w.mergeMappings(old.Fields, new.Fields, path, line, errs)
	return result
}

// mergeSameStatusScalar handles "same status on both sides, not both
// RECORD-like": reconcile the mode, then join the types. Either failure
// marks the entry Ignore.
func (w *Walker) mergeSameStatusScalar(old, new *schema.FieldEntry, filled bool, path string, line int, errs *[]ErrorLog) *schema.FieldEntry {
	result := old.Clone()
	result.Filled = filled

	mode, modeOK, warn := reconcileMode(old.Mode, new.Mode, old.Status, new.Status, new.Filled, w.opts.InferMode, false)
	if warn {
		logf(errs, line, "%s: NULLABLE/REPEATED transition on RECORD field", path)
	}

	joined, joinErr := lattice.Join(old.Type, new.Type)
	if !modeOK || joinErr != nil {
		result.Status = schema.Ignore
		logf(errs, line, "%s: ignoring field with mismatched type", path)
		return result
	}

	result.Mode = mode
	result.Type = joined
	return result
}

// Merge combines two independently-built top-level mappings the same way
// a single walker would have merged the records that produced them,
// reusing the same cross-record merge machinery (4.4). This is what lets
// the per-file parallel generate path and the watch controller fold
// several independent per-file mappings into one without re-walking every
// record together.
func (w *Walker) Merge(oldM, newM *schema.Mapping) (*schema.Mapping, []ErrorLog) {
	var errs []ErrorLog
	merged := w.mergeMappings(oldM, newM, "", 0, &errs)
	return merged, errs
}

// mergeMappings merges newM into a clone of oldM, preserving oldM's field
// order and appending new-only keys, recursing through mergeEntry.
func (w *Walker) mergeMappings(oldM, newM *schema.Mapping, path string, line int, errs *[]ErrorLog) *schema.Mapping {
	result := oldM.Clone()
	if result == nil {
		result = schema.NewMapping()
	}
	if newM == nil {
		return result
	}
	newM.Each(func(k string, e *schema.FieldEntry) {
		existing, _ := result.Get(k)
		childPath := path + "." + e.Name
		result.Set(k, w.mergeEntry(existing, e, childPath, line, errs))
	})
	return result
}

// recordPair reports whether both types represent a record-shaped value
// (RECORD or its EMPTY_RECORD placeholder), which is what unlocks the
// RECORD-specific NULLABLE<->REPEATED mode transition and nested-mapping
// merging.
func recordPair(a, b lattice.Type) bool {
	return recordish(a) && recordish(b)
}

func recordish(t lattice.Type) bool {
	return t == lattice.RECORD || t == lattice.EMPTY_RECORD
}

// reconcileMode implements the mode-reconciliation table (4.5). ok=false
// means the transition failed and the caller must mark the entry Ignore.
// warn=true means the transition is allowed but should be logged.
func reconcileMode(oldMode, newMode lattice.Mode, oldStatus, newStatus schema.Status, newFilled, inferMode, recordTyped bool) (result lattice.Mode, ok bool, warn bool) {
	if oldMode == newMode {
		return oldMode, true, false
	}

	if recordTyped && isNullableRepeatedPair(oldMode, newMode) {
		return lattice.REPEATED, true, true
	}

	switch {
	case oldMode == lattice.REQUIRED && newMode == lattice.NULLABLE:
		if newFilled {
			return lattice.REQUIRED, true, false
		}
		if inferMode {
			return lattice.NULLABLE, true, false
		}
		return "", false, false

	case oldMode == lattice.NULLABLE && newMode == lattice.REPEATED:
		if oldStatus == schema.Soft && newStatus == schema.Hard {
			return lattice.REPEATED, true, false
		}
		return "", false, false

	case oldMode == lattice.REPEATED && newMode == lattice.NULLABLE:
		if oldStatus == schema.Hard && newStatus == schema.Soft {
			return lattice.REPEATED, true, false
		}
		return "", false, false

	default:
		return "", false, false
	}
}

func isNullableRepeatedPair(a, b lattice.Mode) bool {
	return (a == lattice.NULLABLE && b == lattice.REPEATED) || (a == lattice.REPEATED && b == lattice.NULLABLE)
}
