package diff

import "bqschema/internal/schema"

// breakingModeTransitions enumerates mode changes that can reject records
// a consumer built against the old schema was relying on.
var breakingModeTransitions = map[[2]string]bool{
	{"NULLABLE", "REQUIRED"}: true,
	{"REPEATED", "NULLABLE"}: true,
	{"NULLABLE", "REPEATED"}: true,
	{"REPEATED", "REQUIRED"}: true,
	{"REQUIRED", "REPEATED"}: true,
}

// safeTypeTransitions enumerates type widenings that never reject a value
// that was previously accepted.
var safeTypeTransitions = map[[2]string]bool{
	{"INTEGER", "FLOAT"}: true,
}

// isBreaking reports whether moving from old to new is unsafe for a
// consumer that was built against old: a mode narrowing, or a type change
// that isn't a recognized widening. Under strict, any modification at all
// is treated as breaking (spec §4.9/§6).
func isBreaking(old, newF *schema.OutputField, strict bool) bool {
	if strict {
		return true
	}
	if old.Mode != newF.Mode && breakingModeTransitions[[2]string{old.Mode, newF.Mode}] {
		return true
	}
	if old.Type != newF.Type {
		if newF.Type == "STRING" {
			return false
		}
		if safeTypeTransitions[[2]string{old.Type, newF.Type}] {
			return false
		}
		return true
	}
	return false
}
