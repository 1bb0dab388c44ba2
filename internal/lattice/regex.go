package lattice

import "regexp"

// timestampRe matches the BigQuery TIMESTAMP literal shape: a date, a
// separating T or space, a time, an optional fractional-seconds part, and
// an optional zone (Z, UTC, or a numeric offset).
var timestampRe = regexp.MustCompile(
	`^\d{4}-(?:0?[1-9]|1[0-2])-(?:0?[1-9]|[12]\d|3[01])[T ]` +
		`(?:[01]?\d|2[0-3]):[0-5]?\d:[0-5]?\d(?:\.\d{1,6})?\s*` +
		`(?:Z|UTC|[+-]\d{2}(?::?\d{2})?)?$`,
)

// dateRe matches YYYY-MM-DD with a calendar-aware month/day range. Day 00
// and 32+ are rejected; months accept either unpadded or zero-padded form.
var dateRe = regexp.MustCompile(
	`^\d{4}-(?:0?[1-9]|1[0-2])-(?:0?[1-9]|[12]\d|3[01])$`,
)

// timeRe matches H(H):M(M):S(S) with an optional 1-6 digit fractional
// part. No zone is permitted (that belongs to TIMESTAMP).
var timeRe = regexp.MustCompile(
	`^(?:[01]?\d|2[0-3]):[0-5]?\d:[0-5]?\d(?:\.\d{1,6})?$`,
)

// integerStringRe matches an optionally-signed run of digits.
var integerStringRe = regexp.MustCompile(`^[+-]?\d+$`)

// floatStringRe matches an optionally-signed decimal or exponential
// literal: digits with an optional fractional part, or a leading-dot
// fraction, with an optional exponent.
var floatStringRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func looksLikeTimestamp(s string) bool { return timestampRe.MatchString(s) }
func looksLikeDate(s string) bool      { return dateRe.MatchString(s) }
func looksLikeTime(s string) bool      { return timeRe.MatchString(s) }
func looksLikeInteger(s string) bool   { return integerStringRe.MatchString(s) }
func looksLikeFloat(s string) bool     { return floatStringRe.MatchString(s) }

// MatchesTimestamp, MatchesDate, MatchesTime, MatchesInteger and
// MatchesFloat expose the same regex contracts used by InferScalar to
// other packages (the validator checks a value against a declared type
// using the identical patterns inference relies on).
func MatchesTimestamp(s string) bool { return looksLikeTimestamp(s) }
func MatchesDate(s string) bool      { return looksLikeDate(s) }
func MatchesTime(s string) bool      { return looksLikeTime(s) }
func MatchesInteger(s string) bool   { return looksLikeInteger(s) }
func MatchesFloat(s string) bool     { return looksLikeFloat(s) }
