package lattice

import (
	"math"
	"strconv"
	"strings"
)

// Options controls the scalar-inference behavior that depends on
// configuration rather than the shape of the value alone.
type Options struct {
	// QuotedValuesAreStrings disables the quoted-shadow-type machinery:
	// every non-date/time string becomes STRING outright.
	QuotedValuesAreStrings bool
}

// InferScalar maps a single JSON scalar (already decoded to a Go value by
// the caller) to its lattice member. v must be one of nil, bool, float64,
// int64, or string; any other type, json.Number included, is treated as
// STRING.
func InferScalar(v any, opts Options) Type {
	switch x := v.(type) {
	case nil:
		return NULL
	case bool:
		return BOOLEAN
	case int64:
		return INTEGER
	case float64:
		return inferFromFloat64(x)
	case string:
		return inferFromString(x, opts)
	default:
		return STRING
	}
}

func inferFromFloat64(f float64) Type {
	if f != math.Trunc(f) {
		return FLOAT
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit int64.
	if f < math.MinInt64 || f >= 1<<63 {
		return FLOAT
	}
	return INTEGER
}

// inferFromString classifies a JSON string value. Date/time patterns are
// checked first and always win regardless of QuotedValuesAreStrings; the
// quoted-numeric/boolean shadow types only apply when that option is off.
func inferFromString(s string, opts Options) Type {
	switch {
	case looksLikeTimestamp(s):
		return TIMESTAMP
	case looksLikeDate(s):
		return DATE
	case looksLikeTime(s):
		return TIME
	}

	if opts.QuotedValuesAreStrings {
		return STRING
	}

	if looksLikeInteger(s) {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return QINTEGER
		}
		return QFLOAT
	}
	if looksLikeFloat(s) {
		return QFLOAT
	}
	switch strings.ToLower(s) {
	case "true", "false":
		return QBOOLEAN
	}
	return STRING
}
