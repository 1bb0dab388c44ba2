package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferScalar(t *testing.T) {
	tests := []struct {
		name string
		v    any
		opts Options
		want Type
	}{
		{"nil", nil, Options{}, NULL},
		{"bool true", true, Options{}, BOOLEAN},
		{"bool false", false, Options{}, BOOLEAN},
		{"int64", int64(42), Options{}, INTEGER},
		{"largest float64 below 2^63", float64(9223372036854774784), Options{}, INTEGER},
		{"overflow float", 9223372036854775808.0, Options{}, FLOAT},
		{"fractional float", 1.5, Options{}, FLOAT},

		{"quoted integer", "42", Options{}, QINTEGER},
		{"quoted negative integer", "-42", Options{}, QINTEGER},
		{"quoted float", "1.5", Options{}, QFLOAT},
		{"quoted bool", "true", Options{}, QBOOLEAN},
		{"quoted bool upper", "TRUE", Options{}, QBOOLEAN},
		{"plain string", "hello", Options{}, STRING},

		{"timestamp", "2024-01-01T12:00:00Z", Options{}, TIMESTAMP},
		{"timestamp space sep", "2024-01-01 12:00:00", Options{}, TIMESTAMP},
		{"date", "2024-01-01", Options{}, DATE},
		{"date unpadded", "2024-1-1", Options{}, DATE},
		{"time", "12:30:00", Options{}, TIME},

		{"quoted values as strings", "42", Options{QuotedValuesAreStrings: true}, STRING},
		{"date still wins when quoted-as-strings", "2024-01-01", Options{QuotedValuesAreStrings: true}, DATE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferScalar(tt.v, tt.opts))
		})
	}
}

func TestDateRegexRejectsInvalidCalendarDates(t *testing.T) {
	assert.False(t, looksLikeDate("2024-13-01"))
	assert.False(t, looksLikeDate("2024-12-32"))
	assert.False(t, looksLikeDate("2024-12-00"))
	assert.True(t, looksLikeDate("2024-1-1"))
	assert.True(t, looksLikeDate("2024-12-31"))
}

func TestJoinCommutative(t *testing.T) {
	types := []Type{BOOLEAN, INTEGER, FLOAT, STRING, TIMESTAMP, DATE, TIME, RECORD,
		EMPTY_RECORD, QBOOLEAN, QINTEGER, QFLOAT}
	for _, a := range types {
		for _, b := range types {
			ab, errAB := Join(a, b)
			ba, errBA := Join(b, a)
			if errAB != nil || errBA != nil {
				assert.Equal(t, errAB, errBA, "a=%v b=%v", a, b)
				continue
			}
			assert.Equal(t, ab, ba, "a=%v b=%v", a, b)
		}
	}
}

func TestJoinIdempotent(t *testing.T) {
	types := []Type{BOOLEAN, INTEGER, FLOAT, STRING, TIMESTAMP, DATE, TIME, RECORD}
	for _, tt := range types {
		got, err := Join(tt, tt)
		assert.NoError(t, err)
		assert.Equal(t, tt, got)
	}
}

func TestJoinQuotedShadowTypes(t *testing.T) {
	tests := []struct {
		a, b Type
		want Type
	}{
		{BOOLEAN, QBOOLEAN, BOOLEAN},
		{INTEGER, QINTEGER, INTEGER},
		{FLOAT, QFLOAT, FLOAT},
		{QINTEGER, QFLOAT, QFLOAT},
		{INTEGER, QFLOAT, FLOAT},
		{QINTEGER, FLOAT, FLOAT},
		{STRING, QINTEGER, STRING},
		{DATE, STRING, STRING},
		{TIMESTAMP, QBOOLEAN, STRING},
	}
	for _, tt := range tests {
		got, err := Join(tt.a, tt.b)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v join %v", tt.a, tt.b)
	}
}

func TestJoinIncompatible(t *testing.T) {
	_, err := Join(BOOLEAN, INTEGER)
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = Join(RECORD, STRING)
	assert.ErrorIs(t, err, ErrIncompatible)
}

func TestJoinRecordAndEmptyRecord(t *testing.T) {
	got, err := Join(RECORD, EMPTY_RECORD)
	assert.NoError(t, err)
	assert.Equal(t, RECORD, got)
}
