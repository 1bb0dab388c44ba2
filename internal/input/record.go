// Package input implements the format-specific streaming readers: NDJSON
// and CSV, both exposing a lazy (lineNumber, record) sequence. JSON
// objects are decoded into an order-preserving Object rather than a plain
// Go map, because the record walker's field-insertion-order guarantee
// depends on seeing each record's keys in the order they appeared in the
// source document.
package input

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	omap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object decoded with key order preserved.
type Object = *omap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() Object {
	return omap.New[string, any]()
}

// DecodeObject reads one JSON value from dec and requires it to be an
// object, returning it as an order-preserving Object. This is the entry
// point readers use for each record.
func DecodeObject(dec *json.Decoder) (Object, error) {
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("top-level value is not a JSON object")
	}
	return obj, nil
}

// decodeValue reads one JSON value (object, array, or scalar) from dec,
// preserving object key order via Object and representing numbers as
// json.Number so the lattice can distinguish integers from floats without
// float64 precision loss.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeTokenValue(dec, tok)
}

func decodeTokenValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObjectBody(dec)
		case '[':
			return decodeArrayBody(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case json.Number:
		return t, nil
	case string:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported JSON token type %T", tok)
	}
}

func decodeObjectBody(dec *json.Decoder) (Object, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string")
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArrayBody(dec *json.Decoder) ([]any, error) {
	var arr []any
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	// consume closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// ReadTopLevelObject decodes exactly one JSON object from r (a single
// NDJSON line, or a single CSV-derived pseudo-record is built separately
// by csv.go). io.EOF is returned unmodified so callers can detect a clean
// end of stream.
func ReadTopLevelObject(r io.Reader) (Object, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	obj, err := DecodeObject(dec)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
