package input

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Format identifies an input record format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Reader is the common streaming interface both NDJSONReader and
// CSVReader satisfy.
type Reader interface {
	Next() (*Record, error)
}

// factory constructs a Reader for a format. ignoreInvalidLines and
// onError are only meaningful to NDJSON; CSV implementations ignore them.
type factory func(r io.Reader, ignoreInvalidLines bool, onError func(line int, msg string)) Reader

var (
	registryMu sync.RWMutex
	registry   = map[Format]factory{
		FormatJSON: func(r io.Reader, ignoreInvalidLines bool, onError func(int, string)) Reader {
			return NewNDJSONReader(r, ignoreInvalidLines, onError)
		},
		FormatCSV: func(r io.Reader, _ bool, _ func(int, string)) Reader {
			return NewCSVReader(r)
		},
	}
)

// Register installs a factory for a format, overwriting any existing
// registration. Exported so a caller embedding this package can add a
// format without forking it.
func Register(format Format, f factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[format] = f
}

// New constructs a Reader for the named format ("json" or "csv", any
// case). onError and ignoreInvalidLines are forwarded to NDJSON readers.
func New(name string, r io.Reader, ignoreInvalidLines bool, onError func(line int, msg string)) (Reader, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))

	registryMu.RLock()
	f, ok := registry[format]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("input: unsupported format %q; use 'json' or 'csv'", name)
	}
	return f(r, ignoreInvalidLines, onError), nil
}
