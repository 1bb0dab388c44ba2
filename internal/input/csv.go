package input

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVReader streams header-first CSV rows as records whose values are all
// strings, in header column order. encoding/csv is used directly: none of
// the example libraries in the retrieval pack offer a CSV reader, and the
// standard library's is the idiomatic choice the Go ecosystem itself
// reaches for here.
type CSVReader struct {
	r       *csv.Reader
	header  []string
	line    int
	started bool
}

// NewCSVReader wraps r; FieldsPerRecord is relaxed so missing or excess
// columns in a row do not raise an error, per the spec's CSV contract.
func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &CSVReader{r: cr}
}

// Next returns the next data row as a Record, or io.EOF once exhausted.
// The header row is consumed transparently on the first call.
func (r *CSVReader) Next() (*Record, error) {
	if !r.started {
		header, err := r.r.Read()
		if err != nil {
			return nil, fmt.Errorf("csv: read header: %w", err)
		}
		r.header = header
		r.started = true
		r.line++
	}

	row, err := r.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("csv: read row %d: %w", r.line+1, err)
	}
	r.line++

	obj := NewObject()
	for i, col := range r.header {
		if i < len(row) {
			obj.Set(col, row[i])
		} else {
			obj.Set(col, "")
		}
	}
	return &Record{Line: r.line, Value: obj}, nil
}
