package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record pairs a decoded object with the 1-based input line number it
// came from, for error-log attribution.
type Record struct {
	Line  int
	Value Object
}

// NDJSONReader streams newline-delimited JSON records. Blank lines are
// skipped; a malformed line either halts the stream or is skipped,
// depending on IgnoreInvalidLines.
type NDJSONReader struct {
	IgnoreInvalidLines bool

	scanner *bufio.Scanner
	line    int
	onError func(line int, msg string)
}

// NewNDJSONReader wraps r. onError, if non-nil, receives a message for
// every skipped malformed line (only consulted when IgnoreInvalidLines is
// true); it is the caller's hook into the ErrorLog stream.
func NewNDJSONReader(r io.Reader, ignoreInvalidLines bool, onError func(line int, msg string)) *NDJSONReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &NDJSONReader{
		IgnoreInvalidLines: ignoreInvalidLines,
		scanner:            scanner,
		onError:            onError,
	}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
// A malformed line is either returned as a fatal error (IgnoreInvalidLines
// false) or skipped after reporting onError and Next is retried
// internally until a valid record or EOF is reached.
func (r *NDJSONReader) Next() (*Record, error) {
	for {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, fmt.Errorf("ndjson: read: %w", err)
			}
			return nil, io.EOF
		}
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		obj, err := ReadTopLevelObject(strings.NewReader(line))
		if err != nil {
			if r.IgnoreInvalidLines {
				if r.onError != nil {
					r.onError(r.line, fmt.Sprintf("malformed JSON line: %v", err))
				}
				continue
			}
			return nil, fmt.Errorf("ndjson: line %d: %w", r.line, err)
		}
		return &Record{Line: r.line, Value: obj}, nil
	}
}
