package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDJSONReaderPreservesKeyOrder(t *testing.T) {
	r := NewNDJSONReader(strings.NewReader(`{"b":1,"a":2}`+"\n"), false, nil)
	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Line)

	keys := make([]string, 0, 2)
	for pair := rec.Value.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"b", "a"}, keys)
}

func TestNDJSONReaderSkipsBlankLines(t *testing.T) {
	r := NewNDJSONReader(strings.NewReader("\n{\"a\":1}\n\n"), false, nil)
	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Line)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestNDJSONReaderIgnoresInvalidLines(t *testing.T) {
	var logged []string
	r := NewNDJSONReader(strings.NewReader("not json\n{\"a\":1}\n"), true, func(line int, msg string) {
		logged = append(logged, msg)
	})
	rec, err := r.Next()
	require.NoError(t, err)
	v, _ := rec.Value.Get("a")
	assert.EqualValues(t, "1", v)
	assert.Len(t, logged, 1)
}

func TestNDJSONReaderFatalOnInvalidLineWhenNotIgnoring(t *testing.T) {
	r := NewNDJSONReader(strings.NewReader("not json\n"), false, nil)
	_, err := r.Next()
	assert.Error(t, err)
}
