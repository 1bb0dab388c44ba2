package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReaderHeaderOrderAndMissingColumns(t *testing.T) {
	r := NewCSVReader(strings.NewReader("a,b\n1,\n2,3\n"))

	rec1, err := r.Next()
	require.NoError(t, err)
	a, _ := rec1.Value.Get("a")
	b, _ := rec1.Value.Get("b")
	assert.Equal(t, "1", a)
	assert.Equal(t, "", b)

	rec2, err := r.Next()
	require.NoError(t, err)
	a2, _ := rec2.Value.Get("a")
	b2, _ := rec2.Value.Get("b")
	assert.Equal(t, "2", a2)
	assert.Equal(t, "3", b2)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestCSVReaderExtraColumnsDoNotError(t *testing.T) {
	r := NewCSVReader(strings.NewReader("a\n1,2,3\n"))
	rec, err := r.Next()
	require.NoError(t, err)
	a, _ := rec.Value.Get("a")
	assert.Equal(t, "1", a)
}

func TestRegistryNewSelectsFormat(t *testing.T) {
	r, err := New("json", strings.NewReader(`{"a":1}`+"\n"), false, nil)
	require.NoError(t, err)
	_, ok := r.(*NDJSONReader)
	assert.True(t, ok)

	r2, err := New("CSV", strings.NewReader("a\n1\n"), false, nil)
	require.NoError(t, err)
	_, ok = r2.(*CSVReader)
	assert.True(t, ok)

	_, err = New("xml", strings.NewReader(""), false, nil)
	assert.Error(t, err)
}
