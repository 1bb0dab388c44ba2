package parallel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapFilesPreservesOrder(t *testing.T) {
	files := []string{"c.json", "a.json", "b.json"}
	results := MapFiles(files, 3, func(path string) (string, error) {
		return "ok:" + path, nil
	})

	require.Len(t, results, 3)
	for i, f := range files {
		assert.Equal(t, f, results[i].Path)
		assert.Equal(t, "ok:"+f, results[i].Value)
		assert.NoError(t, results[i].Err)
	}
}

func TestMapFilesCollectsPerFileErrors(t *testing.T) {
	files := []string{"good.json", "bad.json"}
	results := MapFiles(files, 2, func(path string) (int, error) {
		if path == "bad.json" {
			return 0, fmt.Errorf("boom")
		}
		return 1, nil
	})

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
}

func TestMapFilesZeroWorkersDefaultsToOne(t *testing.T) {
	results := MapFiles([]string{"x.json"}, 0, func(path string) (bool, error) {
		return true, nil
	})
	require.Len(t, results, 1)
	assert.True(t, results[0].Value)
}

func TestMapFilesEmptyInput(t *testing.T) {
	results := MapFiles[string](nil, 4, func(path string) (string, error) {
		t.Fatal("should not be called")
		return "", nil
	})
	assert.Empty(t, results)
}
