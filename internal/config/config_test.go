package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Infer.InputFormat)
	assert.Equal(t, 300, cfg.Watch.DebounceMS)
	assert.Equal(t, 50, cfg.Validate.MaxErrors)
}

func TestLoadDecodesFileAndKeepsUnsetDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bqschema.toml")
	content := `
[infer]
input_format = "csv"
infer_mode = true

[watch]
on_change = "echo updated"

[validate]
strict_types = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Infer.InputFormat)
	assert.True(t, cfg.Infer.InferMode)
	assert.Equal(t, "echo updated", cfg.Watch.OnChange)
	assert.Equal(t, 300, cfg.Watch.DebounceMS)
	assert.True(t, cfg.Validate.StrictTypes)
	assert.Equal(t, 50, cfg.Validate.MaxErrors)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/bqschema.toml")
	assert.Error(t, err)
}
