// Package config reads the optional bqschema TOML configuration file.
// CLI flags always take precedence; a loaded Config only supplies the
// values a flag was never given for.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// InferConfig mirrors [infer].
type InferConfig struct {
	InputFormat            string `toml:"input_format"`
	InferMode              bool   `toml:"infer_mode"`
	KeepNulls              bool   `toml:"keep_nulls"`
	QuotedValuesAreStrings bool   `toml:"quoted_values_are_strings"`
	SanitizeNames          bool   `toml:"sanitize_names"`
	PreserveInputSortOrder bool   `toml:"preserve_input_sort_order"`
}

// WatchConfig mirrors [watch].
type WatchConfig struct {
	DebounceMS int    `toml:"debounce_ms"`
	OnChange   string `toml:"on_change"`
}

// ValidateConfig mirrors [validate].
type ValidateConfig struct {
	StrictTypes  bool `toml:"strict_types"`
	AllowUnknown bool `toml:"allow_unknown"`
	MaxErrors    int  `toml:"max_errors"`
}

// Config is the top-level bqschema TOML document.
type Config struct {
	Infer    InferConfig    `toml:"infer"`
	Watch    WatchConfig    `toml:"watch"`
	Validate ValidateConfig `toml:"validate"`
}

// Default returns the configuration that applies when no config file is
// given and no flag overrides a value.
func Default() *Config {
	return &Config{
		Infer: InferConfig{InputFormat: "json"},
		Watch: WatchConfig{DebounceMS: 300},
		Validate: ValidateConfig{
			MaxErrors: 50,
		},
	}
}

// Load reads and decodes the TOML file at path. An empty path returns the
// default configuration without touching the filesystem.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	if _, err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return cfg, nil
}
