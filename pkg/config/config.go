// Package config loads epicsum configuration from TOML, YAML, or JSON.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for epicsum.
type Config struct {
	// Schema controls which outcome columns the pipeline tracks and how
	// unlabeled records are grouped.
	Schema SchemaConfig `koanf:"schema"`

	// Columns names the header cells of the upstream export.
	Columns ColumnsConfig `koanf:"columns"`

	// Artifacts configures the output files.
	Artifacts ArtifactsConfig `koanf:"artifacts"`

	// Output controls terminal output.
	Output OutputConfig `koanf:"output"`
}

// SchemaConfig unifies the historical pipeline variants.
type SchemaConfig struct {
	IncludeUnknown   bool `koanf:"include_unknown"`
	GroupingFallback bool `koanf:"grouping_fallback"`
}

// ColumnsConfig names the exporter's header cells, matched exactly.
type ColumnsConfig struct {
	Epic    string `koanf:"epic"`
	Feature string `koanf:"feature"`
	Story   string `koanf:"story"`
	Passed  string `koanf:"passed"`
	Failed  string `koanf:"failed"`
	Broken  string `koanf:"broken"`
	Skipped string `koanf:"skipped"`
	Unknown string `koanf:"unknown"`
}

// ArtifactsConfig sets artifact paths. Empty image/excel paths mean
// date-stamped defaults; an empty publish path disables the extra save.
type ArtifactsConfig struct {
	Image   string `koanf:"image"`
	Excel   string `koanf:"excel"`
	Publish string `koanf:"publish"`
	Sheet   string `koanf:"sheet"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config matching the latest export generation:
// no UNKNOWN column, grouping fallback on.
func DefaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{
			IncludeUnknown:   false,
			GroupingFallback: true,
		},
		Columns: ColumnsConfig{
			Epic:    "Epic",
			Feature: "Feature",
			Story:   "Story",
			Passed:  "PASSED",
			Failed:  "FAILED",
			Broken:  "BROKEN",
			Skipped: "SKIPPED",
			Unknown: "UNKNOWN",
		},
		Artifacts: ArtifactsConfig{
			Sheet: "EPIC Summary",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, picking the parser by extension.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"epicsum.toml",
		"epicsum.yaml",
		"epicsum.yml",
		"epicsum.json",
		".epicsum.toml",
		".epicsum.yaml",
		".epicsum.yml",
		".epicsum.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
