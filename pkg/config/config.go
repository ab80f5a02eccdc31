// Package config loads codemetrics settings from TOML, YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for codemetrics.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Thresholds for duplicate detection and report highlighting
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls how files are analysed.
type AnalysisConfig struct {
	// Workers bounds the per-file phase; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers"`
	// MaxFileSize skips larger files (bytes); 0 means no limit.
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"`
	// Languages restricts analysis to these languages; empty means all.
	Languages []string `koanf:"languages" toml:"languages"`
	// Include restricts analysis to files matching one of these globs
	// (relative to the root, ** allowed); empty means all.
	Include []string `koanf:"include" toml:"include"`
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	DuplicateMinLines       int     `koanf:"duplicate_min_lines" toml:"duplicate_min_lines"`
	DuplicateMinOccurrences int     `koanf:"duplicate_min_occurrences" toml:"duplicate_min_occurrences"`
	DuplicateMinFiles       int     `koanf:"duplicate_min_files" toml:"duplicate_min_files"`
	ComplexityWarn          int     `koanf:"complexity_warn" toml:"complexity_warn"`
	ComplexityError         int     `koanf:"complexity_error" toml:"complexity_error"`
	MaintainabilityWarn     float64 `koanf:"maintainability_warn" toml:"maintainability_warn"`
	MaintainabilityError    float64 `koanf:"maintainability_error" toml:"maintainability_error"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls the in-run content memo. Nothing is persisted.
type CacheConfig struct {
	Enabled bool `koanf:"enabled" toml:"enabled"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // html, csv, text, json, markdown, toon
	File    string `koanf:"file" toml:"file"`
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			DuplicateMinLines:       5,
			DuplicateMinOccurrences: 2,
			DuplicateMinFiles:       2,
			ComplexityWarn:          10,
			ComplexityError:         15,
			MaintainabilityWarn:     65,
			MaintainabilityError:    20,
		},
		Exclude: ExcludeConfig{
			Dirs: []string{
				"target",
				"build",
				"bin",
				"obj",
				"vendor",
				"node_modules",
				".git",
				".idea",
				".vs",
				".gradle",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format: "html",
			Color:  true,
		},
	}
}

// Languages lists the names analysis.languages accepts.
var Languages = []string{"java", "csharp", "go"}

// Formats lists the accepted output formats.
var Formats = []string{"html", "csv", "text", "json", "markdown", "toon"}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers)
	}
	if c.Thresholds.DuplicateMinLines < 1 {
		return fmt.Errorf("thresholds.duplicate_min_lines must be >= 1, got %d", c.Thresholds.DuplicateMinLines)
	}
	if c.Thresholds.DuplicateMinOccurrences < 2 {
		return fmt.Errorf("thresholds.duplicate_min_occurrences must be >= 2, got %d", c.Thresholds.DuplicateMinOccurrences)
	}
	if c.Thresholds.DuplicateMinFiles < 2 {
		return fmt.Errorf("thresholds.duplicate_min_files must be >= 2, got %d", c.Thresholds.DuplicateMinFiles)
	}
	for _, lang := range c.Analysis.Languages {
		if !slices.Contains(Languages, lang) {
			return fmt.Errorf("analysis.languages must be among %s, got %q", strings.Join(Languages, ", "), lang)
		}
	}
	for _, pattern := range c.Analysis.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("analysis.include: invalid pattern %q", pattern)
		}
	}
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(Formats, ", "), c.Output.Format)
	}
	return nil
}

// Load loads configuration from a file, layered over DefaultConfig.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	// ZeroFields makes lists in the file replace the defaults instead of
	// being merged into them.
	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// ConfigNames are the file names searched by Find, in priority order.
var ConfigNames = []string{
	"codemetrics.toml",
	"codemetrics.yaml",
	"codemetrics.yml",
	"codemetrics.json",
	".codemetrics.toml",
	".codemetrics.yaml",
	".codemetrics.yml",
	".codemetrics.json",
}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("no config file found")

// Find returns the first config file present in dir or dir/.codemetrics.
func Find(dir string) (string, error) {
	for _, d := range []string{dir, filepath.Join(dir, ".codemetrics")} {
		for _, name := range ConfigNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", ErrNotFound
}

// LoadOrDefault loads the config found in dir or returns defaults.
// A config file that exists but fails to load is reported as an error.
func LoadOrDefault(dir string) (*Config, error) {
	path, err := Find(dir)
	if errors.Is(err, ErrNotFound) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// ExcludesDir reports whether a directory name is excluded from walks.
func (c *Config) ExcludesDir(name string) bool {
	return slices.Contains(c.Exclude.Dirs, name)
}

// IncludesLanguage reports whether files of lang should be analysed.
func (c *Config) IncludesLanguage(lang string) bool {
	return len(c.Analysis.Languages) == 0 || slices.Contains(c.Analysis.Languages, lang)
}

// IncludesPath reports whether a file, given by its slash-separated path
// relative to the analysis root, matches the include globs.
func (c *Config) IncludesPath(rel string) bool {
	if len(c.Analysis.Include) == 0 {
		return true
	}
	for _, pattern := range c.Analysis.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Level grades a metric against the configured thresholds.
type Level string

const (
	LevelOK    Level = "good"
	LevelWarn  Level = "warn"
	LevelError Level = "bad"
)

// ComplexityLevel grades a cyclomatic complexity. Values above the warn
// threshold warn, values above the error threshold fail.
func (t ThresholdConfig) ComplexityLevel(cc int) Level {
	switch {
	case cc > t.ComplexityError:
		return LevelError
	case cc > t.ComplexityWarn:
		return LevelWarn
	default:
		return LevelOK
	}
}

// MaintainabilityLevel grades a maintainability index. Lower is worse.
func (t ThresholdConfig) MaintainabilityLevel(mi float64) Level {
	switch {
	case mi < t.MaintainabilityError:
		return LevelError
	case mi < t.MaintainabilityWarn:
		return LevelWarn
	default:
		return LevelOK
	}
}
