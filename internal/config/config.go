package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/humlplay/internal/formatter"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/transform"
)

// Config represents the complete configuration for humlplay
type Config struct {
	SourceFormat string          `yaml:"source_format"`
	TargetFormat string          `yaml:"target_format"`
	Output       OutputConfig    `yaml:"output"`
	Transform    TransformConfig `yaml:"transform"`
	JSON         JSONConfig      `yaml:"json"`
	Clipboard    ClipboardConfig `yaml:"clipboard"`
	Watch        WatchConfig     `yaml:"watch"`
	Dev          DevConfig       `yaml:"dev"`
}

// OutputConfig controls how converted text is rendered
type OutputConfig struct {
	Indent int    `yaml:"indent"`
	Color  string `yaml:"color"` // auto, always or never
	Style  string `yaml:"style"` // chroma style name
}

// TransformConfig controls value transforms applied between parse and serialize
type TransformConfig struct {
	KeyCase string `yaml:"key_case"`
	Query   string `yaml:"query"`
}

// JSONConfig controls JSON parsing
type JSONConfig struct {
	Repair bool `yaml:"repair"`
}

// ClipboardConfig controls the copy notice
type ClipboardConfig struct {
	NoticeDuration time.Duration `yaml:"notice_duration"`
}

// WatchConfig controls watch mode
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		SourceFormat: string(models.FormatHUML),
		TargetFormat: string(models.FormatJSON),
		Output: OutputConfig{
			Indent: 2,
			Color:  string(formatter.ColorAuto),
			Style:  formatter.DefaultStyle,
		},
		Transform: TransformConfig{
			KeyCase: string(transform.KeyCasePreserve),
		},
		Clipboard: ClipboardConfig{
			NoticeDuration: 2 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".humlplay.yml", ".humlplay.yaml", "humlplay.yml", "humlplay.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks every enumerated value
func (c *Config) Validate() error {
	if _, err := models.ParseFormat(c.SourceFormat); err != nil {
		return fmt.Errorf("source_format: %w", err)
	}
	if _, err := models.ParseFormat(c.TargetFormat); err != nil {
		return fmt.Errorf("target_format: %w", err)
	}
	if c.Output.Indent < 0 || c.Output.Indent > 8 {
		return fmt.Errorf("output.indent must be between 0 and 8, got %d", c.Output.Indent)
	}
	if _, err := formatter.ParseColorMode(c.Output.Color); err != nil {
		return fmt.Errorf("output.color: %w", err)
	}
	if _, err := transform.ParseKeyCase(c.Transform.KeyCase); err != nil {
		return fmt.Errorf("transform.key_case: %w", err)
	}
	if c.Clipboard.NoticeDuration < 0 {
		return fmt.Errorf("clipboard.notice_duration must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Source returns the configured source format
func (c *Config) Source() models.Format {
	f, _ := models.ParseFormat(c.SourceFormat)
	return f
}

// Target returns the configured target format
func (c *Config) Target() models.Format {
	f, _ := models.ParseFormat(c.TargetFormat)
	return f
}

// TransformOptions returns the transforms to build for a conversion
func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		KeyCase: c.Transform.KeyCase,
		Query:   c.Transform.Query,
	}
}

// Overrides holds values given on the command line. Empty strings and false
// booleans leave the loaded configuration alone.
type Overrides struct {
	From    string
	To      string
	KeyCase string
	Query   string
	Color   string
	Repair  bool
	Debug   bool
}

// MergeConfigs merges CLI overrides into a base config
// Non-empty values from override take precedence over base values
func MergeConfigs(base *Config, override Overrides) *Config {
	merged := *base // Start with a copy of base

	// Override non-empty string values
	if override.From != "" {
		merged.SourceFormat = override.From
	}
	if override.To != "" {
		merged.TargetFormat = override.To
	}
	if override.KeyCase != "" {
		merged.Transform.KeyCase = override.KeyCase
	}
	if override.Query != "" {
		merged.Transform.Query = override.Query
	}
	if override.Color != "" {
		merged.Output.Color = override.Color
	}

	// Boolean flags can only switch features on
	if override.Repair {
		merged.JSON.Repair = true
	}
	if override.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence: CLI, then the
// config file, then defaults. An empty configPath triggers discovery.
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg = MergeConfigs(cfg, overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
