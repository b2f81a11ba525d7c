// Package config provides configuration loading for codepulse.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/codepulse/pkg/parser"
)

// Config holds all codepulse configuration.
type Config struct {
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`
	Exclude  ExcludeConfig  `koanf:"exclude" toml:"exclude"`
	Cache    CacheConfig    `koanf:"cache" toml:"cache"`
	Server   ServerConfig   `koanf:"server" toml:"server"`
	Output   OutputConfig   `koanf:"output" toml:"output"`
	Log      LogConfig      `koanf:"log" toml:"log"`
}

// AnalysisConfig controls language resolution and suggestion thresholds.
type AnalysisConfig struct {
	// DefaultLanguage is used when a request names no supported language.
	DefaultLanguage     string         `koanf:"default_language" toml:"default_language"`
	ComplexityThreshold int            `koanf:"complexity_threshold" toml:"complexity_threshold"`
	MaxFileSize         int64          `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 = no limit
	Workers             int            `koanf:"workers" toml:"workers"`             // 0 = 2x NumCPU
	JavaScript          LanguageConfig `koanf:"javascript" toml:"javascript"`
	Python              LanguageConfig `koanf:"python" toml:"python"`
}

// LanguageConfig holds per-language thresholds.
type LanguageConfig struct {
	NestingThreshold int `koanf:"nesting_threshold" toml:"nesting_threshold"`
}

// ExcludeConfig defines file exclusion patterns for batch analysis.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"`   // TTL in hours
	Memo    int    `koanf:"memo" toml:"memo"` // in-process entries, 0 disables
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr         string `koanf:"addr" toml:"addr"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" toml:"max_body_bytes"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level"` // debug, info, warn, error
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "toon"}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			DefaultLanguage:     string(parser.DefaultLanguage),
			ComplexityThreshold: 10,
			MaxFileSize:         1 << 20,
			JavaScript:          LanguageConfig{NestingThreshold: 4},
			Python:              LanguageConfig{NestingThreshold: 5},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.bundle.js",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".codepulse",
				"dist",
				"build",
				"__pycache__",
				".venv",
				"venv",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".codepulse/cache",
			TTL:     24,
			Memo:    1024,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a file. Values missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var p koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p = yaml.Parser()
	case ".json":
		p = json.Parser()
	default:
		p = toml.Parser()
	}

	if err := k.Load(file.Provider(path), p); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	return cfg, nil
}

// Find returns the first config file found in the search paths, or "".
func Find() string {
	configNames := []string{
		"codepulse.toml",
		"codepulse.yaml",
		"codepulse.yml",
		"codepulse.json",
		".codepulse.toml",
		".codepulse.yaml",
		".codepulse.yml",
		".codepulse.json",
	}

	for _, dir := range []string{".", ".codepulse"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads the first config file found in the search paths,
// or returns defaults when none exists or it cannot be read.
func LoadOrDefault() *Config {
	if path := Find(); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Analysis.DefaultLanguage != "" {
		if _, ok := parser.ParseLanguage(c.Analysis.DefaultLanguage); !ok {
			errs = append(errs, fmt.Errorf("analysis.default_language: unsupported language %q", c.Analysis.DefaultLanguage))
		}
	}
	if c.Analysis.ComplexityThreshold < 0 {
		errs = append(errs, fmt.Errorf("analysis.complexity_threshold: must not be negative, got %d", c.Analysis.ComplexityThreshold))
	}
	if c.Analysis.JavaScript.NestingThreshold < 0 {
		errs = append(errs, fmt.Errorf("analysis.javascript.nesting_threshold: must not be negative, got %d", c.Analysis.JavaScript.NestingThreshold))
	}
	if c.Analysis.Python.NestingThreshold < 0 {
		errs = append(errs, fmt.Errorf("analysis.python.nesting_threshold: must not be negative, got %d", c.Analysis.Python.NestingThreshold))
	}
	if c.Analysis.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_file_size: must not be negative, got %d", c.Analysis.MaxFileSize))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers: must not be negative, got %d", c.Analysis.Workers))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl: must not be negative, got %d", c.Cache.TTL))
	}
	if c.Cache.Memo < 0 {
		errs = append(errs, fmt.Errorf("cache.memo: must not be negative, got %d", c.Cache.Memo))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes: must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if !contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format: unknown format %q (want one of %s)", c.Output.Format, strings.Join(Formats, ", ")))
	}
	if !contains(LogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q (want one of %s)", c.Log.Level, strings.Join(LogLevels, ", ")))
	}

	return errors.Join(errs...)
}

// Language resolves the configured default language, falling back to
// parser.DefaultLanguage.
func (c *Config) Language() parser.Language {
	if lang, ok := parser.ParseLanguage(c.Analysis.DefaultLanguage); ok {
		return lang
	}
	return parser.DefaultLanguage
}

// NestingThreshold returns the nesting threshold for lang.
func (c *Config) NestingThreshold(lang parser.Language) int {
	if lang == parser.LangPython {
		return c.Analysis.Python.NestingThreshold
	}
	return c.Analysis.JavaScript.NestingThreshold
}

// ShouldExclude checks if a path should be excluded from batch analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
